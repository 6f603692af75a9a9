package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPersonalityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personality",
		Short: "Print the personality profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.newMemory()
			if err != nil {
				return err
			}
			p, err := m.Personality(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <text>",
		Short: "Replace the personality profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.newMemory()
			if err != nil {
				return err
			}
			if err := m.SetPersonality(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Personality updated.")
			return nil
		},
	})
	return cmd
}
