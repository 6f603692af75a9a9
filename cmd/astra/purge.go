package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-astra/memory"
)

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Reset all memory to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.newMemory()
			if err != nil {
				return err
			}
			if err := m.Purge(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Memory purged (%d artifacts reset).\n", len(memory.Artifacts()))
			return nil
		},
	}
}
