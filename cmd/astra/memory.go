package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/go-astra/memory"
)

// snapshot is the exported form of the five artifacts.
type snapshot struct {
	ChatLog        []memory.Turn `yaml:"chat_log"`
	RollingSummary string        `yaml:"chat_summary"`
	SummaryHistory []string      `yaml:"lt_summary_history"`
	LongTermMemory string        `yaml:"long_term_memory"`
	Personality    string        `yaml:"personality"`
}

func takeSnapshot(ctx context.Context, store memory.Store) (snapshot, error) {
	var s snapshot
	turns, err := memory.NewConversationLog(store).All(ctx)
	if err != nil {
		return s, err
	}
	s.ChatLog = turns
	vals := map[memory.Artifact]*string{
		memory.RollingSummary: &s.RollingSummary,
		memory.LongTermMemory: &s.LongTermMemory,
		memory.Personality:    &s.Personality,
	}
	for art, dst := range vals {
		if *dst, err = store.Get(ctx, art); err != nil {
			return s, err
		}
	}
	raw, err := store.Get(ctx, memory.SummaryHistory)
	if err != nil {
		return s, err
	}
	s.SummaryHistory = memory.SplitHistory(raw)
	return s, nil
}

func newMemoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect stored memory",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print every memory artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, art := range memory.Artifacts() {
				v, err := store.Get(cmd.Context(), art)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "== %s ==\n%s\n\n", art, v)
			}
			return nil
		},
	})

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write every memory artifact as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			snap, err := takeSnapshot(cmd.Context(), store)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("encode memory: %w", err)
			}
			return enc.Close()
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.AddCommand(export)
	return cmd
}
