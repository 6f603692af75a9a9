package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "astra",
		Short: "Astra - a conversational agent with layered memory",
		Long: `Astra keeps a conversation log, folds it into a rolling summary every few
exchanges, and condenses batches of summaries into long-term memory that is
handed back to the model on every turn.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Root().PersistentFlags())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./astra.yaml or $HOME/.astra/astra.yaml)")
	pf.String("memory-backend", "file", "memory backend (file, sqlite, memory)")
	pf.String("memory-dir", "memory", "directory of the file backend")
	pf.String("llm-provider", "ollama", "LLM provider (ollama, anthropic)")
	pf.String("ollama-model", "llama3", "Ollama model")
	pf.String("anthropic-model", "claude-3-7-sonnet-latest", "Anthropic model")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newPurgeCmd(a),
		newPersonalityCmd(a),
		newMemoryCmd(a),
		newConfigCmd(a),
	)
	return root
}
