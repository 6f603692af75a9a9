package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petasbytes/go-astra/internal/runner"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.newRunner()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			name := a.cfg.Agent.Name

			// stdin reader goroutine -> lines into channel
			scanner := bufio.NewScanner(cmd.InOrStdin())
			inputCh := make(chan string)
			go func() {
				defer close(inputCh)
				for scanner.Scan() {
					select {
					case inputCh <- scanner.Text():
					case <-ctx.Done():
						return
					}
				}
			}()

			fmt.Fprintf(out, "Chat with %s (Ctrl-C to quit)\n", name)
		outer:
			for {
				fmt.Fprint(out, "\u001b[94mYou\u001b[0m: ")
				var (
					line string
					ok   bool
				)
				select {
				case <-ctx.Done():
					fmt.Fprintln(out, "\nExiting...")
					break outer
				case line, ok = <-inputCh:
					if !ok {
						break outer
					}
				}
				if strings.TrimSpace(line) == "" {
					continue
				}

				fmt.Fprintf(out, "\u001b[93m%s\u001b[0m: ", name)
				if _, err := r.Stream(ctx, line, runner.WriterSink{W: out}); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "\nerror: %v\n", err)
				}
			}
			if err := scanner.Err(); err != nil {
				a.logger.Warn("stdin read error", zap.Error(err))
			}
			return nil
		},
	}
}
