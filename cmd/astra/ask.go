package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-astra/internal/runner"
)

func newAskCmd(a *app) *cobra.Command {
	var stream, sse bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Long: `Send one message. By default the complete reply is normalized before it is
printed. --stream prints tokens as they arrive instead; --sse frames them as
server-sent events.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.newRunner()
			if err != nil {
				return err
			}
			input := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if !stream && !sse {
				reply, err := r.Reply(cmd.Context(), input)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, reply)
				return nil
			}

			var sink runner.Sink = runner.WriterSink{W: out}
			if sse {
				sink = runner.SSESink{W: out}
			}
			_, err = r.Stream(cmd.Context(), input, sink)
			return err
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "stream tokens as they are generated")
	cmd.Flags().BoolVar(&sse, "sse", false, "frame streamed tokens as server-sent events (implies --stream)")
	return cmd
}
