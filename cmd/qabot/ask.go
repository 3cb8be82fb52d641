package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newAskCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a single question from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, chatSvc, err := bootstrap(ctx)
			if err != nil {
				return err
			}

			session, err := chatSvc.CreateSession(ctx, "")
			if err != nil {
				return err
			}
			defer chatSvc.EndSession(ctx, session.ID)

			out := cmd.OutOrStdout()
			render := !plain && isTerminal(out)

			var onDelta func(string)
			if !render && chatSvc.StreamingEnabled() {
				onDelta = func(delta string) { fmt.Fprint(out, delta) }
			}

			result, err := chatSvc.Submit(ctx, session.ID, strings.Join(args, " "), onDelta)
			if err != nil {
				return err
			}

			switch {
			case render:
				fmt.Fprint(out, renderMarkdown(result.Reply.Content))
			case onDelta == nil || result.Failed():
				fmt.Fprintln(out, result.Reply.Content)
			default:
				fmt.Fprintln(out)
			}

			if result.Failed() {
				return result.Failure
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the raw reply without markdown rendering")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// renderMarkdown falls back to the raw text when glamour cannot render it.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content + "\n"
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}
