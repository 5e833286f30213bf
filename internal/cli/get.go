package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vector76/catchup/internal/markdown"
	"github.com/vector76/catchup/internal/ui"
)

func newGetCmd() *cobra.Command {
	var industry, period, format, engine string
	var sanitize bool
	var width int

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a catch-up summary",
		Long: "Fetch a catch-up summary for an industry and time away.\n\n" +
			"Run 'catchup options' to list the accepted values.",
		Example: "  catchup get --industry software-development --period 5-years\n" +
			"  catchup get --industry legal --period 1-year --format html",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatTerminal, formatMarkdown, formatHTML, formatJSON:
			default:
				return fmt.Errorf("invalid --format %q: must be terminal, markdown, html or json", format)
			}
			renderer, err := markdown.NewRenderer(engine, sanitize)
			if err != nil {
				return err
			}

			view := &termView{
				out:       cmd.OutOrStdout(),
				errOut:    cmd.ErrOrStderr(),
				format:    format,
				useColors: !color.NoColor,
				width:     width,
			}
			ctrl := ui.NewController(view, NewClientFromEnv(), renderer, nil)

			err = ctrl.Submit(cmd.Context(), industry, period)
			var serr *ui.SubmitError
			if errors.As(err, &serr) {
				// The view has already shown the message.
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return err
			}
			if err != nil {
				return err
			}
			return view.err
		},
	}

	cmd.Flags().StringVar(&industry, "industry", "", "industry slug, e.g. software-development")
	cmd.Flags().StringVar(&period, "period", "", "time period slug, e.g. 5-years")
	cmd.Flags().StringVar(&format, "format", formatTerminal, "output format (terminal, markdown, html, json)")
	cmd.Flags().StringVar(&engine, "engine", markdown.EngineFragment, "markdown engine for --format html (fragment, commonmark)")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "sanitize rendered HTML")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width for terminal output")

	return cmd
}
