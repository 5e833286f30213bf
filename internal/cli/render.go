package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vector76/catchup/internal/markdown"
)

func newRenderCmd() *cobra.Command {
	var engine string
	var sanitize bool

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render markdown to HTML",
		Long:  "Render markdown from a file, or standard input when no file is given, to HTML.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := markdown.NewRenderer(engine, sanitize)
			if err != nil {
				return err
			}

			var src []byte
			if len(args) == 1 && args[0] != "-" {
				src, err = os.ReadFile(args[0])
			} else {
				src, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), r.Render(string(src)))
			return nil
		},
	}

	cmd.Flags().StringVar(&engine, "engine", markdown.EngineFragment, "markdown engine (fragment, commonmark)")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "sanitize the rendered HTML")
	return cmd
}
