package cli

import (
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vector76/catchup/internal/model"
)

func newOptionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List accepted industries and time periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewClientFromEnv()

			if asJSON {
				data, err := c.Do(cmd.Context(), http.MethodGet, "/api/options", nil)
				if err != nil {
					return err
				}
				out, err := prettyJSON(data)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}

			cat, err := c.Options(cmd.Context())
			if err != nil {
				return err
			}
			printOptions(cmd, "Industries", cat.Industries)
			fmt.Fprintln(cmd.OutOrStdout())
			printOptions(cmd, "Time periods", cat.TimePeriods)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON catalog")
	return cmd
}

func printOptions(cmd *cobra.Command, title string, opts []model.Option) {
	out := cmd.OutOrStdout()
	color.New(color.Bold).Fprintln(out, title+":")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, o := range opts {
		fmt.Fprintf(tw, "  %s\t%s\n", o.Slug, o.Label)
	}
	tw.Flush()
}
