package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

func init() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok &&
			info.Main.Version != "" &&
			info.Main.Version != "(devel)" {
			version = strings.TrimPrefix(info.Main.Version, "v")
		}
	}
}

// Version returns the build version of this binary.
func Version() string {
	return version
}

// NewRootCmd creates the root cobra command for the catchup CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catchup",
		Short: "What Did I Miss? catch-up summaries",
		Long: "What Did I Miss? catchup serves and queries industry catch-up summaries for people\n" +
			"returning to work.\n\n" +
			"Client commands talk to CATCHUP_URL (default " + defaultURL + "), read from the environment or a .env file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if !showVersion {
				return cmd.Help()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "client: %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "server: %s\n", serverVersion(cmd.Context()))
			return nil
		},
	}

	root.Flags().BoolP("version", "v", false, "show version information")
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddGroup(
		&cobra.Group{ID: "server", Title: "Server Commands:"},
		&cobra.Group{ID: "client", Title: "Client Commands:"},
		&cobra.Group{ID: "local", Title: "Local Commands:"},
	)

	serveCmd := newServeCmd()
	serveCmd.GroupID = "server"
	root.AddCommand(serveCmd)

	for _, cmd := range []*cobra.Command{
		newGetCmd(),
		newOptionsCmd(),
		newHealthCmd(),
	} {
		cmd.GroupID = "client"
		root.AddCommand(cmd)
	}

	renderCmd := newRenderCmd()
	renderCmd.GroupID = "local"
	root.AddCommand(renderCmd)

	return root
}

// serverVersion asks the configured server for its version, returning
// "unavailable" on any failure.
func serverVersion(ctx context.Context) string {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c := NewClientFromEnv()
	data, err := c.Do(ctx, http.MethodGet, "/api/version", nil)
	if err != nil {
		return "unavailable"
	}
	var v struct {
		Version string `json:"version"`
	}
	if json.Unmarshal(data, &v) != nil || v.Version == "" {
		return "unavailable"
	}
	return v.Version
}
