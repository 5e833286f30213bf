package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/vector76/catchup/internal/cache"
	"github.com/vector76/catchup/internal/catchup"
	"github.com/vector76/catchup/internal/config"
	"github.com/vector76/catchup/internal/llm"
	"github.com/vector76/catchup/internal/logging"
	"github.com/vector76/catchup/internal/markdown"
	"github.com/vector76/catchup/internal/model"
	"github.com/vector76/catchup/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catch-up HTTP server",
		Long: "Start the catch-up HTTP server.\n\n" +
			"Settings come from defaults, then catchup.yaml (or --config), then CATCHUP_* environment\n" +
			"variables (PORT, CLAUDE_API_KEY and GEMINI_API_KEY are also honoured), then flags.\n" +
			"Variables missing from the environment are taken from .env in the working directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exportDotenv(); err != nil {
				return err
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to config file (default ./catchup.yaml)")
	cmd.Flags().Int("port", 8080, "port to listen on")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("provider", llm.ProviderClaude, "summary provider (claude, gemini, static)")
	cmd.Flags().String("cache", cache.BackendMemory, "cache backend (memory, file, redis)")
	cmd.Flags().String("engine", markdown.EngineFragment, "markdown engine for the form page (fragment, commonmark)")

	return cmd
}

// runServer wires the configured components and serves until ctx is done.
func runServer(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

	catalog := model.DefaultCatalog()
	if cfg.Catalog.File != "" {
		c, err := model.LoadCatalogFile(cfg.Catalog.File)
		if err != nil {
			return err
		}
		catalog = c
	}

	store, err := cache.New(cfg.CacheOptions())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer store.Close()

	gen, err := llm.New(cfg.LLMOptions())
	if err != nil {
		return err
	}

	renderer, err := markdown.NewRenderer(cfg.Render.Engine, cfg.Render.Sanitize)
	if err != nil {
		return err
	}

	svc := catchup.NewService(catalog, store, gen, logger)
	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		Version:        version,
		Renderer:       renderer,
		RateLimit:      rate.Limit(cfg.RateLimit.RPS),
		Burst:          cfg.RateLimit.Burst,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, svc, logger)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              srv.ListenAddr(),
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	logger.Info("server starting",
		"addr", httpSrv.Addr,
		"version", version,
		"provider", cfg.LLM.Provider,
		"cache", cfg.Cache.Backend,
		"engine", cfg.Render.Engine)
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", httpSrv.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
