package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"foodrec/internal/api"
	"foodrec/internal/observability"
	"foodrec/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Load the catalog, score every item and encode every label, then serve
the recommendation and search API. No request is accepted before the engine
is ready.

Examples:
  foodrec serve
  foodrec serve --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, metricsHandler := observability.NewMetrics()

	rt, err := openRuntime(cfg, GetRootDir(), metrics, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	engineOnce := usecase.NewEngineOnce(func(ctx context.Context) (*usecase.Engine, error) {
		return usecase.NewEngine(ctx, rt.catalog, rt.embedder,
			engineOptions(cfg, rt, newProgress("Encoding catalog")), metrics, slog.Default())
	})
	engine, err := engineOnce.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	port := cfg.Server.Port
	if servePort != "" {
		port = servePort
	}

	server := &http.Server{
		Addr: net.JoinHostPort("", port),
		Handler: api.NewRouter(engine, api.RouterOptions{
			Metrics:        metrics,
			MetricsHandler: metricsHandler,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
