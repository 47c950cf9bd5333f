// File path: cmd/animalert/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/animalert/animalert/internal/api"
	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/data/orchestrator"
)

var (
	serveAddr     string
	serveMaxBody  int64
	shutdownGrace time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides ANIMALERT_LISTEN_ADDR)")
	serveCmd.Flags().Int64Var(&serveMaxBody, "max-body", 0, "maximum request body in bytes (0 uses the default)")
	serveCmd.Flags().DurationVar(&shutdownGrace, "shutdown-grace", 30*time.Second, "time allowed for in-flight submissions on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := common.Logger()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := orchestrator.LoadConfig()
	if err != nil {
		return fmt.Errorf("orchestrator config: %w", err)
	}
	if trimmed := strings.TrimSpace(serveAddr); trimmed != "" {
		cfg.ListenAddr = trimmed
	}

	orch, err := orchestrator.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	defer orch.Close()

	server, err := api.NewServer(orch, &api.Config{MaxBodyBytes: serveMaxBody})
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	reachable := cfg.ListenAddr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("animalert: server listening", "addr", cfg.ListenAddr, "health", "/healthz")
	logger.Info("animalert: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("animalert: shutting down", "grace", shutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
