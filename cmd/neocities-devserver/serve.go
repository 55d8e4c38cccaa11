package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/neocities/config"
	nchttp "github.com/sagarc03/neocities/http"
	"github.com/sagarc03/neocities/keybackend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the dev server. Seed accounts from the config are created
before the server starts listening. SIGINT or SIGTERM shut it down
gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5709, "HTTP server port (env: NEOCITIES_DEV_SERVER_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, cleanup, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	accounts, err := keybackend.NewAccountStore(cfg.Auth.Sites)
	if err != nil {
		return fmt.Errorf("load seed accounts: %w", err)
	}
	if _, err := accounts.Seed(ctx, service); err != nil {
		return err
	}

	handler := nchttp.NewHandler(&nchttp.HandlerConfig{
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	}, service)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return serve(ctx, listener, handler.Router())
}

// serve runs an http.Server on l until ctx is cancelled, then shuts it down
// gracefully.
func serve(ctx context.Context, l net.Listener, h http.Handler) error {
	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", l.Addr().String())
		errCh <- server.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
