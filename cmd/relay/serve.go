package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/relay/config"
	relayhttp "github.com/sagarc03/relay/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the relay HTTP server.

The server answers OPTIONS, HEAD, GET and PUT below the base path. Point the
issuing server's upload base URL at http(s)://<host>:<port><base_path>.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5050, "HTTP server port (env: RELAY_SERVER_PORT)")
	serveCmd.Flags().String("base-path", "/upload/", "URL path the relay is mounted at (env: RELAY_SERVER_BASE_PATH)")
	serveCmd.Flags().Int("chunk-size", 8192, "download chunk size in bytes (env: RELAY_STORAGE_CHUNK_SIZE)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	service, root, err := openService(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = root.Close() }()

	handlerConfig := relayhttp.HandlerConfig{
		BasePath:  cfg.Server.BasePath,
		ChunkSize: cfg.Storage.ChunkSize,
		CORS: relayhttp.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:         cfg.CORS.MaxAge,
		},
	}

	handler := relayhttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: seconds(cfg.Server.ReadHeaderTimeout),
		ReadTimeout:       seconds(cfg.Server.ReadTimeout),
		WriteTimeout:      seconds(cfg.Server.WriteTimeout),
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server",
		"addr", addr,
		"base_path", cfg.Server.BasePath,
		"storage", cfg.Storage.Path,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
