package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/relay/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove stale uploads",
	Long: `Permanently remove stored files older than the configured age.

The relay keeps no records besides the files themselves, so the file
modification time decides. Partial files left by interrupted uploads are
removed the same way.

Run this periodically (cron, systemd timer) to reclaim storage space.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().Duration("max-age", 0, "remove files older than this (default: 168h, env: RELAY_CLEANUP_MAX_AGE)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	service, root, err := openService(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = root.Close() }()

	slog.Info("starting cleanup", "path", cfg.Storage.Path, "max_age", cfg.Cleanup.MaxAge)

	removed, err := service.Cleanup(cmd.Context(), cfg.Cleanup.MaxAge)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	slog.Info("cleanup complete", "files_removed", removed)
	return nil
}
