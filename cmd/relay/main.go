package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/relay/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "relay",
	Short:   "Upload relay for pre-signed HTTP file sharing",
	Long: `Relay stores files uploaded with URLs pre-signed by an XMPP server
(Prosody mod_http_upload_external) and serves them back for download.

Uploads are authorized by an HMAC-SHA256 token over the file name and size,
computed with a secret shared between the issuing server and the relay.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged in order (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("storage-path", "", "storage directory path (default: ./data, env: RELAY_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("secret", "", "secret shared with the issuing server (env: RELAY_AUTH_SECRET)")
	rootCmd.PersistentFlags().String("secret-file", "", "file holding the shared secret, overrides --secret (env: RELAY_AUTH_SECRET_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: RELAY_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
