package main

import (
	"os"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <remote-name>",
	Short: "Show type and size of a stored file",
	Long: `Show the content type and size the relay reports for a stored file.

Only headers are requested; the body is not transferred.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return handleError(os.Stderr, err)
	}

	info, err := client.Info(cmd.Context(), args[0])
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatInfo(os.Stdout, info)
}
