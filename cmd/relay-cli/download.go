package main

import (
	"io"
	"os"

	"github.com/sagarc03/relay/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <remote-name> [local-path]",
	Short: "Download a file from the relay",
	Long: `Download a file from the relay.

The local path defaults to the last segment of the remote name.

Examples:
  relay-cli download 3f2a/report.pdf
  relay-cli download 3f2a/report.pdf ./report.pdf
  relay-cli download --stdout 3f2a/data.json | jq .
  relay-cli download -o ./out.txt 3f2a/notes.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	opts := clientcli.DownloadOptions{RemotePath: args[0]}
	if len(args) > 1 {
		opts.LocalPath = args[1]
	}
	if downloadOutput != "" {
		opts.LocalPath = downloadOutput
	}
	if downloadStdout {
		opts.LocalPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return handleError(os.Stderr, err)
	}

	result, reader, err := client.Download(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		n, copyErr := io.Copy(os.Stdout, reader)
		if copyErr != nil {
			return handleError(os.Stderr, copyErr)
		}
		result.Size = n
		// Metadata goes to stderr so stdout stays the file content
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
