package main

import (
	"os"

	"github.com/sagarc03/relay/clientcli"
	"github.com/spf13/cobra"
)

var uploadRecursive bool

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [remote-name]",
	Short: "Upload files to the relay",
	Long: `Upload files to the relay.

The upload URL is signed locally with the shared secret. A name that is
already stored is rejected by the relay; files are never overwritten.

Examples:
  relay-cli upload ./report.pdf
  relay-cli upload ./report.pdf 3f2a/report.pdf
  relay-cli upload -r ./photos/ album-1/`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
}

func runUpload(cmd *cobra.Command, args []string) error {
	opts := clientcli.UploadOptions{
		LocalPath: args[0],
		Recursive: uploadRecursive,
	}
	if len(args) > 1 {
		opts.RemotePath = args[1]
	}

	client, err := getClient()
	if err != nil {
		return handleError(os.Stderr, err)
	}

	results, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return results[i].Err
		}
	}
	return nil
}
