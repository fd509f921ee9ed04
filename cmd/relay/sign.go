package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sagarc03/relay"
	"github.com/sagarc03/relay/config"
)

var signCmd = &cobra.Command{
	Use:   "sign <name> <size>",
	Short: "Print the upload token for a file",
	Long: `Compute the token the issuing server would hand out for uploading
<size> bytes as <name>.

With --base-url the complete upload URL is printed instead, ready for:
  curl -T file "$(relay sign --base-url https://share.example.com/upload/ uuid/file.txt 1234)"`,
	Args: cobra.ExactArgs(2),
	RunE: runSign,
}

var signBaseURL string

func init() {
	signCmd.Flags().StringVar(&signBaseURL, "base-url", "", "print a full upload URL below this base")
	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	name := args[0]
	size, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || size < 0 {
		return fmt.Errorf("invalid size %q", args[1])
	}

	signer := relay.NewSigner(cfg.Auth.Secret)

	if signBaseURL != "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), signer.UploadURL(signBaseURL, name, size))
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), signer.Sign(name, size))
	return err
}
