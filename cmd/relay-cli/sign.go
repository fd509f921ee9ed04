package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sagarc03/relay/clientcli"
	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign <remote-name> <size>",
	Short: "Print a signed upload URL",
	Long: `Print the upload URL for size bytes stored as remote-name.

The URL can be handed to any HTTP client that sends a PUT with exactly
size bytes.`,
	Args: cobra.ExactArgs(2),
	RunE: runSign,
}

func runSign(_ *cobra.Command, args []string) error {
	size, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || size < 0 {
		return handleError(os.Stderr, fmt.Errorf("invalid size %q", args[1]))
	}

	cfg, err := buildConfig()
	if err != nil {
		return handleError(os.Stderr, err)
	}
	if err := cfg.ValidateWithAuth(); err != nil {
		return handleError(os.Stderr, err)
	}

	client, err := clientcli.New(cfg)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	name := clientcli.NormalizeName(args[0])
	if name == "" {
		return handleError(os.Stderr, errors.New("remote name is required"))
	}

	return getFormatter().FormatSign(os.Stdout, client.Sign(name, size))
}
