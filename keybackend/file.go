package keybackend

import (
	"fmt"
	"os"
	"strings"
)

// LoadSecretFromFile reads the shared secret from a file, as mounted by
// Docker or systemd credentials. A single trailing line break is dropped;
// any other whitespace is part of the secret.
func LoadSecretFromFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}

	secret := strings.TrimSuffix(string(data), "\n")
	secret = strings.TrimSuffix(secret, "\r")
	if secret == "" {
		return "", fmt.Errorf("secret file %s: %w", path, ErrEmptySecret)
	}

	return secret, nil
}
