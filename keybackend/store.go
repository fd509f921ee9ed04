package keybackend

// SecretConfig names where the shared secret comes from.
type SecretConfig struct {
	Inline string // Secret given directly in config, env or flags
	File   string // Path to a file holding the secret
}

// ResolveSecret returns the secret from File if one is set, otherwise
// Inline. The file takes precedence so a mounted credential can replace
// a secret left in a config file.
func ResolveSecret(cfg SecretConfig) (string, error) {
	if cfg.File != "" {
		return LoadSecretFromFile(cfg.File)
	}
	if cfg.Inline == "" {
		return "", ErrEmptySecret
	}
	return cfg.Inline, nil
}
