package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Errors for configuration validation.
var (
	ErrSecretRequired = errors.New("secret is required to sign uploads")
	ErrConfigRequired = errors.New("config is required")
)

// ErrEmptyPath is returned when a local or remote path is missing.
var ErrEmptyPath = errors.New("path is required")
