package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sagarc03/relay/keybackend"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "RELAY"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for relay.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
	Log     LogConfig     `mapstructure:"log"`
	Env     string        `mapstructure:"env" validate:"omitempty,oneof=dev development prod production"`
}

// ServerConfig holds HTTP server configuration. Timeouts are in seconds;
// zero disables the timeout.
type ServerConfig struct {
	Port              int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	BasePath          string `mapstructure:"base_path" validate:"required,startswith=/,endswith=/"`
	ReadHeaderTimeout int    `mapstructure:"read_header_timeout" validate:"min=0"`
	ReadTimeout       int    `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout      int    `mapstructure:"write_timeout" validate:"min=0"`
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Path      string `mapstructure:"path" validate:"required"`
	ChunkSize int    `mapstructure:"chunk_size" validate:"min=1"`
}

// AuthConfig holds the secret shared with the server issuing upload URLs.
// When SecretFile is set, Load replaces Secret with the file's content.
type AuthConfig struct {
	Secret     string `mapstructure:"secret" validate:"required"`
	SecretFile string `mapstructure:"secret_file"`
}

// CORSConfig holds cross-origin settings. No origins means the wildcard.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         int      `mapstructure:"max_age" validate:"min=0"`
}

// CleanupConfig holds settings for removing stale uploads.
type CleanupConfig struct {
	MaxAge time.Duration `mapstructure:"max_age" validate:"gt=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// IsProduction reports whether Env selects production logging.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"storage-path": "storage.path",
	"secret":       "auth.secret",
	"secret-file":  "auth.secret_file",
	"port":         "server.port",
	"base-path":    "server.base_path",
	"chunk-size":   "storage.chunk_size",
	"max-age":      "cleanup.max_age",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5050)
	v.SetDefault("server.base_path", "/upload/")
	v.SetDefault("server.read_header_timeout", 10)
	v.SetDefault("server.read_timeout", 0)
	v.SetDefault("server.write_timeout", 0)

	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.chunk_size", 8192)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.secret_file", "")

	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("cors.max_age", 0)

	v.SetDefault("cleanup.max_age", "168h")

	v.SetDefault("log.level", "info")
	v.SetDefault("env", "dev")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Resolve the secret source
	if cfg.Auth.SecretFile != "" {
		secret, err := keybackend.ResolveSecret(keybackend.SecretConfig{
			Inline: cfg.Auth.Secret,
			File:   cfg.Auth.SecretFile,
		})
		if err != nil {
			return nil, fmt.Errorf("load secret: %w", err)
		}
		cfg.Auth.Secret = secret
	}

	// 7. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
