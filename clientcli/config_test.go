package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/relay/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	t.Run("keeps endpoint", func(t *testing.T) {
		cfg := &clientcli.Config{Endpoint: "https://share.example.com/upload/"}
		assert.Equal(t, "https://share.example.com/upload/", cfg.WithDefaults().Endpoint)
	})

	t.Run("empty endpoint gets default", func(t *testing.T) {
		cfg := &clientcli.Config{}
		withDefaults := cfg.WithDefaults()
		assert.Equal(t, clientcli.DefaultEndpoint, withDefaults.Endpoint)
		assert.Empty(t, cfg.Endpoint)
	})
}

func TestConfig_ValidateWithAuth(t *testing.T) {
	assert.NoError(t, (&clientcli.Config{Secret: "s3cr3t"}).ValidateWithAuth())
	assert.ErrorIs(t, (&clientcli.Config{}).ValidateWithAuth(), clientcli.ErrSecretRequired)
}

func TestMergeConfig(t *testing.T) {
	merged := clientcli.MergeConfig(
		&clientcli.Config{Endpoint: "http://file/upload/", Secret: "file-secret"},
		nil,
		&clientcli.Config{Secret: "env-secret"},
		&clientcli.Config{Endpoint: "http://flag/upload/"},
	)

	assert.Equal(t, "http://flag/upload/", merged.Endpoint)
	assert.Equal(t, "env-secret", merged.Secret)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("RELAY_ENDPOINT", "http://env/upload/")
	t.Setenv("RELAY_SECRET", "env-secret")
	t.Setenv("RELAY_PROFILE", "prod")
	t.Setenv("RELAY_CLI_CONFIG", "/tmp/relay.yaml")

	cfg := clientcli.ConfigFromEnv()

	assert.Equal(t, "http://env/upload/", cfg.Endpoint)
	assert.Equal(t, "env-secret", cfg.Secret)
	assert.Equal(t, "prod", clientcli.ProfileFromEnv())
	assert.Equal(t, "/tmp/relay.yaml", clientcli.ConfigPathFromEnv())
}

func TestConfigFromProfile(t *testing.T) {
	assert.Equal(t, &clientcli.Config{}, clientcli.ConfigFromProfile(nil))

	cfg := clientcli.ConfigFromProfile(&clientcli.Profile{
		Name:     "local",
		Endpoint: "http://localhost:5050/upload/",
		Secret:   "s3cr3t",
	})
	assert.Equal(t, "http://localhost:5050/upload/", cfg.Endpoint)
	assert.Equal(t, "s3cr3t", cfg.Secret)
}

func newConfigFile() *clientcli.ConfigFile {
	return &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "local", Endpoint: "http://localhost:5050/upload/", Secret: "a"},
			{Name: "prod", Endpoint: "https://share.example.com/upload/", Secret: "b", Default: true},
		},
	}
}

func TestConfigFile_GetProfile(t *testing.T) {
	cfg := newConfigFile()

	p, err := cfg.GetProfile("local")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Secret)

	p, err = cfg.GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)

	_, err = cfg.GetProfile("missing")
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)

	_, err = (&clientcli.ConfigFile{}).GetProfile("")
	assert.ErrorIs(t, err, clientcli.ErrNoProfiles)
}

func TestConfigFile_DefaultFallsBackToFirst(t *testing.T) {
	cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "one"}, {Name: "two"}}}

	p, err := cfg.GetDefaultProfile()

	require.NoError(t, err)
	assert.Equal(t, "one", p.Name)
}

func TestConfigFile_AddUpdateRemove(t *testing.T) {
	cfg := newConfigFile()

	err := cfg.AddProfile(clientcli.Profile{Name: "local"})
	assert.ErrorIs(t, err, clientcli.ErrProfileExists)

	require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "staging", Endpoint: "http://staging/upload/"}))
	assert.Len(t, cfg.Profiles, 3)

	require.NoError(t, cfg.UpdateProfile(clientcli.Profile{Name: "staging", Endpoint: "http://new/upload/"}))
	p, err := cfg.GetProfile("staging")
	require.NoError(t, err)
	assert.Equal(t, "http://new/upload/", p.Endpoint)

	assert.ErrorIs(t, cfg.UpdateProfile(clientcli.Profile{Name: "missing"}), clientcli.ErrProfileNotFound)

	require.NoError(t, cfg.RemoveProfile("local"))
	require.Len(t, cfg.Profiles, 2)
	assert.Equal(t, "prod", cfg.Profiles[0].Name)
	assert.Equal(t, "staging", cfg.Profiles[1].Name)
	assert.ErrorIs(t, cfg.RemoveProfile("local"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SetDefault(t *testing.T) {
	cfg := newConfigFile()

	require.NoError(t, cfg.SetDefault("local"))

	p, err := cfg.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name)
	assert.False(t, cfg.Profiles[1].Default)

	assert.ErrorIs(t, cfg.SetDefault("missing"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := newConfigFile()

	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "secret: b")

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Profiles, loaded.Profiles)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [unterminated"), 0o600))

	_, err := clientcli.LoadConfigFile(path)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoadConfigFile_InvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "profiles:\n  - name: local\n    endpoint: localhost:5050/upload/\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := clientcli.LoadConfigFile(path)

	assert.ErrorIs(t, err, clientcli.ErrInvalidProfile)
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		valid    bool
	}{
		{"http://localhost:5050/upload/", true},
		{"https://share.example.com/upload/", true},
		{"", false},
		{"ftp://share.example.com/", false},
		{"https:///upload/", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			err := clientcli.ValidateEndpoint(tt.endpoint)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
