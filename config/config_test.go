package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.IGDB.ClientID)
	assert.Empty(t, cfg.RAWG.APIKey)
}

func TestLoad_FromExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
igdb:
  client_id: my-client
  client_secret: my-secret
rawg:
  api_key: my-key
search:
  default_limit: 10
logging:
  format: json
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("COLLECTR_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "my-client", cfg.IGDB.ClientID)
	assert.Equal(t, "my-secret", cfg.IGDB.ClientSecret)
	assert.Equal(t, "my-key", cfg.RAWG.APIKey)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("igdb:\n  client_id: from-file\n"), 0o600))
	t.Setenv("COLLECTR_CONFIG", path)
	t.Setenv("IGDB_CLIENT_ID", "from-env")
	t.Setenv("RAWG_API_KEY", "key-from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.IGDB.ClientID)
	assert.Equal(t, "key-from-env", cfg.RAWG.APIKey)
}

func TestLoad_MissingExplicitPathErrors(t *testing.T) {
	t.Setenv("COLLECTR_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_GetDefaultLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"returns configured limit", 10, 10},
		{"returns default when zero", 0, 20},
		{"returns default when negative", -5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Search: SearchConfig{DefaultLimit: tt.limit}}
			assert.Equal(t, tt.expected, cfg.GetDefaultLimit())
		})
	}
}
