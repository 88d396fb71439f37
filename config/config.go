// Package config loads configuration for the collectr search engine.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/eightythreeapps/collectr/logging"
)

// IGDBConfig holds credentials for the primary metadata provider.
type IGDBConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// RAWGConfig holds credentials for the fallback metadata provider.
// The API key is optional; RAWG serves unauthenticated requests at a
// reduced rate.
type RAWGConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearchConfig holds aggregation defaults.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// Config holds application configuration.
type Config struct {
	IGDB    IGDBConfig     `yaml:"igdb"`
	RAWG    RAWGConfig     `yaml:"rawg"`
	Search  SearchConfig   `yaml:"search"`
	Logging logging.Config `yaml:"logging"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Search:  SearchConfig{DefaultLimit: 20},
		Logging: logging.DefaultConfig(),
	}
}

// configPaths returns the list of paths to search for config file.
func configPaths() []string {
	paths := []string{
		".collectr.yaml",
		".collectr.yml",
	}

	// Check home config dir
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "collectr", "config.yaml"),
			filepath.Join(home, ".config", "collectr", "config.yml"),
			filepath.Join(home, ".collectr.yaml"),
		)
	}

	return paths
}

// Load loads configuration from file or returns defaults.
// Priority: env COLLECTR_CONFIG > search paths > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Check env for explicit config path
	if envPath := os.Getenv("COLLECTR_CONFIG"); envPath != "" {
		if err := cfg.loadFromFile(envPath); err != nil {
			return nil, err
		}
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	// Search for config file
	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvOverrides() {
	if id := os.Getenv("IGDB_CLIENT_ID"); id != "" {
		c.IGDB.ClientID = id
	}
	if secret := os.Getenv("IGDB_CLIENT_SECRET"); secret != "" {
		c.IGDB.ClientSecret = secret
	}
	if key := os.Getenv("RAWG_API_KEY"); key != "" {
		c.RAWG.APIKey = key
	}
}

// GetDefaultLimit returns the search page size, applying defaults.
func (c *Config) GetDefaultLimit() int {
	if c.Search.DefaultLimit > 0 {
		return c.Search.DefaultLimit
	}
	return 20
}
