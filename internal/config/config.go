// Package config loads service configuration from a JSON file backend at
// $XDG_CONFIG_HOME/ytnotes/config.json with YTNOTES_* environment
// overrides. Thresholds that shape pipeline behavior live here rather than
// as constants so operators can tune them without a rebuild.
package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	Server    ServerConfig
	Generator GeneratorConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Fetch     FetchConfig
	Synthesis SynthesisConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port  int
	Token string
}

type GeneratorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type CacheConfig struct {
	Backend   string // "sqlite" or "redis"
	RedisAddr string
	RedisTTL  string // Go duration string, empty for no expiry
}

type StorageConfig struct {
	DataDir string
}

type FetchConfig struct {
	PreferredLang string
	MinSegments   int
	MinChars      int
	MaxAttempts   int
}

type SynthesisConfig struct {
	DirectCeiling int
	ChunkSize     int
	MaxChunks     int
	GroupSize     int
}

type LogConfig struct {
	Level string
}

// Configured reports whether generation credentials are present. Absence
// is not a load error: transcript-only operations still work without them.
func (c Config) Configured() bool {
	return c.Generator.APIKey != ""
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Generator: GeneratorConfig{
			Model: "anthropic/claude-sonnet-4",
		},
		Cache: CacheConfig{
			Backend:   "sqlite",
			RedisAddr: "localhost:6379",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Fetch: FetchConfig{
			PreferredLang: "en",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "ytnotes-data"
		}
	}
	return filepath.Join(dir, "ytnotes")
}

// Load reads configuration from the JSON file backend, then applies
// YTNOTES_* environment overrides.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
