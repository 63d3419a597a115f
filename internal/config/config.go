// Package config loads Wikidex configuration from a TOML file with
// environment variable overrides for credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/wikidex/internal/core/services"
)

// Default values applied when the config file omits a setting.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultServerAddr   = ":8080"
	DefaultTimeout      = 30 * time.Second
	DefaultRPS          = 4
)

// Config is the full Wikidex configuration.
type Config struct {
	Redmine RedmineConfig `toml:"redmine"`
	Slack   SlackConfig   `toml:"slack"`
	Sync    SyncConfig    `toml:"sync"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
}

// RedmineConfig points at the wiki to import.
type RedmineConfig struct {
	URL               string `toml:"url"`
	APIKey            string `toml:"api_key"`
	Project           string `toml:"project"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RequestsPerSecond int    `toml:"requests_per_second"`
}

// SlackConfig configures notifications and the HTTP trigger surface.
// All fields are optional; without a token and channel the importer
// runs silently.
type SlackConfig struct {
	Token         string `toml:"token"`
	Channel       string `toml:"channel"`
	SigningSecret string `toml:"signing_secret"`
	SkipVerify    bool   `toml:"skip_verify"`
}

// SyncConfig tunes chunking and error handling.
type SyncConfig struct {
	ChunkSize    int    `toml:"chunk_size"`
	ChunkOverlap int    `toml:"chunk_overlap"`
	OnParseError string `toml:"on_parse_error"`
}

// StorageConfig selects the document store. An empty path means the
// in-memory store.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns a config populated with defaults only.
func Default() *Config {
	return &Config{
		Redmine: RedmineConfig{
			TimeoutSeconds:    int(DefaultTimeout / time.Second),
			RequestsPerSecond: DefaultRPS,
		},
		Sync: SyncConfig{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			OnParseError: string(services.ParseErrorKeep),
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// Load reads the TOML file at path, applies defaults for omitted
// settings, then applies environment overrides. An empty path skips
// the file and returns defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays credentials from the environment. Environment
// values win over the file so secrets stay out of checked-in config.
func (c *Config) applyEnv() {
	if v := os.Getenv("REDMINE_API_URL"); v != "" {
		c.Redmine.URL = v
	}
	if v := os.Getenv("REDMINE_API_KEY"); v != "" {
		c.Redmine.APIKey = v
	}
	if v := os.Getenv("REDMINE_PROJECT"); v != "" {
		c.Redmine.Project = v
	}
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.Token = v
	}
	if v := os.Getenv("SLACK_CHANNEL"); v != "" {
		c.Slack.Channel = v
	}
	if v := os.Getenv("SLACK_SIGNING_SECRET"); v != "" {
		c.Slack.SigningSecret = v
	}
}

// Validate checks settings that would otherwise fail deep inside a
// sync run.
func (c *Config) Validate() error {
	if c.Sync.ChunkSize <= 0 {
		return fmt.Errorf("sync.chunk_size must be positive, got %d", c.Sync.ChunkSize)
	}
	if c.Sync.ChunkOverlap < 0 {
		return fmt.Errorf("sync.chunk_overlap must not be negative, got %d", c.Sync.ChunkOverlap)
	}
	policy := services.ParseErrorPolicy(c.Sync.OnParseError)
	if !policy.Valid() {
		return fmt.Errorf("sync.on_parse_error must be %q or %q, got %q",
			services.ParseErrorKeep, services.ParseErrorPrune, c.Sync.OnParseError)
	}
	return nil
}

// Timeout returns the Redmine request timeout as a duration.
func (c *RedmineConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
