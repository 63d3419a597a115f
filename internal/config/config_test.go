package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultChunkSize, cfg.Sync.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.Sync.ChunkOverlap)
	assert.Equal(t, "keep", cfg.Sync.OnParseError)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redmine.Timeout())
	assert.Empty(t, cfg.Storage.Path)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[redmine]
url = "https://redmine.example.com"
api_key = "secret"
project = "handbook"
timeout_seconds = 10

[slack]
token = "xoxb-test"
channel = "#wiki"

[sync]
chunk_size = 500
chunk_overlap = 50
on_parse_error = "prune"

[storage]
path = "/var/lib/wikidex/index.db"

[server]
addr = ":9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://redmine.example.com", cfg.Redmine.URL)
	assert.Equal(t, "handbook", cfg.Redmine.Project)
	assert.Equal(t, 10*time.Second, cfg.Redmine.Timeout())
	assert.Equal(t, "xoxb-test", cfg.Slack.Token)
	assert.Equal(t, 500, cfg.Sync.ChunkSize)
	assert.Equal(t, "prune", cfg.Sync.OnParseError)
	assert.Equal(t, "/var/lib/wikidex/index.db", cfg.Storage.Path)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[redmine]
url = "https://redmine.example.com"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://redmine.example.com", cfg.Redmine.URL)
	assert.Equal(t, DefaultChunkSize, cfg.Sync.ChunkSize)
	assert.Equal(t, DefaultRPS, cfg.Redmine.RequestsPerSecond)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[redmine]
api_key = "from-file"

[slack]
token = "file-token"
`)

	t.Setenv("REDMINE_API_KEY", "from-env")
	t.Setenv("SLACK_BOT_TOKEN", "env-token")
	t.Setenv("SLACK_SIGNING_SECRET", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Redmine.APIKey)
	assert.Equal(t, "env-token", cfg.Slack.Token)
	assert.Equal(t, "env-secret", cfg.Slack.SigningSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, `redmine = [broken`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Sync.ChunkSize = 0 },
			wantErr: "chunk_size",
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.Sync.ChunkOverlap = -1 },
			wantErr: "chunk_overlap",
		},
		{
			name:    "unknown parse error policy",
			mutate:  func(c *Config) { c.Sync.OnParseError = "panic" },
			wantErr: "on_parse_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
