package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/wikidex/internal/adapters/driven/notify/slack"
	"github.com/custodia-labs/wikidex/internal/adapters/driven/source/redmine"
	"github.com/custodia-labs/wikidex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wikidex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/wikidex/internal/chunker"
	"github.com/custodia-labs/wikidex/internal/config"
	"github.com/custodia-labs/wikidex/internal/core/ports/driven"
	"github.com/custodia-labs/wikidex/internal/core/services"
	"github.com/custodia-labs/wikidex/internal/logger"
)

// app holds the wired services plus the loaded config for commands
// that need more than the runner.
type app struct {
	cfg   *config.Config
	close func()
}

// ensureServices loads config and builds the service graph unless a
// test has already injected services.
func ensureServices() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, close: func() {}}

	if syncRunner != nil {
		return a, nil
	}

	if cfg.Redmine.URL == "" || cfg.Redmine.APIKey == "" || cfg.Redmine.Project == "" {
		return nil, errors.New("redmine url, api_key and project must be configured")
	}

	source := redmine.NewClient(redmine.Config{
		BaseURL:           cfg.Redmine.URL,
		APIKey:            cfg.Redmine.APIKey,
		Project:           cfg.Redmine.Project,
		Timeout:           cfg.Redmine.Timeout(),
		RequestsPerSecond: float64(cfg.Redmine.RequestsPerSecond),
	})

	var store driven.DocumentStore
	if cfg.Storage.Path != "" {
		sqliteStore, err := sqlite.NewStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open document store: %w", err)
		}
		a.close = func() {
			if err := sqliteStore.Close(); err != nil {
				logger.Warn("Closing document store: %v", err)
			}
		}
		store = sqliteStore
		logger.Debug("Using SQLite document store at %s", cfg.Storage.Path)
	} else {
		store = memory.NewDocumentStore()
		logger.Debug("Using in-memory document store")
	}

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Sync.ChunkSize),
		chunker.WithOverlap(cfg.Sync.ChunkOverlap),
	)

	opts := []services.Option{
		services.WithParseErrorPolicy(services.ParseErrorPolicy(cfg.Sync.OnParseError)),
	}
	if cfg.Slack.Token != "" && cfg.Slack.Channel != "" {
		notifier = slack.New(cfg.Slack.Token, cfg.Slack.Channel)
		opts = append(opts, services.WithNotifier(notifier))
	}

	syncRunner = services.NewSyncRunner(source, store, splitter, opts...)
	return a, nil
}
