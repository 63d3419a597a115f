package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/wikidex/internal/core/domain"
	"github.com/custodia-labs/wikidex/internal/core/ports/driving"
)

// mockSyncRunner implements driving.SyncRunner for testing.
type mockSyncRunner struct {
	result *domain.RunResult
	runErr error
	status *driving.RunStatus
}

func (m *mockSyncRunner) Run(_ context.Context) (*domain.RunResult, error) {
	if m.runErr != nil {
		return nil, m.runErr
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RunResult{}, nil
}

func (m *mockSyncRunner) Status(_ context.Context) (*driving.RunStatus, error) {
	if m.status != nil {
		return m.status, nil
	}
	return &driving.RunStatus{}, nil
}

func setupRunnerTest(mock *mockSyncRunner) func() {
	oldRunner := syncRunner
	syncRunner = mock
	return func() {
		syncRunner = oldRunner
	}
}

func execute(args ...string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf, err
}

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
}

func TestSyncCmd_ReportsResult(t *testing.T) {
	cleanup := setupRunnerTest(&mockSyncRunner{
		result: &domain.RunResult{PagesProcessed: 3, ChunksAdded: 5},
	})
	defer cleanup()

	buf, err := execute("sync")

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Import complete")
	assert.Contains(t, buf.String(), "5 added")
}

func TestSyncCmd_UpToDate(t *testing.T) {
	cleanup := setupRunnerTest(&mockSyncRunner{
		result: &domain.RunResult{PagesProcessed: 3},
	})
	defer cleanup()

	buf, err := execute("sync")

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "already up to date")
}

func TestSyncCmd_AlreadyRunning(t *testing.T) {
	cleanup := setupRunnerTest(&mockSyncRunner{
		runErr: domain.ErrSyncInProgress,
	})
	defer cleanup()

	_, err := execute("sync")

	assert.ErrorContains(t, err, "already running")
}

func TestStatusCmd_NoRunYet(t *testing.T) {
	cleanup := setupRunnerTest(&mockSyncRunner{})
	defer cleanup()

	buf, err := execute("status")

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No import has run yet")
}

func TestStatusCmd_Running(t *testing.T) {
	cleanup := setupRunnerTest(&mockSyncRunner{
		status: &driving.RunStatus{RunID: "run-1", Running: true, PagesProcessed: 7},
	})
	defer cleanup()

	buf, err := execute("status")

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "running")
	assert.Contains(t, buf.String(), "7 pages")
}
