package driving

import (
	"context"

	"github.com/custodia-labs/wikidex/internal/core/domain"
)

// SyncRunner executes wiki synchronisation runs.
type SyncRunner interface {
	// Run performs one full synchronisation pass and reports the store
	// mutations it made. At most one run may be active at a time; a
	// second trigger fails with domain.ErrSyncInProgress.
	Run(ctx context.Context) (*domain.RunResult, error)

	// Status returns the state of the current or most recent run.
	Status(ctx context.Context) (*RunStatus, error)
}

// RunStatus represents the observable state of a sync run.
type RunStatus struct {
	// RunID identifies the run.
	RunID string

	// Running indicates a run is currently in progress.
	Running bool

	// PagesProcessed is the count of pages reconciled so far.
	PagesProcessed int
}
