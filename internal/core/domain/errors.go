package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a run was triggered while another is
	// active. Runs are single-flight; a second trigger is rejected,
	// never raced.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSourceFetch indicates the remote wiki is unreachable or
	// returned a non-success status. Fatal to the current run: no
	// pruning happens, so unfetched pages are never treated as deleted.
	ErrSourceFetch = errors.New("source fetch failed")

	// ErrSourceParse indicates a fetched page or attachment could not
	// be decoded as text. What happens to the page's previously indexed
	// chunks is a configured policy; see the sync service.
	ErrSourceParse = errors.New("source parse failed")

	// ErrStoreWrite indicates the document store failed to add or
	// delete a record. The run aborts rather than continuing with a
	// corrupted diff.
	ErrStoreWrite = errors.New("store write failed")
)

// RunError wraps a run failure together with the mutations already
// made before the abort. The partial counts describe real store state;
// callers can report them even though the run did not finish.
type RunError struct {
	Partial RunResult
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("sync run failed after %s: %v", &e.Partial, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
