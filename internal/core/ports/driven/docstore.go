package driven

import (
	"context"

	"github.com/custodia-labs/wikidex/internal/core/domain"
)

// DocumentStore persists indexed chunks keyed by document id.
// The underlying store is opaque to the core: anything that can hold
// text plus typed metadata per id satisfies the contract.
type DocumentStore interface {
	// Get retrieves a document by id.
	// Returns domain.ErrNotFound when the id does not exist.
	Get(ctx context.Context, id string) (*domain.IndexedDocument, error)

	// GetMany retrieves metadata for the given ids in one batch.
	// Unknown ids are simply absent from the result, not an error.
	GetMany(ctx context.Context, ids []string) (map[string]domain.DocumentMeta, error)

	// Add stores a document. If the id already exists the record is
	// replaced atomically; the old record is never observable half
	// merged with the new one.
	Add(ctx context.Context, doc domain.IndexedDocument) error

	// Delete removes the given ids. Ids that do not exist are ignored.
	Delete(ctx context.Context, ids []string) error

	// ListIDs enumerates every stored document id.
	ListIDs(ctx context.Context) (map[string]struct{}, error)
}
