// Package memory provides an in-memory document store, used in tests
// and as the default when no storage path is configured.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/wikidex/internal/core/domain"
	"github.com/custodia-labs/wikidex/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.IndexedDocument
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]domain.IndexedDocument),
	}
}

// Get retrieves a document by id.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetMany retrieves metadata for the given ids. Unknown ids are absent
// from the result.
func (s *DocumentStore) GetMany(_ context.Context, ids []string) (map[string]domain.DocumentMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make(map[string]domain.DocumentMeta, len(ids))
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			metas[id] = doc.Meta
		}
	}
	return metas, nil
}

// Add stores a document, replacing any existing record with the same id.
func (s *DocumentStore) Add(_ context.Context, doc domain.IndexedDocument) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

// Delete removes the given ids. Missing ids are ignored.
func (s *DocumentStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.docs, id)
	}
	return nil
}

// ListIDs enumerates every stored document id.
func (s *DocumentStore) ListIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{}, len(s.docs))
	for id := range s.docs {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Len returns the number of stored documents. Test helper.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
