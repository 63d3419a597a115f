package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/wikidex/internal/chunker"
	"github.com/custodia-labs/wikidex/internal/core/domain"
	"github.com/custodia-labs/wikidex/internal/core/ports/driven"
	"github.com/custodia-labs/wikidex/internal/core/ports/driving"
	"github.com/custodia-labs/wikidex/internal/logger"
)

// ParseErrorPolicy decides what happens to a page whose content cannot
// be decoded. The safe default keeps the page's previously indexed
// chunks out of pruning, treating the page as "still present, unknown
// content" instead of silently deleting it.
type ParseErrorPolicy string

const (
	// ParseErrorKeep shields the page's stored chunks from pruning.
	ParseErrorKeep ParseErrorPolicy = "keep"

	// ParseErrorPrune lets the page's stored chunks become orphans.
	ParseErrorPrune ParseErrorPolicy = "prune"
)

// Valid reports whether the policy is a known value.
func (p ParseErrorPolicy) Valid() bool {
	return p == ParseErrorKeep || p == ParseErrorPrune
}

// Ensure SyncRunner implements the interface.
var _ driving.SyncRunner = (*SyncRunner)(nil)

// SyncRunner reconciles the document store with the current wiki
// snapshot. It detects additions, content changes and deletions across
// runs without reprocessing unchanged content and without leaving
// orphaned index entries.
type SyncRunner struct {
	source       driven.WikiSource
	store        driven.DocumentStore
	splitter     *chunker.Splitter
	notifier     driven.Notifier // optional
	onParseError ParseErrorPolicy

	// Single-flight guard: at most one run may be active at a time
	// against a given store, or the orphan diff is computed from a
	// stale id snapshot.
	mu      sync.Mutex
	running bool
	status  driving.RunStatus
}

// Option configures the sync runner.
type Option func(*SyncRunner)

// WithNotifier sets a chat notifier for run progress messages.
func WithNotifier(n driven.Notifier) Option {
	return func(r *SyncRunner) {
		r.notifier = n
	}
}

// WithParseErrorPolicy sets the parse-error policy.
// Invalid values are ignored and the default kept.
func WithParseErrorPolicy(p ParseErrorPolicy) Option {
	return func(r *SyncRunner) {
		if p.Valid() {
			r.onParseError = p
		}
	}
}

// NewSyncRunner creates a sync runner.
func NewSyncRunner(
	source driven.WikiSource,
	store driven.DocumentStore,
	splitter *chunker.Splitter,
	opts ...Option,
) *SyncRunner {
	r := &SyncRunner{
		source:       source,
		store:        store,
		splitter:     splitter,
		onParseError: ParseErrorKeep,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run performs one full synchronisation pass.
// Fails fast with domain.ErrSyncInProgress when a run is already active.
func (r *SyncRunner) Run(ctx context.Context) (*domain.RunResult, error) {
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()

	r.notify(ctx, "Wiki import has started.")

	result, err := r.run(ctx)
	if err != nil {
		r.notify(ctx, fmt.Sprintf("Wiki import failed: %v", err))
		return nil, &domain.RunError{Partial: *result, Err: err}
	}

	r.notify(ctx, "Wiki import has completed.")
	return result, nil
}

// Status returns the state of the current or most recent run.
func (r *SyncRunner) Status(_ context.Context) (*driving.RunStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Return a copy to avoid race conditions
	status := r.status
	return &status, nil
}

func (r *SyncRunner) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return domain.ErrSyncInProgress
	}
	r.running = true
	r.status = driving.RunStatus{
		RunID:   uuid.New().String(),
		Running: true,
	}
	return nil
}

func (r *SyncRunner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.status.Running = false
}

func (r *SyncRunner) progress(pages int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.PagesProcessed = pages
}

// run drives the linear state machine of one pass:
// Fetching, Reconciling, Pruning, Done. A failure in any state aborts
// the run; pruning in particular never happens after a fetch failure,
// so unfetched pages are not mistaken for deleted ones.
func (r *SyncRunner) run(ctx context.Context) (*domain.RunResult, error) {
	result := &domain.RunResult{}

	// Fetching: page index plus one store snapshot, captured before
	// any mutation.
	logger.Section("Fetching")
	pages, err := r.source.ListPages(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: list pages: %w", domain.ErrSourceFetch, err)
	}
	logger.Info("Found %d wiki pages", len(pages))

	lookup := domain.BuildLookup(pages)

	existingIDs, err := r.store.ListIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("enumerate store ids: %w", err)
	}
	existingMeta, err := r.store.GetMany(ctx, sortedIDs(existingIDs))
	if err != nil {
		return result, fmt.Errorf("read store metadata: %w", err)
	}

	importedIDs := make(map[string]struct{})

	// Reconciling
	logger.Section("Reconciling")
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page := &pages[i]
		err := r.reconcilePage(ctx, page, lookup, existingMeta, importedIDs, result)
		if err != nil {
			if !errors.Is(err, domain.ErrSourceParse) {
				return result, err
			}
			// Fatal to the page, not to the run. Under the default
			// policy the page's stored chunks are shielded from the
			// orphan diff; under "prune" they fall through to pruning.
			if r.onParseError == ParseErrorKeep {
				logger.Warn("Page %q failed to parse, keeping its indexed chunks: %v", page.Title, err)
				shieldFromPruning(page.Title, existingIDs, importedIDs)
			} else {
				logger.Warn("Page %q failed to parse, its indexed chunks will be pruned: %v", page.Title, err)
			}
			continue
		}

		result.PagesProcessed++
		r.progress(result.PagesProcessed)
	}

	// Pruning: ids present in the store but not reproduced by the
	// current snapshot are deleted in one batch.
	logger.Section("Pruning")
	var orphans []string
	for id := range existingIDs {
		if _, ok := importedIDs[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		if err := r.store.Delete(ctx, orphans); err != nil {
			return result, fmt.Errorf("%w: prune orphans: %w", domain.ErrStoreWrite, err)
		}
		for _, id := range orphans {
			logger.Debug("Deleted chunk: %s", id)
			r.notify(ctx, "Deleted chunk: "+id)
		}
		result.ChunksDeleted = len(orphans)
	}

	logger.Info("Sync complete: %s", result)
	return result, nil
}

// reconcilePage brings the store in line with one page: its own chunks
// plus the chunks of its recognised text attachments.
func (r *SyncRunner) reconcilePage(
	ctx context.Context,
	page *domain.Page,
	lookup domain.PageLookup,
	existingMeta map[string]domain.DocumentMeta,
	importedIDs map[string]struct{},
	result *domain.RunResult,
) error {
	path := domain.JoinPath(domain.Breadcrumb(page.Title, lookup))
	logger.Debug("Importing page: %s", page.Title)

	content, err := r.source.FetchPage(ctx, page.Title)
	if err != nil {
		if errors.Is(err, domain.ErrSourceParse) {
			return err
		}
		return fmt.Errorf("%w: fetch page %q: %w", domain.ErrSourceFetch, page.Title, err)
	}

	updated := page.UpdatedAt.UTC().Format(time.RFC3339)

	for i, chunk := range r.splitter.Split(content.Text) {
		prefixed := domain.PathPrefixed(chunk, path)
		hash := domain.Hash(prefixed)
		docID := domain.PageChunkID(page.Title, i)

		// Recorded unconditionally, even for unchanged chunks, so the
		// orphan diff stays correct.
		importedIDs[docID] = struct{}{}

		stored, exists := existingMeta[docID]
		if exists && stored.Hash == hash {
			continue
		}

		if exists {
			// Content changed: replace, never merge.
			if err := r.store.Delete(ctx, []string{docID}); err != nil {
				return fmt.Errorf("%w: delete %s: %w", domain.ErrStoreWrite, docID, err)
			}
		}

		doc := domain.IndexedDocument{
			ID:   docID,
			Text: prefixed,
			Meta: domain.DocumentMeta{
				Page:      page.Title,
				ChunkID:   i,
				Hash:      hash,
				UpdatedAt: updated,
				Path:      path,
			},
		}
		if err := r.store.Add(ctx, doc); err != nil {
			return fmt.Errorf("%w: add %s: %w", domain.ErrStoreWrite, docID, err)
		}

		// Counted only once the write landed, so partial counts on an
		// aborted run reflect actual store state.
		if exists {
			logger.Debug("Updated chunk: %s", docID)
			r.notify(ctx, "Updated chunk: "+docID)
			result.ChunksUpdated++
		} else {
			logger.Debug("New chunk: %s", docID)
			r.notify(ctx, "New chunk: "+docID)
			result.ChunksAdded++
		}
	}

	return r.reconcileAttachments(ctx, page, content.Attachments, path, updated, existingMeta, importedIDs, result)
}

// reconcileAttachments indexes text attachments with write-once
// semantics: once a chunk id exists it is never rehashed or rewritten,
// even if the remote content changed. A known limitation, kept for id
// stability.
func (r *SyncRunner) reconcileAttachments(
	ctx context.Context,
	page *domain.Page,
	attachments []domain.Attachment,
	path, updated string,
	existingMeta map[string]domain.DocumentMeta,
	importedIDs map[string]struct{},
	result *domain.RunResult,
) error {
	for _, att := range attachments {
		if !domain.IsTextAttachment(att.Filename) {
			continue
		}

		raw, err := r.source.FetchAttachment(ctx, att.ContentURL)
		if err != nil {
			if errors.Is(err, domain.ErrSourceParse) {
				return err
			}
			return fmt.Errorf("%w: fetch attachment %q: %w", domain.ErrSourceFetch, att.Filename, err)
		}
		if !utf8.Valid(raw) {
			return fmt.Errorf("%w: attachment %q is not valid text", domain.ErrSourceParse, att.Filename)
		}

		for i, chunk := range r.splitter.Split(string(raw)) {
			docID := domain.AttachmentChunkID(page.Title, att.Filename, i)
			importedIDs[docID] = struct{}{}

			if _, exists := existingMeta[docID]; exists {
				continue
			}

			doc := domain.IndexedDocument{
				ID:   docID,
				Text: chunk,
				Meta: domain.DocumentMeta{
					Page:       page.Title,
					ChunkID:    i,
					UpdatedAt:  updated,
					Path:       path,
					Attachment: att.Filename,
				},
			}
			if err := r.store.Add(ctx, doc); err != nil {
				return fmt.Errorf("%w: add %s: %w", domain.ErrStoreWrite, docID, err)
			}
			logger.Debug("New attachment chunk: %s", docID)
			r.notify(ctx, "New attachment chunk: "+docID)
			result.AttachmentsAdded++
		}
	}

	return nil
}

// shieldFromPruning folds a page's stored ids into the imported set so
// a parse failure is not mistaken for a deletion. Only ids the page
// itself derives are shielded: "{title}_{n}" page chunks and
// "{title}_attachment_..." attachment chunks. A bare "{title}_" prefix
// would also catch other pages whose titles start with "{title}_".
func shieldFromPruning(title string, existingIDs, importedIDs map[string]struct{}) {
	pagePrefix := title + "_"
	attachmentPrefix := title + "_attachment_"
	for id := range existingIDs {
		switch {
		case strings.HasPrefix(id, attachmentPrefix):
			importedIDs[id] = struct{}{}
		case strings.HasPrefix(id, pagePrefix) && allDigits(id[len(pagePrefix):]):
			importedIDs[id] = struct{}{}
		}
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (r *SyncRunner) notify(ctx context.Context, message string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, message); err != nil {
		logger.Warn("notify: %v", err)
	}
}

func sortedIDs(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
