package domain

import "fmt"

// IndexedDocument is the persisted unit in the document store:
// one chunk of page or attachment text plus its metadata.
type IndexedDocument struct {
	// ID is deterministically derived from the page title and chunk
	// position; see PageChunkID and AttachmentChunkID.
	ID string

	// Text is the indexed content. For page chunks this includes the
	// breadcrumb prefix (see PathPrefixed).
	Text string

	// Meta is the typed metadata stored alongside the text.
	Meta DocumentMeta
}

// DocumentMeta carries the per-chunk metadata used for change detection
// and provenance. It replaces the loose string-keyed maps the store
// format nominally allows with named fields validated at the adapter
// boundary.
type DocumentMeta struct {
	// Page is the title of the page this chunk came from.
	Page string

	// ChunkID is the 0-based position within the page or attachment.
	ChunkID int

	// Hash is the content fingerprint. Set only for page chunks;
	// attachment chunks are write-once and never hash-checked.
	Hash string

	// UpdatedAt is the page's source modification time, RFC 3339.
	UpdatedAt string

	// Path is the breadcrumb path, rendered root to leaf.
	Path string

	// Attachment is the attachment filename, set only for
	// attachment chunks.
	Attachment string
}

// PageChunkID derives the document id for a page chunk.
func PageChunkID(title string, index int) string {
	return fmt.Sprintf("%s_%d", title, index)
}

// AttachmentChunkID derives the document id for an attachment chunk.
func AttachmentChunkID(title, filename string, index int) string {
	return fmt.Sprintf("%s_attachment_%s_%d", title, filename, index)
}

// RunResult summarises the store mutations performed by one
// synchronisation run.
type RunResult struct {
	// PagesProcessed is the number of pages reconciled.
	PagesProcessed int

	// ChunksAdded counts page chunks added because no record existed.
	ChunksAdded int

	// ChunksUpdated counts page chunks replaced because the stored
	// hash no longer matched.
	ChunksUpdated int

	// ChunksDeleted counts orphan ids pruned at the end of the run.
	ChunksDeleted int

	// AttachmentsAdded counts attachment chunks added.
	AttachmentsAdded int
}

// Unchanged reports whether the run performed no store mutations.
func (r RunResult) Unchanged() bool {
	return r.ChunksAdded == 0 && r.ChunksUpdated == 0 &&
		r.ChunksDeleted == 0 && r.AttachmentsAdded == 0
}

// String renders the result for logs and chat notifications.
func (r RunResult) String() string {
	return fmt.Sprintf("%d pages, %d added, %d updated, %d deleted, %d attachments",
		r.PagesProcessed, r.ChunksAdded, r.ChunksUpdated, r.ChunksDeleted, r.AttachmentsAdded)
}
