package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Page represents a node in the remote wiki hierarchy.
// Pages are ephemeral per-run snapshots; they are never persisted.
type Page struct {
	// Title is the natural key. The wiki guarantees at most one parent
	// per page but does not enforce title uniqueness; duplicates
	// silently collide (see Breadcrumb and BuildLookup).
	Title string

	// UpdatedAt is the last modification time reported by the source.
	UpdatedAt time.Time

	// ParentTitle links to the parent page, nil for roots.
	ParentTitle *string
}

// PageContent is the full body of a page, fetched separately from the index.
type PageContent struct {
	// Text is the raw page body.
	Text string

	// Attachments are the files attached to the page, in source order.
	Attachments []Attachment
}

// Attachment is a file attached to a wiki page.
type Attachment struct {
	// Filename as reported by the source.
	Filename string

	// ContentURL is where the raw content can be downloaded.
	ContentURL string
}

// textExtensions are the attachment types materialised as text.
// Anything else is skipped and never produces index entries.
var textExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".csv":  {},
	".json": {},
	".xml":  {},
	".html": {},
	".log":  {},
}

// IsTextAttachment reports whether an attachment filename has a
// recognised text-like extension.
func IsTextAttachment(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := textExtensions[ext]
	return ok
}
