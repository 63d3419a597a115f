// Package domain defines the core business entities for Wikidex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: A node in the remote wiki hierarchy
//   - Attachment: A file attached to a page
//   - IndexedDocument: The persisted unit in the document store
//   - DocumentMeta: Typed metadata carried alongside each indexed chunk
//   - RunResult: The outcome of one synchronisation run
//
// It also holds the pure helpers the sync executor is built from:
// the hierarchy resolver (lookup + breadcrumbs) and the fingerprinter
// (path prefixing + content hashing).
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
