package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// PathPrefixed prepends the breadcrumb path to a chunk's text. The
// prefix is part of the indexed text, not just the hash input, so the
// hierarchy context is retrievable verbatim alongside the content.
func PathPrefixed(chunk, path string) string {
	return fmt.Sprintf("[%s]\n%s", path, chunk)
}

// Hash returns the SHA-256 digest of text as a hex string. It is the
// sole change-detection signal: identical input always yields identical
// output, and the digest is only ever compared for equality.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
