package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageChunkID(t *testing.T) {
	assert.Equal(t, "Setup_0", PageChunkID("Setup", 0))
	assert.Equal(t, "Install Guide_12", PageChunkID("Install Guide", 12))
}

func TestAttachmentChunkID(t *testing.T) {
	assert.Equal(t, "Setup_attachment_notes.txt_0",
		AttachmentChunkID("Setup", "notes.txt", 0))
}

func TestIsTextAttachment(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"notes.txt", true},
		{"README.md", true},
		{"data.CSV", true},
		{"config.json", true},
		{"feed.xml", true},
		{"page.html", true},
		{"server.log", true},
		{"photo.png", false},
		{"archive.zip", false},
		{"binary", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTextAttachment(tt.filename))
		})
	}
}

func TestRunResult_Unchanged(t *testing.T) {
	assert.True(t, RunResult{PagesProcessed: 5}.Unchanged())
	assert.False(t, RunResult{ChunksAdded: 1}.Unchanged())
	assert.False(t, RunResult{ChunksDeleted: 1}.Unchanged())
}

func TestRunResult_String(t *testing.T) {
	r := RunResult{PagesProcessed: 2, ChunksAdded: 3, ChunksUpdated: 1, ChunksDeleted: 4, AttachmentsAdded: 1}

	assert.Equal(t, "2 pages, 3 added, 1 updated, 4 deleted, 1 attachments", r.String())
}
