package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Empty(t *testing.T) {
	s := New()

	assert.Nil(t, s.Split(""))
}

func TestSplit_ShortText(t *testing.T) {
	s := New()

	chunks := s.Split("hello world")

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplit_ParagraphsUnderLimit(t *testing.T) {
	s := New()
	text := "first paragraph.\n\nsecond paragraph.\n\nthird paragraph."

	chunks := s.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	s := New(WithChunkSize(30), WithOverlap(0))
	text := "alpha paragraph one\n\nbeta paragraph two"

	chunks := s.Split(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha paragraph one", chunks[0])
	assert.Equal(t, "beta paragraph two", chunks[1])
}

func TestSplit_Deterministic(t *testing.T) {
	s := New()
	text := strings.Repeat("some words that fill space ", 100)

	first := s.Split(text)
	second := s.Split(text)

	assert.Equal(t, first, second)
}

func TestSplit_ChunksWithinLimit(t *testing.T) {
	s := New()
	text := strings.Repeat("word ", 2000)

	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), DefaultChunkSize, "chunk %d", i)
	}
}

// overlapLength returns the longest k such that prev ends with the
// first k bytes of next.
func overlapLength(prev, next string) int {
	max := len(prev)
	if len(next) < max {
		max = len(next)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(prev, next[:k]) {
			return k
		}
	}
	return 0
}

func TestSplit_CarriesOverlap(t *testing.T) {
	s := New()
	// Distinct tokens, so the measured suffix/prefix overlap is exactly
	// the carried tail and not an artifact of repeating text.
	words := make([]string, 2000)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	text := strings.Join(words, " ")

	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)
	overlap := overlapLength(chunks[0], chunks[1])
	assert.Greater(t, overlap, 100)
	assert.Less(t, overlap, 300)
}

func TestSplit_NoSeparators(t *testing.T) {
	s := New()
	text := strings.Repeat("a", 2500)

	chunks := s.Split(text)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 900)
}

func TestSplit_CustomSize(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(3))

	chunks := s.Split("aaaa bbbb cccc dddd")

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 10)
	}
}

func TestNew_OverlapClampedToChunkSize(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(100))

	assert.Equal(t, 25, s.overlap)
}
