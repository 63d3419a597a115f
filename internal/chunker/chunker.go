// Package chunker splits text into bounded, overlapping chunks.
//
// Splitting prefers the largest available delimiter from an ordered
// preference list (paragraph break, line break, space, character
// boundary) such that every produced chunk fits the configured size,
// with a configured overlap carried from the tail of one chunk into the
// head of the next. The same splitter is used for page bodies and for
// attachment bodies.
package chunker

import "strings"

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping bytes.
const DefaultOverlap = 200

// separators is the delimiter preference list, coarsest first.
// The empty string matches anywhere and splits at the byte level.
var separators = []string{"\n\n", "\n", " ", ""}

// Splitter splits text into chunks. It is stateless and safe for
// concurrent use.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split splits text into chunks. Identical input always yields an
// identical sequence of chunks. Empty input yields nil.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.split(text, separators)
}

// split recursively splits text with the coarsest separator present,
// falling back to finer separators for pieces that are still too long.
func (s *Splitter) split(text string, seps []string) []string {
	sep := ""
	var rest []string
	for i, candidate := range seps {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	if sep == "" {
		return s.window(text)
	}

	var chunks []string
	var batch []string
	for _, part := range strings.Split(text, sep) {
		if len(part) <= s.chunkSize {
			batch = append(batch, part)
			continue
		}
		// An oversized part is split with the next finer separator;
		// the parts gathered so far are merged first to keep order.
		if len(batch) > 0 {
			chunks = append(chunks, s.merge(batch, sep)...)
			batch = nil
		}
		chunks = append(chunks, s.split(part, rest)...)
	}
	if len(batch) > 0 {
		chunks = append(chunks, s.merge(batch, sep)...)
	}
	return chunks
}

// merge greedily joins parts into chunks no longer than chunkSize,
// retaining tail parts up to the overlap budget when a chunk is cut.
func (s *Splitter) merge(parts []string, sep string) []string {
	var chunks []string
	var window []string
	length := 0 // bytes in window, separators included

	flush := func() {
		if len(window) == 0 {
			return
		}
		chunk := strings.Join(window, sep)
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, part := range parts {
		need := len(part)
		if len(window) > 0 {
			need += len(sep)
		}

		if length+need > s.chunkSize && len(window) > 0 {
			flush()
			for len(window) > 0 && (length > s.overlap || length+need > s.chunkSize) {
				drop := len(window[0])
				if len(window) > 1 {
					drop += len(sep)
				}
				window = window[1:]
				length -= drop
			}
			need = len(part)
			if len(window) > 0 {
				need += len(sep)
			}
		}

		window = append(window, part)
		length += need
	}
	flush()

	return chunks
}

// window slices text into fixed-size chunks advancing by
// chunkSize-overlap. Used when no separator is available.
func (s *Splitter) window(text string) []string {
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + s.chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
