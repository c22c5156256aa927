// Package splitter partitions arbitrary text into bounded-size chunks
// along a cascade of semantic boundaries: paragraph breaks first, then
// line breaks, sentence ends, single spaces, and finally raw characters.
package splitter

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the chunk bound used when none is configured.
const DefaultChunkSize = 1000

// defaultSeparators is the boundary cascade, coarsest first. The empty
// final entry means a hard character-level split.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter produces ordered, trimmed chunks no longer than ChunkSize.
// The zero value is not usable; construct with New.
type Splitter struct {
	chunkSize  int
	separators []string
}

// New returns a Splitter with the given chunk bound. Non-positive sizes
// fall back to DefaultChunkSize.
func New(chunkSize int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Splitter{chunkSize: chunkSize, separators: defaultSeparators}
}

// Split partitions text into chunks. Each chunk is non-empty, trimmed, and
// at most ChunkSize characters. Chunk order follows the input, and the
// chunks rejoined contain every non-whitespace character of the input in
// original order: pieces keep their trailing separator, so a sentence
// split at ". " does not lose its terminator at a chunk boundary.
func (s *Splitter) Split(text string) []string {
	var chunks []string
	s.split(text, 0, &chunks)
	return chunks
}

// split recursively partitions text using the separator at level and
// appends finished chunks.
func (s *Splitter) split(text string, level int, chunks *[]string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	if len(text) <= s.chunkSize {
		*chunks = append(*chunks, trimmed)
		return
	}

	sep := s.separators[level]
	if sep == "" {
		s.hardSplit(text, chunks)
		return
	}

	var buffer string
	for _, piece := range strings.SplitAfter(text, sep) {
		if len(buffer)+len(piece) <= s.chunkSize {
			buffer += piece
			continue
		}

		if buffer != "" {
			s.flush(buffer, chunks)
		}

		if len(piece) > s.chunkSize {
			// The piece alone overflows; descend to the next finer boundary.
			s.split(piece, level+1, chunks)
			buffer = ""
		} else {
			buffer = piece
		}
	}

	if buffer != "" {
		s.flush(buffer, chunks)
	}
}

// hardSplit cuts text into fixed-size substrings once the separator
// cascade is exhausted. Cuts land on rune boundaries so multibyte text
// never yields invalid UTF-8 chunks.
func (s *Splitter) hardSplit(text string, chunks *[]string) {
	for len(text) > s.chunkSize {
		cut := s.chunkSize
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = s.chunkSize
		}
		s.flush(text[:cut], chunks)
		text = text[cut:]
	}
	s.flush(text, chunks)
}

// flush appends a trimmed chunk, dropping whitespace-only buffers.
func (s *Splitter) flush(chunk string, chunks *[]string) {
	trimmed := strings.TrimSpace(chunk)
	if trimmed != "" {
		*chunks = append(*chunks, trimmed)
	}
}
