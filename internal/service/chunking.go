package service

import (
	"strings"
	"unicode/utf8"

	"github.com/docsage-ai/docsage/internal/domain"
)

// ChunkConfig controls how document text is split for embedding.
type ChunkConfig struct {
	// MaxChunkBytes bounds the UTF-8 size of each chunk. It must stay below
	// the embedding provider's payload ceiling with margin for the request
	// envelope.
	MaxChunkBytes int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{MaxChunkBytes: 32400}
}

// ChunkText partitions text into contiguous windows of at most maxChunkBytes
// bytes, never splitting a UTF-8 rune. A boundary may fall inside a word; that
// trade-off keeps the function deterministic and simple. Empty or
// whitespace-only windows are dropped, and empty input yields no chunks.
func ChunkText(text string, maxChunkBytes int) []domain.DocumentChunk {
	if maxChunkBytes <= 0 {
		maxChunkBytes = DefaultChunkConfig().MaxChunkBytes
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []domain.DocumentChunk
	for start := 0; start < len(text); {
		end := start + maxChunkBytes
		if end >= len(text) {
			end = len(text)
		} else {
			// Back up to the start of the rune straddling the cut.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				end = start + maxChunkBytes
			}
		}

		window := text[start:end]
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, domain.DocumentChunk{
				Index: len(chunks),
				Text:  window,
			})
		}
		start = end
	}

	return chunks
}

// SplitParagraphs is an optional boundary-aware pre-pass: it groups the text
// into runs of up to maxParagraphs blank-line-separated paragraphs. Each group
// still goes through ChunkText, which enforces the byte bound.
func SplitParagraphs(text string, maxParagraphs int) []string {
	if maxParagraphs <= 0 {
		maxParagraphs = 1
	}

	paragraphs := make([]string, 0, 8)
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, strings.TrimSpace(p))
		}
	}

	var groups []string
	for start := 0; start < len(paragraphs); start += maxParagraphs {
		end := start + maxParagraphs
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		groups = append(groups, strings.Join(paragraphs[start:end], "\n\n"))
	}
	return groups
}

// SplitSentences is an optional boundary-aware pre-pass that cuts on sentence
// terminators. Abbreviation handling is out of scope; a terminator followed by
// whitespace ends a sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			atEnd := i == len(runes)-1
			if atEnd || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
