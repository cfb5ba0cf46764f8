package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_EmptyInput(t *testing.T) {
	assert.Nil(t, ChunkText("", 100))
	assert.Nil(t, ChunkText("   \n\t  ", 100))
}

func TestChunkText_SingleChunkWhenUnderLimit(t *testing.T) {
	chunks := ChunkText("short text", 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "short text", chunks[0].Text)
}

func TestChunkText_ReconstructsOriginalText(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)

	chunks := ChunkText(text, 64)

	var rebuilt strings.Builder
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		rebuilt.WriteString(c.Text)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunkText_RespectsByteBound(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100)

	chunks := ChunkText(text, 33)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.ByteSize(), 33)
	}
}

func TestChunkText_NeverSplitsRunes(t *testing.T) {
	// Multibyte runes straddle every 10-byte boundary.
	text := strings.Repeat("héllо wörld ", 40)

	chunks := ChunkText(text, 10)

	var rebuilt strings.Builder
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c.Text), "chunk %d contains a split rune", c.Index)
		rebuilt.WriteString(c.Text)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunkText_Deterministic(t *testing.T) {
	text := strings.Repeat("deterministic input ", 30)

	first := ChunkText(text, 47)
	second := ChunkText(text, 47)

	assert.Equal(t, first, second)
}

func TestChunkText_DropsWhitespaceOnlyWindows(t *testing.T) {
	text := "abc" + strings.Repeat(" ", 20) + "def"

	chunks := ChunkText(text, 5)

	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
	}
	// Indexes stay dense even when windows are dropped.
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkText_ZeroLimitUsesDefault(t *testing.T) {
	chunks := ChunkText("hello", 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0].Text)
}

func TestSplitParagraphs(t *testing.T) {
	text := "para one\n\npara two\n\npara three"

	groups := SplitParagraphs(text, 2)

	require.Len(t, groups, 2)
	assert.Equal(t, "para one\n\npara two", groups[0])
	assert.Equal(t, "para three", groups[1])
}

func TestSplitSentences(t *testing.T) {
	sentences := SplitSentences("First sentence. Second one! Third? Trailing fragment")

	require.Len(t, sentences, 4)
	assert.Equal(t, "First sentence.", sentences[0])
	assert.Equal(t, "Second one!", sentences[1])
	assert.Equal(t, "Third?", sentences[2])
	assert.Equal(t, "Trailing fragment", sentences[3])
}
