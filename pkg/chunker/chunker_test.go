package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunksEmpty(t *testing.T) {
	assert.Empty(t, SplitIntoChunks("", 1000, 100))
	assert.Empty(t, SplitIntoChunks("   \n\t  ", 1000, 100))
}

func TestSplitIntoChunksOverlap(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)
	chunks := SplitIntoChunks(text, 1000, 100)
	require.True(t, len(chunks) >= 2, "expected multiple chunks")

	for i := 1; i < len(chunks); i++ {
		tail := lastNRunes(chunks[i-1], 100)
		assert.True(t, strings.Contains(chunks[i], tail[:min(len(tail), 40)]),
			"chunk %d should overlap with the tail of chunk %d", i, i-1)
	}
}

func TestSplitIntoChunksPrefersSentenceBoundary(t *testing.T) {
	sentence := "This is a sentence that is exactly long enough to matter here. "
	text := strings.Repeat(sentence, 20)
	chunks := SplitIntoChunks(text, 1000, 100)
	for _, c := range chunks[:len(chunks)-1] {
		last := c[len(c)-1]
		assert.Contains(t, []byte{'.', '!', '?'}, last)
	}
}

func TestSplitIntoParagraphsMergesShort(t *testing.T) {
	text := "Short one.\n\nAnother short bit.\n\n" + strings.Repeat("word ", 50)
	paragraphs := SplitIntoParagraphs(text)
	require.NotEmpty(t, paragraphs)
	for _, p := range paragraphs[:len(paragraphs)-1] {
		assert.GreaterOrEqual(t, wordCount(p), minParagraphWords)
	}
}

func TestSplitIntoParagraphsKeepsLastVerbatimEvenIfShort(t *testing.T) {
	text := strings.Repeat("word ", 50) + "\n\ntiny tail"
	paragraphs := SplitIntoParagraphs(text)
	require.NotEmpty(t, paragraphs)
	assert.Equal(t, "tiny tail", paragraphs[len(paragraphs)-1])
}

func TestSplitIntoParagraphsSplitsLong(t *testing.T) {
	sentence := "Word word word word word word word word word word. "
	text := strings.Repeat(sentence, 50) // ~500 words, one paragraph
	paragraphs := SplitIntoParagraphs(text)
	for _, p := range paragraphs {
		assert.LessOrEqual(t, wordCount(p), maxParagraphWords)
	}
}

func lastNRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
