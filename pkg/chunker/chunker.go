// Package chunker splits raw document text into the two representations
// the ingestion pipeline indexes from: overlapping fixed-size chunks for
// the "documents" collection, and natural paragraphs for the
// "paragraph_summaries" collection. Grounded on the teacher's
// sentence/recursive splitters in pkg/chunker, generalized to the exact
// overlap and boundary-tolerance guarantees this system promises.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100

	// boundaryTolerance is how far (as a fraction of ChunkSize) the
	// greedy splitter will look for a sentence boundary before falling
	// back to a hard cut.
	boundaryTolerance = 0.15

	minParagraphWords = 40
	maxParagraphWords = 400
)

var sentenceEnd = regexp.MustCompile(`[.?!]\s`)
var blankLine = regexp.MustCompile(`\r?\n\s*\r?\n+`)

// SplitIntoChunks greedily splits text into overlapping chunks, preferring
// a sentence boundary within ±15% of size and falling back to a hard cut.
// Successive chunks overlap by exactly `overlap` characters copied from the
// tail of the previous chunk. Empty/whitespace-only text yields no chunks
// (not an error).
func SplitIntoChunks(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []string
	pos := 0
	for pos < n {
		end := findCutPoint(runes, pos, size)
		chunk := strings.TrimSpace(string(runes[pos:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= n {
			break
		}
		next := end - overlap
		if next <= pos {
			next = pos + 1
		}
		pos = next
	}
	return chunks
}

// findCutPoint returns the rune index (exclusive) where the chunk starting
// at `pos` should end, preferring a sentence boundary within tolerance of
// `pos+size`, else a hard cut at min(pos+size, len(runes)).
func findCutPoint(runes []rune, pos, size int) int {
	n := len(runes)
	target := pos + size
	if target >= n {
		return n
	}

	tolerance := int(float64(size) * boundaryTolerance)
	lo := target - tolerance
	if lo < pos {
		lo = pos
	}
	hi := target + tolerance
	if hi > n {
		hi = n
	}

	window := string(runes[lo:hi])
	matches := sentenceEnd.FindAllStringIndex(window, -1)
	if len(matches) == 0 {
		return target
	}

	// Prefer the boundary closest to target.
	best := -1
	bestDist := 1 << 30
	for _, m := range matches {
		// m[1] is the byte offset (within window) just past the
		// boundary punctuation+space; convert to a rune offset.
		abs := lo + utf8.RuneCountInString(window[:m[1]])
		dist := abs - target
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			best = abs
		}
	}
	if best < 0 || best <= pos {
		return target
	}
	return best
}

// SplitIntoParagraphs splits text on blank-line boundaries, merges
// paragraphs shorter than 40 words forward into the following paragraph,
// and splits paragraphs longer than 400 words at sentence boundaries into
// pieces of at most 400 words. The final paragraph is always kept verbatim,
// even if short. Empty/whitespace-only text yields no paragraphs.
func SplitIntoParagraphs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	raw := blankLine.Split(text, -1)
	var trimmed []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			trimmed = append(trimmed, p)
		}
	}
	if len(trimmed) == 0 {
		return nil
	}

	merged := mergeShortParagraphs(trimmed)

	var out []string
	for _, p := range merged {
		out = append(out, splitLongParagraph(p)...)
	}
	return out
}

func mergeShortParagraphs(paragraphs []string) []string {
	var out []string
	pending := ""

	for i, p := range paragraphs {
		current := p
		if pending != "" {
			current = pending + "\n\n" + p
			pending = ""
		}

		isLast := i == len(paragraphs)-1
		if !isLast && wordCount(current) < minParagraphWords {
			pending = current
			continue
		}
		out = append(out, current)
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

func splitLongParagraph(p string) []string {
	if wordCount(p) <= maxParagraphWords {
		return []string{p}
	}

	sentences := splitSentences(p)
	var pieces []string
	var current strings.Builder
	currentWords := 0

	for _, s := range sentences {
		sw := wordCount(s)
		if currentWords > 0 && currentWords+sw > maxParagraphWords {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
			currentWords = 0
		}
		current.WriteString(s)
		currentWords += sw
	}
	if current.Len() > 0 {
		pieces = append(pieces, strings.TrimSpace(current.String()))
	}
	return pieces
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && runes[i+1] == ' ' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
