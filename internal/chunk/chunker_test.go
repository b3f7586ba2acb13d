package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSmallDocumentSingleChunk(t *testing.T) {
	text := strings.Repeat("a", 500)
	chunks := Split(text, 1000, 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Start)
}

func TestSplitCoversWholeDocument(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		b.WriteString("0101.21.00\tPure-bred breeding horses\t6.5\n")
	}
	text := b.String()

	const maxSize, overlap = 1000, 120
	chunks := Split(text, maxSize, overlap)
	require.Greater(t, len(chunks), 1)

	// union of chunk ranges covers the document with no gaps
	covered := 0
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		require.LessOrEqual(t, ch.Start, covered, "gap before chunk %d", i)
		if end := ch.Start + len(ch.Content); end > covered {
			covered = end
		}
		require.NotEmpty(t, ch.Content)
		require.LessOrEqual(t, len(ch.Content), maxSize)
	}
	assert.Equal(t, len(text), covered)

	// consecutive chunks overlap
	for i := 1; i < len(chunks); i++ {
		prevEnd := chunks[i-1].Start + len(chunks[i-1].Content)
		assert.GreaterOrEqual(t, prevEnd-chunks[i].Start, overlap,
			"chunks %d and %d should share at least the overlap", i-1, i)
	}
}

func TestSplitSnapsToLineBoundary(t *testing.T) {
	// lines of 40 bytes; a 1000-byte window never ends exactly on one
	line := strings.Repeat("x", 39) + "\n"
	text := strings.Repeat(line, 100)

	chunks := Split(text, 1000, 80)
	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(ch.Content, "\n"),
			"chunk %d should end on a line boundary", i)
	}
}

func TestSplitNoBoundaryFallsBackToRawCut(t *testing.T) {
	text := strings.Repeat("y", 2500) // no newline anywhere
	chunks := Split(text, 1000, 100)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 1000, len(chunks[0].Content))
}

func TestSplitClampsOversizedOverlap(t *testing.T) {
	text := strings.Repeat("z", 3000)
	chunks := Split(text, 1000, 5000)

	require.Greater(t, len(chunks), 1)
	// must terminate and still cover the document
	last := chunks[len(chunks)-1]
	assert.Equal(t, len(text), last.Start+len(last.Content))
}

func TestStamp(t *testing.T) {
	chunks := Stamp(Split("short", 100, 10), "hts.xlsx")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hts.xlsx#chunk-0", chunks[0].SourceRef)
}
