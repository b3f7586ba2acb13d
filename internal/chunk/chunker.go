package chunk

import "fmt"

// Defaults for tariff nomenclature listings; one chunk should fit in a
// single extraction call with room for the instruction prompt.
const (
	DefaultMaxSize = 6000
	DefaultOverlap = 300
)

// Chunk is a contiguous slice of document text submitted as one unit of
// extraction work.
type Chunk struct {
	Index     int
	Content   string
	Start     int // byte offset of Content in the source text
	SourceRef string
}

// boundary runes, in preference order: row/page separators, then newlines.
func isBoundary(b byte) bool {
	return b == '\n' || b == '\f'
}

// Split cuts text into overlapping, boundary-aware chunks of at most
// maxSize bytes. Consecutive chunks share overlap bytes so that rows
// straddling a cut appear whole in at least one chunk; the duplicates this
// introduces are collapsed later by the merge stage.
//
// Before cutting at a raw maxSize offset, the cut point is pulled back to
// the nearest newline/form-feed in the second half of the window, if one
// exists. Split is pure and deterministic.
func Split(text string, maxSize, overlap int) []Chunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		// overlap must stay strictly below the window size
		overlap = maxSize / 4
	}

	if len(text) <= maxSize {
		return []Chunk{{Index: 0, Content: text, Start: 0}}
	}

	var out []Chunk
	start := 0
	for start < len(text) {
		end := start + maxSize
		if end >= len(text) {
			out = append(out, Chunk{Index: len(out), Content: text[start:], Start: start})
			break
		}

		// snap the cut to a natural boundary in the back half of the window
		cut := end
		half := start + maxSize/2
		for i := end - 1; i > half; i-- {
			if isBoundary(text[i]) {
				cut = i + 1
				break
			}
		}

		out = append(out, Chunk{Index: len(out), Content: text[start:cut], Start: start})

		next := cut - overlap
		if next <= start {
			// never stall: fall back to a non-overlapping advance
			next = cut
		}
		start = next
	}
	return out
}

// Stamp fills SourceRef on every chunk for provenance, e.g. "file.csv#chunk-2".
func Stamp(chunks []Chunk, document string) []Chunk {
	for i := range chunks {
		chunks[i].SourceRef = fmt.Sprintf("%s#chunk-%d", document, chunks[i].Index)
	}
	return chunks
}
