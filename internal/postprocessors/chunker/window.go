package chunker

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// sentenceEnders close a window early when no paragraph break is available.
var sentenceEnders = []string{". ", ".\n", "! ", "!\n", "? ", "?\n"}

// lineIndex maps byte offsets to 1-indexed line numbers.
type lineIndex struct {
	starts []int
}

func newLineIndex(content string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

// lineAt returns the 1-indexed line containing the byte offset.
func (ix *lineIndex) lineAt(offset int) int {
	return sort.SearchInts(ix.starts, offset+1)
}

// chunkWindows cuts fixed-size windows with overlap. Window ends prefer a
// paragraph break in the second half, then a sentence end in the final
// 30%, then a hard cut. baseLine offsets reported line numbers so callers
// can window a slice of a larger document.
func (p *Processor) chunkWindows(content string, baseLine int) []span {
	index := newLineIndex(content)
	var spans []span

	start := 0
	for start < len(content) {
		end := start + p.chunkSize
		if end >= len(content) {
			end = len(content)
		} else {
			end = p.cutPoint(content, start, end)
		}

		text := content[start:end]
		if strings.TrimSpace(text) != "" {
			spans = append(spans, span{
				content:   text,
				lineStart: baseLine + index.lineAt(start) - 1,
				lineEnd:   baseLine + index.lineAt(end-1) - 1,
				chunkType: domain.ChunkRecursiveWindow,
			})
		}

		if end == len(content) {
			break
		}

		next := end - p.overlap
		if next <= start {
			// The scan must always advance, whatever the overlap.
			next = end
		}
		start = next
	}

	return spans
}

// cutPoint picks where a window ends inside [start, limit).
func (p *Processor) cutPoint(content string, start, limit int) int {
	window := content[start:limit]
	half := len(window) / 2

	if i := strings.LastIndex(window, "\n\n"); i > half {
		// Keep the blank line with the leading chunk.
		return start + i + 2
	}

	tail := len(window) * 7 / 10
	best := -1
	for _, ender := range sentenceEnders {
		if i := strings.LastIndex(window, ender); i >= tail && i+len(ender) > best {
			best = i + len(ender)
		}
	}
	if best > 0 {
		return start + best
	}

	// Hard cut, backed up to a rune boundary.
	for limit > start && !utf8.RuneStart(content[limit]) {
		limit--
	}
	return limit
}
