package chunker

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// headerPattern matches level 2-4 markdown headers with a title.
var headerPattern = regexp.MustCompile(`^(#{2,4})\s+(.+)$`)

// chunkMarkdown splits content on header boundaries. The scan is purely
// line-based: a heading-shaped line inside a fenced code block still
// starts a section. Text before the first header forms its own section,
// and sections larger than the chunk size are windowed while keeping
// their header.
func (p *Processor) chunkMarkdown(content string) []span {
	type section struct {
		header    string
		startLine int
		lines     []string
	}

	lines := strings.Split(content, "\n")

	var sections []section
	current := section{startLine: 1}

	flush := func() {
		body := current.lines
		start := current.startLine
		for len(body) > 0 && strings.TrimSpace(body[0]) == "" {
			body = body[1:]
			start++
		}
		for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
			body = body[:len(body)-1]
		}
		if len(body) > 0 {
			current.lines = body
			current.startLine = start
			sections = append(sections, current)
		}
	}

	for i, line := range lines {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			flush()
			current = section{
				header:    strings.TrimSpace(m[2]),
				startLine: i + 1,
				lines:     []string{line},
			}
			continue
		}
		current.lines = append(current.lines, line)
	}
	flush()

	var spans []span
	for _, sec := range sections {
		text := strings.TrimSpace(strings.Join(sec.lines, "\n"))
		endLine := sec.startLine + len(sec.lines) - 1

		if len(text) <= p.chunkSize {
			spans = append(spans, span{
				content:   text,
				lineStart: sec.startLine,
				lineEnd:   endLine,
				chunkType: domain.ChunkHeaderSection,
				header:    sec.header,
			})
			continue
		}

		for _, w := range p.chunkWindows(text, sec.startLine) {
			w.header = sec.header
			spans = append(spans, w)
		}
	}

	return spans
}
