package chunker

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/logger"
)

var errNoConstructs = errors.New("no top-level constructs")

// chunkCode splits source code on top-level constructs. Nested
// definitions stay inside their parent's chunk. Files that cannot be
// parsed, or that contain no constructs, fall back to plain windowing
// so indexing never fails on odd code.
func (p *Processor) chunkCode(content, language string) []span {
	var spans []span
	var err error

	switch language {
	case "go":
		spans, err = chunkGo(content)
	case "python":
		spans, err = chunkPython(content)
	case "javascript", "typescript", "java", "rust":
		spans, err = chunkBraced(content, language)
	default:
		err = fmt.Errorf("no construct scanner for %q", language)
	}

	if err != nil {
		logger.Debug("code chunking fell back to windows: %v", err)
		return p.chunkWindows(content, 1)
	}
	return spans
}

// chunkGo parses Go source and emits one chunk per top-level function,
// method, struct, or interface. Doc comments are included in the chunk.
func chunkGo(content string) ([]span, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", content, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(content, "\n")
	var spans []span

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			start, end := nodeLines(fset, d, d.Doc)
			spans = append(spans, span{
				content:      joinLines(lines, start, end),
				lineStart:    start,
				lineEnd:      end,
				chunkType:    domain.ChunkCodeFunction,
				language:     "go",
				name:         d.Name.Name,
				parent:       receiverTypeName(d.Recv),
				hasDocstring: d.Doc != nil,
			})

		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, s := range d.Specs {
				ts, ok := s.(*ast.TypeSpec)
				if !ok {
					continue
				}
				switch ts.Type.(type) {
				case *ast.StructType, *ast.InterfaceType:
				default:
					continue
				}

				doc := ts.Doc
				if doc == nil {
					doc = d.Doc
				}
				start, end := nodeLines(fset, d, doc)
				spans = append(spans, span{
					content:      joinLines(lines, start, end),
					lineStart:    start,
					lineEnd:      end,
					chunkType:    domain.ChunkCodeClass,
					language:     "go",
					name:         ts.Name.Name,
					hasDocstring: doc != nil,
				})
			}
		}
	}

	if len(spans) == 0 {
		return nil, errNoConstructs
	}
	return spans, nil
}

func nodeLines(fset *token.FileSet, node ast.Node, doc *ast.CommentGroup) (int, int) {
	start := fset.Position(node.Pos()).Line
	if doc != nil {
		start = fset.Position(doc.Pos()).Line
	}
	return start, fset.Position(node.End()).Line
}

func receiverTypeName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	t := recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	if idx, ok := t.(*ast.IndexExpr); ok {
		t = idx.X
	}
	if ident, ok := t.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

// joinLines returns lines start..end inclusive, 1-indexed.
func joinLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}

// pyConstructPattern matches a column-0 def or class line.
var pyConstructPattern = regexp.MustCompile(`^(?:async\s+)?(def|class)\s+([A-Za-z_]\w*)`)

// chunkPython scans for column-0 def and class blocks. A block runs until
// the next non-blank line at column zero, so methods and nested functions
// stay inside their parent. Decorators above a construct belong to it.
func chunkPython(content string) ([]span, error) {
	lines := strings.Split(content, "\n")
	var spans []span

	i := 0
	for i < len(lines) {
		m := pyConstructPattern.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}

		start := i
		for start > 0 && strings.HasPrefix(lines[start-1], "@") {
			start--
		}

		end := i + 1
		for end < len(lines) {
			l := lines[end]
			if l != "" && l[0] != ' ' && l[0] != '\t' {
				break
			}
			end++
		}

		last := end
		for last > i+1 && strings.TrimSpace(lines[last-1]) == "" {
			last--
		}

		kind := domain.ChunkCodeFunction
		if m[1] == "class" {
			kind = domain.ChunkCodeClass
		}

		spans = append(spans, span{
			content:      strings.Join(lines[start:last], "\n"),
			lineStart:    start + 1,
			lineEnd:      last,
			chunkType:    kind,
			language:     "python",
			name:         m[2],
			hasDocstring: pythonDocstringFollows(lines, i),
		})

		i = end
	}

	if len(spans) == 0 {
		return nil, errNoConstructs
	}
	return spans, nil
}

func pythonDocstringFollows(lines []string, defLine int) bool {
	for i := defLine + 1; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if t == "" {
			continue
		}
		return strings.HasPrefix(t, `"""`) || strings.HasPrefix(t, "'''")
	}
	return false
}

type bracedConstruct struct {
	pattern *regexp.Regexp
	kind    domain.ChunkType
}

var jsConstructs = []bracedConstruct{
	{regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`), domain.ChunkCodeFunction},
	{regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`), domain.ChunkCodeClass},
}

var bracedConstructTable = map[string][]bracedConstruct{
	"javascript": jsConstructs,
	"typescript": jsConstructs,
	"java": {
		{regexp.MustCompile(`^(?:public\s+|final\s+|abstract\s+)*(?:class|interface|enum)\s+([A-Za-z_$][\w$]*)`), domain.ChunkCodeClass},
	},
	"rust": {
		{regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+([A-Za-z_]\w*)`), domain.ChunkCodeFunction},
		{regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait)\s+([A-Za-z_]\w*)`), domain.ChunkCodeClass},
		{regexp.MustCompile(`^impl(?:<[^>]*>)?\s+([A-Za-z_]\w*)`), domain.ChunkCodeClass},
	},
}

// chunkBraced scans brace-delimited languages for column-0 constructs and
// tracks brace depth to find each block's end. Doc comments directly
// above a construct are included in its chunk.
func chunkBraced(content, language string) ([]span, error) {
	patterns := bracedConstructTable[language]
	lines := strings.Split(content, "\n")
	var spans []span

	i := 0
scan:
	for i < len(lines) {
		for _, c := range patterns {
			m := c.pattern.FindStringSubmatch(lines[i])
			if m == nil {
				continue
			}

			end := bracedBlockEnd(lines, i)
			start := i
			for start > 0 && isCommentLine(lines[start-1]) {
				start--
			}

			spans = append(spans, span{
				content:      strings.Join(lines[start:end+1], "\n"),
				lineStart:    start + 1,
				lineEnd:      end + 1,
				chunkType:    c.kind,
				language:     language,
				name:         m[1],
				hasDocstring: start < i,
			})

			i = end + 1
			continue scan
		}
		i++
	}

	if len(spans) == 0 {
		return nil, errNoConstructs
	}
	return spans, nil
}

// bracedBlockEnd returns the 0-based line where the block opened at
// start closes. Bodiless declarations end at their semicolon.
func bracedBlockEnd(lines []string, start int) int {
	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i
		}
		if !opened && strings.Contains(lines[i], ";") {
			return i
		}
	}
	return len(lines) - 1
}

func isCommentLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "//") ||
		strings.HasPrefix(t, "/*") ||
		strings.HasPrefix(t, "*") ||
		strings.HasSuffix(t, "*/")
}
