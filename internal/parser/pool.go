package parser

import (
	"context"
	"sort"

	"github.com/sandersn/vetur/internal/ast"

	sitter "github.com/smacker/go-tree-sitter"
)

const errorQuery = `(ERROR) @error`

// ParserPool maintains a fixed number of parsers for one grammar. A parser is
// borrowed for the duration of a single parse.
type ParserPool struct {
	pool  chan *sitter.Parser
	lang  *sitter.Language
	query *sitter.Query
}

// NewParserPool creates a ParserPool with n parsers for lang.
func NewParserPool(n int, lang *sitter.Language) (*ParserPool, error) {
	if n < 1 {
		n = 1
	}
	q, err := sitter.NewQuery([]byte(errorQuery), lang)
	if err != nil {
		return nil, err
	}
	pp := &ParserPool{
		pool:  make(chan *sitter.Parser, n),
		lang:  lang,
		query: q,
	}
	for i := 0; i < n; i++ {
		p := sitter.NewParser()
		p.SetLanguage(lang)
		pp.pool <- p
	}
	return pp, nil
}

func (pp *ParserPool) parse(ctx context.Context, old *sitter.Tree, src []byte) (*sitter.Tree, error) {
	var p *sitter.Parser
	select {
	case p = <-pp.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { pp.pool <- p }()
	return p.ParseCtx(ctx, old, src)
}

// syntaxErrors reports the outermost ERROR nodes of the tree.
// The reported span stops at the first line break so a long unparsable tail
// does not paint the rest of the file.
func (pp *ParserPool) syntaxErrors(root *sitter.Node, src []byte, fileName string) []ast.Diagnostic {
	if !root.HasError() {
		return nil
	}
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(pp.query, root)

	var diags []ast.Diagnostic
	covered := -1
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			start, end := int(c.Node.StartByte()), int(c.Node.EndByte())
			if start < covered {
				continue
			}
			covered = end
			diags = append(diags, ast.Diagnostic{
				FileName: fileName,
				Start:    start,
				Length:   firstLine(src, start, end) - start,
				Code:     1012,
				Category: ast.CategoryError,
				Message:  "Unexpected token.",
			})
		}
	}
	return diags
}

// Close releases all parsers in the pool.
func (pp *ParserPool) Close() {
	close(pp.pool)
	for p := range pp.pool {
		p.Close()
	}
	pp.query.Close()
}

func firstLine(src []byte, start, end int) int {
	for i := start; i < end && i < len(src); i++ {
		if src[i] == '\n' {
			if i > start && src[i-1] == '\r' {
				i--
			}
			return i
		}
	}
	return end
}

func sortDiagnostics(diags []ast.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Start < diags[j].Start })
}
