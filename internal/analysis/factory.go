package analysis

import (
	"context"

	"github.com/sandersn/vetur/internal/ast"
	"github.com/sandersn/vetur/internal/component"
	"github.com/sandersn/vetur/internal/parser"
)

// ParserFactory is the SourceFileFactory backed by the tree-sitter parser.
type ParserFactory struct {
	parser *parser.Parser
}

func NewParserFactory(p *parser.Parser) *ParserFactory {
	return &ParserFactory{parser: p}
}

func (f *ParserFactory) CreateSourceFile(fileName string, snapshot Snapshot, version string, kind ScriptKind) (*ast.SourceFile, error) {
	return f.parser.Parse(context.Background(), fileName, langOf(kind), SnapshotText(snapshot), version)
}

func (f *ParserFactory) UpdateSourceFile(file *ast.SourceFile, snapshot Snapshot, version string, change *TextChangeRange) (*ast.SourceFile, error) {
	text := SnapshotText(snapshot)
	if change == nil || file.Tree == nil {
		return f.parser.Parse(context.Background(), file.FileName, file.Lang, text, version)
	}
	return f.parser.Reparse(context.Background(), file, text, version, parser.Change{
		Start:  change.Span.Start,
		OldEnd: change.Span.End(),
		NewEnd: change.Span.Start + change.NewLength,
	})
}

// langOf maps a script kind to a grammar language. JSX flavours are left to
// the file extension.
func langOf(kind ScriptKind) string {
	switch kind {
	case ScriptKindTS:
		return component.LangTypeScript
	case ScriptKindJS:
		return component.LangJavaScript
	}
	return ""
}
