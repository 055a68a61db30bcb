package parser_test

import (
	"context"
	"strings"
	"testing"

	"github.com/sandersn/vetur/internal/ast"
	"github.com/sandersn/vetur/internal/parser"
)

func newParser(t *testing.T) *parser.Parser {
	t.Helper()
	p, err := parser.New(2)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestParseExportDefault(t *testing.T) {
	p := newParser(t)
	text := "import Vue from 'vue'\nexport default { data: 1 }\n"
	sf, err := p.Parse(context.Background(), "a.js", "", text, "1")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if len(sf.ParseDiagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %+v", sf.ParseDiagnostics)
	}
	stmts := sf.Statements()
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %s", len(stmts), ast.Dump(sf.Root))
	}
	exp := stmts[1]
	if exp.Type != "export_statement" || exp.FirstOfType("default") == nil {
		t.Fatalf("expected export default, got %s", ast.Dump(exp))
	}
	obj := exp.Child("value")
	if obj == nil || obj.Type != "object" {
		t.Fatalf("expected object value, got %s", ast.Dump(exp))
	}
	if got := sf.Content(obj); got != "{ data: 1 }" {
		t.Errorf("object content %q", got)
	}
	if obj.Parent != exp {
		t.Errorf("parent link not set")
	}
}

func TestNodeAt(t *testing.T) {
	p := newParser(t)
	text := "const answer = foo.bar;\n"
	sf, err := p.Parse(context.Background(), "a.ts", "", text, "1")
	if err != nil {
		t.Fatal(err)
	}
	t.Run("inside", func(t *testing.T) {
		n := ast.NodeAt(sf.Root, strings.Index(text, "swer"))
		if n.Type != "identifier" || n.Text != "answer" {
			t.Errorf("got %s", n)
		}
	})
	t.Run("touching end", func(t *testing.T) {
		n := ast.NodeAt(sf.Root, strings.Index(text, ";"))
		if n.Type != "property_identifier" || n.Text != "bar" {
			t.Errorf("got %s", n)
		}
	})
}

func TestSyntaxErrors(t *testing.T) {
	p := newParser(t)
	sf, err := p.Parse(context.Background(), "a.js", "", "function f( {\n", "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sf.ParseDiagnostics) == 0 {
		t.Fatalf("expected syntax diagnostics")
	}
	for _, d := range sf.ParseDiagnostics {
		if d.Code != 1012 && d.Code != 1005 {
			t.Errorf("unexpected code %d", d.Code)
		}
		if d.Start+d.Length > len(sf.Text) {
			t.Errorf("diagnostic outside text: %+v", d)
		}
	}
}

func TestReparseMatchesFreshParse(t *testing.T) {
	p := newParser(t)
	ctx := context.Background()
	before := "let a = 1;\nlet b = a + 2;\n"
	after := "let a = 1;\nlet bee = a + 2;\n"
	old, err := p.Parse(ctx, "a.js", "", before, "1")
	if err != nil {
		t.Fatal(err)
	}
	start := strings.Index(before, "b =")
	change := parser.Change{Start: start, OldEnd: start + 1, NewEnd: start + 3}
	got, err := p.Reparse(ctx, old, after, "2", change)
	if err != nil {
		t.Fatal(err)
	}
	want, err := p.Parse(ctx, "a.js", "", after, "2")
	if err != nil {
		t.Fatal(err)
	}
	if ast.Dump(got.Root) != ast.Dump(want.Root) {
		t.Errorf("incremental parse differs:\n%s\n%s", ast.Dump(got.Root), ast.Dump(want.Root))
	}
	// The previous tree is still usable.
	if ast.Dump(old.Root) == ast.Dump(got.Root) {
		t.Errorf("old file was modified")
	}
}

func TestGrammarFor(t *testing.T) {
	tests := []struct {
		file string
		lang string
		want parser.Grammar
	}{
		{"a.js", "", parser.GrammarJavaScript},
		{"a.jsx", "", parser.GrammarJavaScript},
		{"a.ts", "", parser.GrammarTypeScript},
		{"a.tsx", "", parser.GrammarTSX},
		{"a.vue", "typescript", parser.GrammarTypeScript},
		{"a.vue", "javascript", parser.GrammarJavaScript},
	}
	for _, tt := range tests {
		if got := parser.GrammarFor(tt.file, tt.lang); got != tt.want {
			t.Errorf("GrammarFor(%q, %q) = %s, want %s", tt.file, tt.lang, got, tt.want)
		}
	}
}
