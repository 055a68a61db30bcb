package feature_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/config"
	"github.com/sandersn/vetur/internal/feature"
	"github.com/sandersn/vetur/internal/host"
	"github.com/sandersn/vetur/internal/interceptor"
	"github.com/sandersn/vetur/internal/parser"
	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/resolver"
	"github.com/sandersn/vetur/internal/sitteradapter"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"kr.dev/diff"
)

const component = `<template>
  <p>{{ count }}</p>
</template>
<script>
export default {
  data() {
    return { count: 0 }
  },
  methods: {
    inc() {
      this.count++
      this.nope()
    }
  }
}
</script>
`

type fixture struct {
	root string
	mode *feature.Mode
}

func setup(t *testing.T) *fixture {
	t.Helper()
	p, err := parser.New(2)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	root := t.TempDir()
	cfg := config.Default()
	reg := projection.NewRegistry(projection.NewCache(10, time.Minute), resolver.URIToPath)
	h := host.New(root, reg, analysis.CompilerOptions{AllowJS: true, ModuleResolution: analysis.ModuleResolutionNode})
	factory := interceptor.New(analysis.NewParserFactory(p), cfg.AnalysisFramework())
	svc := analysis.NewService(h, factory, cfg.AnalysisFramework())
	return &fixture{root: root, mode: feature.New(reg, svc, h, cfg)}
}

func (f *fixture) doc(name, text string) projection.HostDocument {
	return projection.HostDocument{URI: resolver.PathToURI(filepath.Join(f.root, name)), Version: 1, Text: text}
}

func (f *fixture) write(t *testing.T, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.root, name), []byte(text), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func pos(text, substr string, delta int) protocol.Position {
	return sitteradapter.NewLineIndex(text).PositionAt(strings.Index(text, substr) + delta)
}

func rng(startLine, startChar, endLine, endChar protocol.UInteger) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: startLine, Character: startChar},
		End:   protocol.Position{Line: endLine, Character: endChar},
	}
}

func TestDiagnostics(t *testing.T) {
	f := setup(t)
	diags := f.mode.Diagnostics(f.doc("App.vue", component))
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", diags)
	}
	d := diags[0]
	if d.Message != "Property 'nope' does not exist on type 'Vue'." {
		t.Errorf("unexpected message %q", d.Message)
	}
	diff.Test(t, t.Errorf, d.Range, rng(11, 11, 11, 15))
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("expected error severity")
	}
	if d.Code == nil || d.Code.Value != protocol.Integer(2339) {
		t.Errorf("unexpected code %+v", d.Code)
	}
}

func TestCompleteAndResolve(t *testing.T) {
	f := setup(t)
	doc := f.doc("App.vue", component)
	list := f.mode.Complete(doc, pos(component, "this.count++", len("this.c")))
	if list.IsIncomplete {
		t.Errorf("expected a complete list")
	}
	var count *protocol.CompletionItem
	for i := range list.Items {
		if list.Items[i].Label == "count" {
			count = &list.Items[i]
		}
	}
	if count == nil {
		t.Fatalf("count missing from %+v", list.Items)
	}
	if count.Kind == nil || *count.Kind != protocol.CompletionItemKindField {
		t.Errorf("unexpected kind %v", count.Kind)
	}
	edit, ok := count.TextEdit.(protocol.TextEdit)
	if !ok {
		t.Fatalf("unexpected text edit %T", count.TextEdit)
	}
	diff.Test(t, t.Errorf, edit, protocol.TextEdit{Range: rng(10, 11, 10, 16), NewText: "count"})

	// Resolve data arrives back decoded from JSON.
	raw, err := json.Marshal(count)
	if err != nil {
		t.Fatalf("Failed to marshal item: %v", err)
	}
	var item protocol.CompletionItem
	if err := json.Unmarshal(raw, &item); err != nil {
		t.Fatalf("Failed to unmarshal item: %v", err)
	}
	resolved := f.mode.Resolve(doc, item)
	if resolved.Detail == nil || !strings.Contains(*resolved.Detail, "count") {
		t.Errorf("unexpected detail %v", resolved.Detail)
	}
	if resolved.Data != nil {
		t.Errorf("expected resolve data to be dropped, got %v", resolved.Data)
	}
}

func TestResolveAfterEdit(t *testing.T) {
	f := setup(t)
	doc := f.doc("App.vue", component)
	list := f.mode.Complete(doc, pos(component, "this.count++", len("this.c")))
	if len(list.Items) == 0 {
		t.Fatalf("no completions")
	}
	item := list.Items[0]

	edited := doc
	edited.Version = 2
	edited.Text = strings.Replace(component, "this.count++", "this.count += 10", 1)
	resolved := f.mode.Resolve(edited, item)
	if resolved.Detail != nil || resolved.Data == nil {
		t.Errorf("item completed at version 1 was resolved against version 2: %+v", resolved)
	}
}

func TestCompleteOutsideWord(t *testing.T) {
	f := setup(t)
	text := "const answer = 42\n\n"
	list := f.mode.Complete(f.doc("main.js", text), protocol.Position{Line: 1})
	for _, item := range list.Items {
		edit := item.TextEdit.(protocol.TextEdit)
		if edit.Range != rng(1, 0, 1, 0) {
			t.Fatalf("expected an empty replace range, got %+v", edit.Range)
		}
	}
	if len(list.Items) == 0 {
		t.Errorf("expected scope completions")
	}
}

func TestCompleteNothing(t *testing.T) {
	f := setup(t)
	text := "const s = 'abc'\n"
	list := f.mode.Complete(f.doc("main.js", text), pos(text, "b", 0))
	if list == nil || list.IsIncomplete || len(list.Items) != 0 {
		t.Errorf("expected an empty complete list, got %+v", list)
	}
}

func TestHover(t *testing.T) {
	f := setup(t)
	h := f.mode.Hover(f.doc("App.vue", component), pos(component, "this.count++", len("this.co")))
	if h == nil {
		t.Fatalf("expected hover")
	}
	content, ok := h.Contents.(protocol.MarkupContent)
	if !ok || content.Kind != protocol.MarkupKindPlainText || !strings.Contains(content.Value, "count") {
		t.Errorf("unexpected contents %+v", h.Contents)
	}
	if h.Range == nil || *h.Range != rng(10, 11, 10, 16) {
		t.Errorf("unexpected range %+v", h.Range)
	}
	if f.mode.Hover(f.doc("App.vue", component), protocol.Position{Line: 0, Character: 2}) != nil {
		t.Errorf("expected no hover in the template")
	}
}

func TestSignatureHelp(t *testing.T) {
	f := setup(t)
	text := "/** Adds. */\nfunction add(a, b) { return a + b }\nadd(1, 2)\n"
	help := f.mode.SignatureHelp(f.doc("main.js", text), pos(text, "add(1, ", len("add(1, ")))
	if help == nil || len(help.Signatures) != 1 {
		t.Fatalf("expected one signature, got %+v", help)
	}
	if *help.ActiveSignature != 0 || *help.ActiveParameter != 1 {
		t.Errorf("unexpected active signature %d parameter %d", *help.ActiveSignature, *help.ActiveParameter)
	}
	sig := help.Signatures[0]
	if sig.Label != "add(a, b)" {
		t.Errorf("unexpected label %q", sig.Label)
	}
	var labels []any
	for _, p := range sig.Parameters {
		labels = append(labels, p.Label)
	}
	diff.Test(t, t.Errorf, labels, []any{"a", "b"})
}

func TestHighlights(t *testing.T) {
	f := setup(t)
	text := "let x = 1\nx = 2\nconsole.log(x)\n"
	got := f.mode.Highlights(f.doc("main.js", text), pos(text, "log(x", 4))
	write, read := protocol.DocumentHighlightKindWrite, protocol.DocumentHighlightKindText
	want := []protocol.DocumentHighlight{
		{Range: rng(0, 4, 0, 5), Kind: &write},
		{Range: rng(1, 0, 1, 1), Kind: &write},
		{Range: rng(2, 12, 2, 13), Kind: &read},
	}
	diff.Test(t, t.Errorf, got, want)
}

func TestSymbols(t *testing.T) {
	f := setup(t)
	type symbol struct {
		Name, Container string
		Kind            protocol.SymbolKind
	}
	var got []symbol
	for _, s := range f.mode.Symbols(f.doc("App.vue", component)) {
		var container string
		if s.ContainerName != nil {
			container = *s.ContainerName
		}
		got = append(got, symbol{s.Name, container, s.Kind})
	}
	want := []symbol{
		{"default", "", protocol.SymbolKindVariable},
		{"data", "default", protocol.SymbolKindMethod},
		{"methods", "default", protocol.SymbolKindProperty},
		{"inc", "methods", protocol.SymbolKindMethod},
	}
	diff.Test(t, t.Errorf, got, want)
}

func TestDefinitionAndReferences(t *testing.T) {
	f := setup(t)
	f.write(t, "util.js", "export function helper() {}\n")
	text := "<script>\nimport { helper } from './util'\nexport default { methods: { run() { helper() } } }\n</script>\n"
	doc := f.doc("App.vue", text)
	at := pos(text, "helper()", 0)
	utilURI := resolver.PathToURI(filepath.Join(f.root, "util.js"))

	defs := f.mode.Definition(doc, at)
	diff.Test(t, t.Errorf, defs, []protocol.Location{{URI: utilURI, Range: rng(0, 16, 0, 22)}})

	refs := f.mode.References(doc, at)
	byURI := map[string][]protocol.Range{}
	for _, r := range refs {
		byURI[r.URI] = append(byURI[r.URI], r.Range)
	}
	diff.Test(t, t.Errorf, byURI[utilURI], []protocol.Range{rng(0, 16, 0, 22)})
	got := byURI[doc.URI]
	sort.Slice(got, func(i, j int) bool { return got[i].Start.Line < got[j].Start.Line })
	diff.Test(t, t.Errorf, got, []protocol.Range{rng(1, 9, 1, 15), rng(2, 36, 2, 42)})
}

func applyEdits(text string, edits []protocol.TextEdit) string {
	li := sitteradapter.NewLineIndex(text)
	type span struct {
		start, end int
		text       string
	}
	var spans []span
	for _, e := range edits {
		start, end := li.Span(e.Range)
		spans = append(spans, span{start, end, e.NewText})
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start > spans[j].start })
	for _, s := range spans {
		text = text[:s.start] + s.text + text[s.end:]
	}
	return text
}

func TestFormatDocument(t *testing.T) {
	f := setup(t)
	text := "<template>\n<p/>\n</template>\n<script>\nexport default {\ndata() {\nreturn { a: 1 }   \n}\n}\n</script>\n"
	edits := f.mode.FormatDocument(f.doc("App.vue", text), feature.FormattingOptions{TabSize: 4, InsertSpaces: true})
	got := applyEdits(text, edits)
	want := "<template>\n<p/>\n</template>\n<script>\nexport default {\n    data() {\n        return { a: 1 }\n    }\n}\n</script>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatRangeEndingInIndent(t *testing.T) {
	f := setup(t)
	text := "if (x) {\n    a()\n  b()\n}\n"
	edits := f.mode.Format(f.doc("main.js", text), rng(1, 0, 2, 2), feature.FormattingOptions{TabSize: 4, InsertSpaces: true})
	diff.Test(t, t.Errorf, edits, []protocol.TextEdit{{Range: rng(2, 0, 2, 2), NewText: "    "}})

	tabs := f.mode.Format(f.doc("main.js", text), rng(1, 0, 2, 0), feature.FormattingOptions{TabSize: 4})
	diff.Test(t, t.Errorf, tabs, []protocol.TextEdit{
		{Range: rng(1, 0, 1, 4), NewText: "\t"},
		{Range: rng(2, 0, 2, 0), NewText: "\t"},
	})
}

func TestFormatRangeKeepsFirstLineIndent(t *testing.T) {
	f := setup(t)
	text := "function f() {\n        a()\n  b()\n}\n"
	edits := f.mode.Format(f.doc("main.js", text), rng(1, 0, 2, 5), feature.FormattingOptions{TabSize: 4, InsertSpaces: true})
	diff.Test(t, t.Errorf, edits, []protocol.TextEdit{{Range: rng(2, 0, 2, 2), NewText: "        "}})
}

func TestOptionsFrom(t *testing.T) {
	got := feature.OptionsFrom(protocol.FormattingOptions{"tabSize": float64(2), "insertSpaces": false})
	diff.Test(t, t.Errorf, got, feature.FormattingOptions{TabSize: 2})
	diff.Test(t, t.Errorf, feature.OptionsFrom(nil), feature.FormattingOptions{TabSize: 4, InsertSpaces: true})
}
