package server_test

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sandersn/vetur/internal/config"
	"github.com/sandersn/vetur/internal/manager"
	"github.com/sandersn/vetur/internal/resolver"
	"github.com/sandersn/vetur/internal/server"
	"github.com/sandersn/vetur/internal/sitteradapter"

	"github.com/tliron/glsp"
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

type session struct {
	root      string
	handler   *protocol.Handler
	ctx       *glsp.Context
	published []protocol.PublishDiagnosticsParams
}

func start(t *testing.T, options any) *session {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	s := &session{root: t.TempDir()}
	s.handler = server.New(config.Default()).Handler()
	s.ctx = &glsp.Context{Notify: func(method string, params any) {
		if method == "textDocument/publishDiagnostics" {
			s.published = append(s.published, params.(protocol.PublishDiagnosticsParams))
		}
	}}
	rootURI := resolver.PathToURI(s.root)
	result, err := s.handler.Initialize(s.ctx, &protocol.InitializeParams{
		RootURI:               &rootURI,
		InitializationOptions: options,
	})
	if err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	t.Cleanup(func() {
		if err := s.handler.Shutdown(s.ctx); err != nil {
			t.Errorf("Failed to shut down: %v", err)
		}
	})
	caps := result.(protocol.InitializeResult).Capabilities
	if caps.CompletionProvider == nil || caps.CompletionProvider.ResolveProvider == nil || !*caps.CompletionProvider.ResolveProvider {
		t.Errorf("expected completion resolve support")
	}
	return s
}

func (s *session) open(t *testing.T, name, text string) string {
	t.Helper()
	uri := resolver.PathToURI(filepath.Join(s.root, name))
	err := s.handler.TextDocumentDidOpen(s.ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "vue", Version: 1, Text: text},
	})
	if err != nil {
		t.Fatalf("Failed to open %s: %v", name, err)
	}
	return uri
}

func (s *session) change(t *testing.T, uri string, version protocol.Integer, text string) {
	t.Helper()
	err := s.handler.TextDocumentDidChange(s.ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: text}},
	})
	if err != nil {
		t.Fatalf("Failed to change %s: %v", uri, err)
	}
}

func (s *session) close(t *testing.T, uri string) {
	t.Helper()
	err := s.handler.TextDocumentDidClose(s.ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("Failed to close %s: %v", uri, err)
	}
}

func (s *session) last() protocol.PublishDiagnosticsParams {
	return s.published[len(s.published)-1]
}

func TestDiagnosticsLifecycle(t *testing.T) {
	s := start(t, nil)
	uri := s.open(t, "App.vue", component)

	if got := s.last(); got.URI != uri || len(got.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic for %s, got %+v", uri, got)
	}
	if msg := s.last().Diagnostics[0].Message; msg != "Property 'nope' does not exist on type 'Vue'." {
		t.Errorf("unexpected message %q", msg)
	}

	fixed := protocol.TextDocumentContentChangeEventWhole{Text: component[:len(component)-len("      this.nope()\n    }\n  }\n}\n</script>\n")] + "    }\n  }\n}\n</script>\n"}
	err := s.handler.TextDocumentDidChange(s.ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{fixed},
	})
	if err != nil {
		t.Fatalf("Failed to change: %v", err)
	}
	if got := s.last(); len(got.Diagnostics) != 0 {
		t.Errorf("expected diagnostics to clear, got %+v", got.Diagnostics)
	}

	err = s.handler.TextDocumentDidClose(s.ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if got := s.last(); got.URI != uri || len(got.Diagnostics) != 0 {
		t.Errorf("expected cleared diagnostics on close, got %+v", got)
	}

	_, err = s.handler.TextDocumentHover(s.ctx, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		},
	})
	if !errors.Is(err, manager.ErrNotOpen) {
		t.Errorf("expected ErrNotOpen after close, got %v", err)
	}
}

func TestReopenAtSameVersion(t *testing.T) {
	s := start(t, nil)
	uri := s.open(t, "App.vue", component)
	if got := s.last(); len(got.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", got.Diagnostics)
	}
	s.close(t, uri)

	// Editors restart versions at 1 when a document is reopened.
	s.open(t, "App.vue", strings.Replace(component, "      this.nope()\n", "", 1))
	if got := s.last(); got.URI != uri || len(got.Diagnostics) != 0 {
		t.Errorf("reopened document reported %+v", got.Diagnostics)
	}
}

func TestScriptTagInsideScript(t *testing.T) {
	s := start(t, nil)
	s.open(t, "App.vue", strings.Replace(component, "<script>\n", "<script>\nconst tag = '<script>'\n", 1))
	got := s.last().Diagnostics
	if len(got) != 1 || got[0].Message != "Property 'nope' does not exist on type 'Vue'." {
		t.Errorf("expected only the unknown property, got %+v", got)
	}
}

func TestLangChangeWhileOpen(t *testing.T) {
	s := start(t, nil)
	uri := s.open(t, "App.vue", "<script>\nlet x = 1\n</script>\n")
	if got := s.last(); len(got.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %+v", got.Diagnostics)
	}
	s.change(t, uri, 2, "<script lang=\"ts\">\nlet x: number = 1\n</script>\n")
	if got := s.last(); len(got.Diagnostics) != 0 {
		t.Errorf("typed script parsed with the wrong grammar: %+v", got.Diagnostics)
	}
}

func TestCompletionRoundTrip(t *testing.T) {
	s := start(t, map[string]any{"store": "auto"})
	uri := s.open(t, "App.vue", component)

	result, err := s.handler.TextDocumentCompletion(s.ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 10, Character: 12},
		},
	})
	if err != nil {
		t.Fatalf("Failed to complete: %v", err)
	}
	list := result.(*protocol.CompletionList)
	var count *protocol.CompletionItem
	for i := range list.Items {
		if list.Items[i].Label == "count" {
			count = &list.Items[i]
		}
	}
	if count == nil {
		t.Fatalf("count missing from completions")
	}

	// The client echoes resolve data back as decoded JSON.
	item := *count
	item.Data = map[string]any{"languageId": "javascript", "uri": uri, "version": float64(1), "offset": float64(sitteradapter.NewLineIndex(component).OffsetAt(protocol.Position{Line: 10, Character: 12}))}
	resolved, err := s.handler.CompletionItemResolve(s.ctx, &item)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	if resolved.Detail == nil || resolved.Data != nil {
		t.Errorf("unexpected resolved item %+v", resolved)
	}
}

func applyEdits(text string, edits []protocol.TextEdit) string {
	li := sitteradapter.NewLineIndex(text)
	sort.SliceStable(edits, func(i, j int) bool {
		a, _ := li.Span(edits[i].Range)
		b, _ := li.Span(edits[j].Range)
		return a > b
	})
	for _, e := range edits {
		start, end := li.Span(e.Range)
		text = text[:start] + e.NewText + text[end:]
	}
	return text
}

func TestConfigurationChangesFormatting(t *testing.T) {
	s := start(t, nil)
	text := "let a = 1+2\n"
	uri := s.open(t, "main.js", text)
	format := func() string {
		t.Helper()
		edits, err := s.handler.TextDocumentFormatting(s.ctx, &protocol.DocumentFormattingParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Options:      protocol.FormattingOptions{"tabSize": float64(4), "insertSpaces": true},
		})
		if err != nil {
			t.Fatalf("Failed to format: %v", err)
		}
		return applyEdits(text, edits)
	}

	if got := format(); got != "let a = 1 + 2\n" {
		t.Errorf("default formatting gave %q", got)
	}
	err := s.handler.WorkspaceDidChangeConfiguration(s.ctx, &protocol.DidChangeConfigurationParams{
		Settings: map[string]any{"vetur": map[string]any{
			"javascript": map[string]any{"format": map[string]any{"insertSpaceBeforeAndAfterBinaryOperators": false}},
		}},
	})
	if err != nil {
		t.Fatalf("Failed to change configuration: %v", err)
	}
	if got := format(); got != "let a=1+2\n" {
		t.Errorf("reconfigured formatting gave %q", got)
	}
}

func TestWorkspaceSymbol(t *testing.T) {
	s := start(t, nil)
	s.open(t, "App.vue", component)

	symbols, err := s.handler.WorkspaceSymbol(s.ctx, &protocol.WorkspaceSymbolParams{Query: "inc"})
	if err != nil {
		t.Fatalf("Failed to query symbols: %v", err)
	}
	var names []string
	for _, sym := range symbols {
		names = append(names, sym.Name)
	}
	diff.Test(t, t.Errorf, names, []string{"inc"})
}

func TestFuzzyFilter(t *testing.T) {
	names := []string{"value", "increment", "Vaxue", "other", "values", "größe", "Überblick"}
	filter := func(t *testing.T, pattern string, maxHits int) []int {
		t.Helper()
		hits, err := server.FuzzyFilter(pattern, names, maxHits)
		if err != nil {
			t.Fatalf("Failed to filter %q: %v", pattern, err)
		}
		return hits
	}
	tests := []struct {
		pattern string
		want    []int
	}{
		{"", []int{0, 1, 2, 3, 4, 5, 6}},
		{"val", []int{0, 4}},
		{"INC", []int{1}},
		{"vaxue", []int{0, 2, 4}},
		{"zzzz", nil},
		{"grö", []int{5}},
		{"ÜBER", []int{6}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			diff.Test(t, t.Errorf, filter(t, tt.pattern, 10), tt.want)
		})
	}
	if got := filter(t, "", 2); len(got) != 2 {
		t.Errorf("expected the hit limit to apply, got %v", got)
	}
}
