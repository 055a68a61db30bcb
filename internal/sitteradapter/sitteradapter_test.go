package sitteradapter_test

import (
	"testing"

	"github.com/sandersn/vetur/internal/sitteradapter"

	sitter "github.com/smacker/go-tree-sitter"
	lsp "github.com/tliron/glsp/protocol_3_16"
)

func TestLineIndexRoundTrip(t *testing.T) {
	text := "const a = 1;\n// ünï\r\nlet 𝔁 = 2;\n"
	li := sitteradapter.NewLineIndex(text)

	if got := len(li.LineStarts()); got != 4 {
		t.Fatalf("expected 4 lines, got %d", got)
	}
	for offset := 0; offset <= len(text); offset++ {
		pos := li.PositionAt(offset)
		back := li.OffsetAt(pos)
		// Offsets inside a multi-byte rune snap back to the rune start.
		if back > offset {
			t.Errorf("offset %d -> %v -> %d", offset, pos, back)
		}
	}

	pos := li.PositionAt(len("const a = 1;\n// ünï\r\nlet 𝔁"))
	if pos.Line != 2 || pos.Character != 6 {
		t.Errorf("expected 2:6 for surrogate pair, got %d:%d", pos.Line, pos.Character)
	}
}

func TestOffsetAtClamps(t *testing.T) {
	li := sitteradapter.NewLineIndex("ab\ncd")
	if got := li.OffsetAt(lsp.Position{Line: 0, Character: 10}); got != 2 {
		t.Errorf("expected clamp to line end 2, got %d", got)
	}
	if got := li.OffsetAt(lsp.Position{Line: 7, Character: 0}); got != 5 {
		t.Errorf("expected clamp to text end 5, got %d", got)
	}
}

func TestApplyTextEdit(t *testing.T) {
	doc := "hello\nworld\n"
	change := lsp.TextDocumentContentChangeEvent{
		Range: &lsp.Range{
			Start: lsp.Position{Line: 1, Character: 0},
			End:   lsp.Position{Line: 1, Character: 5},
		},
		Text: "there",
	}
	if got := sitteradapter.ApplyTextEdit(change, doc); got != "hello\nthere\n" {
		t.Errorf("unexpected edit result %q", got)
	}

	whole := lsp.TextDocumentContentChangeEvent{Text: "replaced"}
	if got := sitteradapter.ApplyTextEdit(whole, doc); got != "replaced" {
		t.Errorf("unexpected whole-document result %q", got)
	}
}

func TestCreateTSEdit(t *testing.T) {
	oldText := "a\nbc\n"
	newText := "a\nbXYZ\nc\n"
	edit := sitteradapter.CreateTSEdit(oldText, newText, 3, 3, 7)
	want := sitter.EditInput{
		StartIndex:  3,
		OldEndIndex: 3,
		NewEndIndex: 7,
		StartPoint:  sitter.Point{Row: 1, Column: 1},
		OldEndPoint: sitter.Point{Row: 1, Column: 1},
		NewEndPoint: sitter.Point{Row: 2, Column: 0},
	}
	if edit != want {
		t.Errorf("got %+v, want %+v", edit, want)
	}
}
