package manager_test

import (
	"errors"
	"testing"

	"github.com/sandersn/vetur/internal/manager"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDocumentLifecycle(t *testing.T) {
	dm := manager.NewDocumentManager()
	uri := "file:///App.vue"

	if _, err := dm.Get(uri); !errors.Is(err, manager.ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}

	dm.Open(uri, 1, "hello\nworld\n")
	doc, err := dm.ApplyChanges(uri, 2, []any{
		protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 1, Character: 0},
				End:   protocol.Position{Line: 1, Character: 5},
			},
			Text: "there",
		},
		protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 5},
				End:   protocol.Position{Line: 0, Character: 5},
			},
			Text: ",",
		},
	})
	if err != nil {
		t.Fatalf("Failed to apply changes: %v", err)
	}
	if doc.Text != "hello,\nthere\n" || doc.Version != 2 {
		t.Errorf("unexpected document %+v", doc)
	}

	t.Run("whole document", func(t *testing.T) {
		doc, err := dm.ApplyChanges(uri, 3, []any{protocol.TextDocumentContentChangeEventWhole{Text: "x"}})
		if err != nil || doc.Text != "x" {
			t.Errorf("got %+v, %v", doc, err)
		}
	})

	t.Run("stale version still advances", func(t *testing.T) {
		doc, err := dm.ApplyChanges(uri, 1, nil)
		if err != nil || doc.Version != 4 {
			t.Errorf("got %+v, %v", doc, err)
		}
	})

	dm.Close(uri)
	if _, err := dm.ApplyChanges(uri, 9, nil); !errors.Is(err, manager.ErrNotOpen) {
		t.Errorf("expected ErrNotOpen after close, got %v", err)
	}
}
