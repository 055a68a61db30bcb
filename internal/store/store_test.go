package store_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandersn/vetur/internal/store"

	"kr.dev/diff"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openStore(t)
	mt := time.Unix(1700000000, 123)
	e := store.Entry{Path: "/a/App.vue", ModTime: mt, Size: 42, Lang: "typescript", HasRegion: true, Text: "   \nlet a = 1\n"}
	if err := s.Put(e); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}

	got, err := s.Get(e.Path, mt, 42)
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	diff.Test(t, t.Errorf, got, e)

	t.Run("stale mod time", func(t *testing.T) {
		if _, err := s.Get(e.Path, mt.Add(time.Second), 42); !errors.Is(err, store.ErrMiss) {
			t.Errorf("expected ErrMiss, got %v", err)
		}
	})
	t.Run("stale size", func(t *testing.T) {
		if _, err := s.Get(e.Path, mt, 43); !errors.Is(err, store.ErrMiss) {
			t.Errorf("expected ErrMiss, got %v", err)
		}
	})
	t.Run("unknown path", func(t *testing.T) {
		if _, err := s.Get("/nope.js", mt, 1); !errors.Is(err, store.ErrMiss) {
			t.Errorf("expected ErrMiss, got %v", err)
		}
	})
}

func TestPutReplaces(t *testing.T) {
	s := openStore(t)
	for i, text := range []string{"old", "new"} {
		e := store.Entry{Path: "/a.js", ModTime: time.Unix(int64(i), 0), Size: 3, Lang: "javascript", Text: text}
		if err := s.Put(e); err != nil {
			t.Fatalf("Failed to put: %v", err)
		}
	}
	if n, err := s.Len(); err != nil || n != 1 {
		t.Fatalf("expected 1 row, got %d (%v)", n, err)
	}
	got, err := s.Get("/a.js", time.Unix(1, 0), 3)
	if err != nil || got.Text != "new" {
		t.Errorf("got %+v, %v", got, err)
	}

	if err := s.Delete("/a.js"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if n, _ := s.Len(); n != 0 {
		t.Errorf("expected empty store, got %d", n)
	}
}

func TestReopenKeepsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	e := store.Entry{Path: "/a.js", ModTime: time.Unix(5, 0), Size: 1, Lang: "javascript", Text: "x"}
	if err := s.Put(e); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	s.Close()

	s, err = store.Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.Get("/a.js", time.Unix(5, 0), 1); err != nil {
		t.Errorf("snapshot lost across reopen: %v", err)
	}
}
