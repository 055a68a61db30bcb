package host_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/host"
	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/resolver"
	"github.com/sandersn/vetur/internal/store"

	"kr.dev/diff"
)

const component = "<template><p/></template>\n<script lang=\"ts\">\nexport default {}\n</script>\n"

func setup(t *testing.T, opts ...host.Option) (string, *projection.Registry, *host.Host) {
	t.Helper()
	root := t.TempDir()
	reg := projection.NewRegistry(projection.NewCache(10, time.Minute), resolver.URIToPath)
	return root, reg, host.New(root, reg, analysis.CompilerOptions{AllowJS: true}, opts...)
}

func write(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestOpenDocumentWins(t *testing.T) {
	root, reg, h := setup(t)
	path := filepath.Join(root, "App.vue")
	write(t, path, "<script>\nconst onDisk = 1\n</script>\n")

	reg.Resolve(projection.HostDocument{URI: resolver.PathToURI(path), Version: 3, Text: component})

	if got := h.ScriptVersion(path); got != "3" {
		t.Errorf("expected version 3, got %q", got)
	}
	if got := h.ScriptKind(path); got != analysis.ScriptKindTS {
		t.Errorf("expected TypeScript, got %v", got)
	}
	text := analysis.SnapshotText(h.ScriptSnapshot(path))
	if len(text) != len(component) || !strings.Contains(text, "export default {}") || strings.Contains(text, "<template>") {
		t.Errorf("unexpected snapshot %q", text)
	}
}

func TestDiskFallback(t *testing.T) {
	root, _, h := setup(t)
	path := filepath.Join(root, "Disk.vue")
	write(t, path, component)

	if v := h.ScriptVersion(path); !strings.HasPrefix(v, "d") {
		t.Errorf("expected a disk version, got %q", v)
	}
	text := analysis.SnapshotText(h.ScriptSnapshot(path))
	if strings.Contains(text, "<script") || !strings.Contains(text, "export default {}") {
		t.Errorf("disk component not projected: %q", text)
	}
	if got := h.ScriptKind(path); got != analysis.ScriptKindUnknown {
		t.Errorf("expected the component language to be left to the parser, got %v", got)
	}

	missing := filepath.Join(root, "gone.js")
	if v := h.ScriptVersion(missing); v != "0" {
		t.Errorf("expected version 0, got %q", v)
	}
	snap := h.ScriptSnapshot(missing)
	if snap == nil || snap.Len() != 0 {
		t.Errorf("expected an empty snapshot for a missing file")
	}
}

func TestStoreServesDiskSnapshots(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()
	root, _, h := setup(t, host.WithStore(s))
	path := filepath.Join(root, "Disk.vue")
	write(t, path, component)

	first := analysis.SnapshotText(h.ScriptSnapshot(path))
	if n, _ := s.Len(); n != 1 {
		t.Fatalf("expected the snapshot to be stored, got %d rows", n)
	}
	if second := analysis.SnapshotText(h.ScriptSnapshot(path)); second != first {
		t.Errorf("stored snapshot differs: %q != %q", second, first)
	}
}

func TestScriptFileNames(t *testing.T) {
	root, reg, h := setup(t)
	a, b := filepath.Join(root, "a.js"), filepath.Join(root, "b.vue")
	h.SetFiles([]string{b, a})
	reg.Resolve(projection.HostDocument{URI: resolver.PathToURI(b), Version: 1, Text: component})
	reg.Resolve(projection.HostDocument{URI: resolver.PathToURI(filepath.Join(root, "c.ts")), Version: 1, Text: ""})

	diff.Test(t, t.Errorf, h.ScriptFileNames(), []string{a, b, filepath.Join(root, "c.ts")})
}

func TestDefaultLibFileName(t *testing.T) {
	root, _, h := setup(t)
	got := h.DefaultLibFileName(analysis.CompilerOptions{Lib: []string{"ES2017"}})
	if want := filepath.Join(root, "node_modules", "typescript", "lib", "lib.es2017.d.ts"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
