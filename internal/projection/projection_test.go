package projection_test

import (
	"strings"
	"testing"

	"github.com/sandersn/vetur/internal/component"
	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/sitteradapter"
)

const sample = "<template>\n  <p>{{ ünïcode }}</p>\n</template>\r\n<script>\nexport default {\n  data: 1\n}\n</script>\n<style>\np { color: red }\n</style>\n"

func TestProjectKeepsRegionAndShape(t *testing.T) {
	region, ok := component.ExtractScriptRegion(sample)
	if !ok {
		t.Fatal("expected script region")
	}
	projected := projection.Project(sample, &region)

	if len(projected) != len(sample) {
		t.Fatalf("length changed: %d != %d", len(projected), len(sample))
	}
	if got := projected[region.Offset:region.End()]; got != sample[region.Offset:region.End()] {
		t.Errorf("region content changed: %q", got)
	}
	outside := projected[:region.Offset] + projected[region.End():]
	if strings.Trim(outside, " \r\n") != "" {
		t.Errorf("expected only whitespace outside region, got %q", outside)
	}
	assertSameLines(t, sample, projected)
}

func TestProjectWithoutRegion(t *testing.T) {
	text := "const a = 1\n"
	if got := projection.Project(text, nil); got != text {
		t.Errorf("expected identity projection, got %q", got)
	}
}

func TestBuild(t *testing.T) {
	t.Run("component file", func(t *testing.T) {
		doc := projection.Build("file:///App.vue", 3, sample)
		if !doc.HasRegion || doc.Version != 3 || doc.Host != sample {
			t.Fatalf("unexpected document %+v", doc)
		}
		if strings.Contains(doc.Text, "<template>") {
			t.Error("expected markup to be blanked")
		}
	})
	t.Run("component without script", func(t *testing.T) {
		text := "<template><p/></template>"
		doc := projection.Build("file:///Empty.vue", 1, text)
		if doc.HasRegion || doc.Text != text {
			t.Errorf("expected whole text to be used, got %+v", doc)
		}
	})
	t.Run("typescript script", func(t *testing.T) {
		doc := projection.Build("file:///main.ts", 1, "let a: number = 1")
		if doc.Lang != component.LangTypeScript {
			t.Errorf("expected typescript, got %s", doc.Lang)
		}
	})
}

func FuzzProjectOffsets(f *testing.F) {
	f.Add(sample, 10, 20)
	f.Add("a\nb\r\nc", 1, 3)
	f.Add("", 0, 0)

	f.Fuzz(func(t *testing.T, text string, offset, length int) {
		if len(text) == 0 {
			offset, length = 0, 0
		} else {
			offset = abs(offset) % (len(text) + 1)
			length = abs(length) % (len(text) - offset + 1)
		}
		region := component.Region{Offset: offset, Length: length}
		projected := projection.Project(text, &region)
		if len(projected) != len(text) {
			t.Fatalf("length changed: %d != %d", len(projected), len(text))
		}
		assertSameLines(t, text, projected)
	})
}

func abs(n int) int {
	if n < 0 {
		if n == -n {
			return 0
		}
		return -n
	}
	return n
}

func assertSameLines(t *testing.T, a, b string) {
	t.Helper()
	la := sitteradapter.NewLineIndex(a).LineStarts()
	lb := sitteradapter.NewLineIndex(b).LineStarts()
	if len(la) != len(lb) {
		t.Fatalf("line count differs: %d != %d", len(la), len(lb))
	}
	for i := range la {
		if la[i] != lb[i] {
			t.Fatalf("line %d starts at %d vs %d", i, la[i], lb[i])
		}
	}
}
