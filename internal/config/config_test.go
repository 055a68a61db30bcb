package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if cfg.Cache.MaxEntries != 10 || cfg.Cache.MaxAgeSeconds != 60 {
		t.Errorf("unexpected cache defaults %+v", cfg.Cache)
	}
	if fw := cfg.AnalysisFramework(); fw != analysis.DefaultFramework {
		t.Errorf("unexpected framework %+v", fw)
	}
	s := cfg.FormatSettings(2, true)
	if !s.InsertSpaceAfterCommaDelimiter || !s.InsertSpaceBeforeAndAfterBinaryOperators || s.InsertSpaceAfterOpeningAndBeforeClosingNonemptyParenthesis {
		t.Errorf("unexpected format defaults %+v", s)
	}
	if s.TabSize != 2 || s.IndentSize != 2 || !s.ConvertTabsToSpaces || s.BaseIndentSize != 0 {
		t.Errorf("unexpected indentation settings %+v", s)
	}
}

func TestLoadOverrides(t *testing.T) {
	opts := map[string]any{
		"javascript": map[string]any{
			"format": map[string]any{
				"insertSpaceAfterCommaDelimiter":                         false,
				"insertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets": true,
			},
		},
		"framework": map[string]any{"module": "vue-class"},
		"cache":     map[string]any{"max_entries": 3},
	}
	cfg, err := config.Load(opts)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	s := cfg.FormatSettings(4, false)
	if s.InsertSpaceAfterCommaDelimiter {
		t.Errorf("explicit false was ignored")
	}
	if !s.InsertSpaceAfterSemicolonInForStatements {
		t.Errorf("unset toggle should stay on")
	}
	if !s.InsertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets {
		t.Errorf("explicit true was ignored")
	}
	if fw := cfg.AnalysisFramework(); fw.Module != "vue-class" || fw.Constructor != "Vue" {
		t.Errorf("unexpected framework %+v", fw)
	}
	if cfg.Cache.MaxEntries != 3 || cfg.Cache.MaxAgeSeconds != 60 {
		t.Errorf("unexpected cache %+v", cfg.Cache)
	}

	t.Run("merge keeps earlier settings", func(t *testing.T) {
		next, err := cfg.Merge(map[string]any{"store": "/tmp/x.db"})
		if err != nil {
			t.Fatalf("Failed to merge: %v", err)
		}
		if next.Store != "/tmp/x.db" || next.Framework.Module != "vue-class" {
			t.Errorf("unexpected merge result %+v", next)
		}
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vetur.toml")
	content := `
store = "snapshots.db"

[framework]
constructor = "Component"

[javascript.format]
insertSpaceBeforeAndAfterBinaryOperators = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load file: %v", err)
	}
	if cfg.Store != "snapshots.db" || cfg.AnalysisFramework().Constructor != "Component" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.FormatSettings(4, true).InsertSpaceBeforeAndAfterBinaryOperators {
		t.Errorf("toml toggle was ignored")
	}

	if _, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
