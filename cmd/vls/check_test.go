package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kr.dev/diff"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, text := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
}

func TestCollectAndRead(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/App.vue":               "<script>export default {}</script>",
		"src/util.js":               "export const x = 1\n",
		"src/readme.md":             "# no\n",
		"node_modules/dep/index.js": "module.exports = 1\n",
	})
	files, err := collect([]string{filepath.Join(root, "src"), filepath.Join(root, "src", "util.js")})
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	want := []string{filepath.Join(root, "src", "App.vue"), filepath.Join(root, "src", "util.js")}
	diff.Test(t, t.Errorf, files, want)

	sources, err := readAll(context.Background(), files, 1)
	if err != nil {
		t.Fatalf("readAll failed: %v", err)
	}
	if len(sources) != 2 || sources[1].text != "export const x = 1\n" {
		t.Errorf("unexpected sources %+v", sources)
	}
}

func TestRunCheck(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"App.vue": "<script>\nexport default { methods: { f() { this.missing() } } }\n</script>\n",
		"ok.js":   "const a = 1\n",
	})
	wd, _ := os.Getwd()
	if err := os.Chdir(root); err != nil {
		t.Fatalf("Failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	color.NoColor = true

	cmd := &cobra.Command{RunE: runCheck, SilenceUsage: true, SilenceErrors: true}
	cmd.Flags().AddFlagSet(checkCmd.Flags())
	cmd.PersistentFlags().String("config", "", "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--color", "off", "."})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "found 1 problem(s)") {
		t.Errorf("expected one problem, got %v", err)
	}
	want := "App.vue:2:40: error TS2339 Property 'missing' does not exist on type 'Vue'.\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}
