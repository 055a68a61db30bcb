// Package host implements analysis.Host over the open documents of an editor
// session and the files on disk.
package host

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/component"
	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/resolver"
	"github.com/sandersn/vetur/internal/sitteradapter"
	"github.com/sandersn/vetur/internal/store"
)

type Host struct {
	root     string
	registry *projection.Registry
	resolver *resolver.Resolver
	options  analysis.CompilerOptions
	store    *store.Store
	files    []string
}

type Option func(*Host)

// WithStore makes disk reads go through a snapshot store.
func WithStore(s *store.Store) Option {
	return func(h *Host) { h.store = s }
}

// WithFiles sets the project files reported besides the open documents.
func WithFiles(files []string) Option {
	return func(h *Host) { h.files = files }
}

func New(root string, registry *projection.Registry, options analysis.CompilerOptions, opts ...Option) *Host {
	h := &Host{
		root:     root,
		registry: registry,
		resolver: resolver.New(options),
		options:  options,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetFiles replaces the project files.
func (h *Host) SetFiles(files []string) { h.files = files }

func (h *Host) CompilationSettings() analysis.CompilerOptions { return h.options }

// ScriptFileNames returns the project files and the open documents, sorted
// and without duplicates.
func (h *Host) ScriptFileNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, list := range [][]string{h.files, h.registry.Paths()} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// ScriptVersion is the document version for open documents and the
// modification time for files on disk. Missing files have version "0".
func (h *Host) ScriptVersion(fileName string) string {
	if e, ok := h.registry.ByPath(fileName); ok {
		return strconv.Itoa(int(e.LastSeenVersion))
	}
	info, err := os.Stat(fileName)
	if err != nil {
		return "0"
	}
	return "d" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
}

func (h *Host) ScriptKind(fileName string) analysis.ScriptKind {
	if e, ok := h.registry.ByPath(fileName); ok && component.IsComponentFile(fileName) {
		return kindOf(e.Document.Lang)
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".vue":
		return analysis.ScriptKindUnknown
	case ".ts", ".mts", ".cts":
		return analysis.ScriptKindTS
	case ".tsx":
		return analysis.ScriptKindTSX
	case ".jsx":
		return analysis.ScriptKindJSX
	}
	return analysis.ScriptKindJS
}

func kindOf(lang string) analysis.ScriptKind {
	if lang == component.LangTypeScript {
		return analysis.ScriptKindTS
	}
	return analysis.ScriptKindJS
}

// ScriptSnapshot returns the projected text of fileName. A file that cannot
// be read yields an empty snapshot. Component files are projected here and
// nowhere else.
func (h *Host) ScriptSnapshot(fileName string) analysis.Snapshot {
	if e, ok := h.registry.ByPath(fileName); ok {
		return snapshot(fileName, e.Document.Text, e.Document.Lang)
	}
	text, lang := h.readDisk(fileName)
	return snapshot(fileName, text, lang)
}

func snapshot(fileName, text, lang string) analysis.Snapshot {
	if component.IsComponentFile(fileName) {
		return analysis.NewProjectedSnapshot(text, lang)
	}
	return analysis.NewSnapshot(text)
}

func (h *Host) readDisk(fileName string) (text, lang string) {
	info, err := os.Stat(fileName)
	if err != nil {
		return "", component.LangJavaScript
	}
	if h.store != nil {
		e, err := h.store.Get(fileName, info.ModTime(), info.Size())
		if err == nil {
			return e.Text, e.Lang
		}
		if !errors.Is(err, store.ErrMiss) {
			log.Printf("Failed to read snapshot of %s: %v", fileName, err)
		}
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		log.Printf("Failed to read %s: %v", fileName, err)
		return "", component.LangJavaScript
	}
	doc := projection.Build(fileName, 0, string(data))
	if h.store != nil {
		err := h.store.Put(store.Entry{
			Path:      fileName,
			ModTime:   info.ModTime(),
			Size:      info.Size(),
			Lang:      doc.Lang,
			HasRegion: doc.HasRegion,
			Text:      doc.Text,
		})
		if err != nil {
			log.Printf("Failed to store snapshot of %s: %v", fileName, err)
		}
	}
	return doc.Text, doc.Lang
}

func (h *Host) CurrentDirectory() string { return h.root }

// DefaultLibFileName names the declaration file of the first configured
// library inside the workspace's TypeScript installation.
func (h *Host) DefaultLibFileName(options analysis.CompilerOptions) string {
	lib := "lib.d.ts"
	if len(options.Lib) > 0 {
		lib = "lib." + strings.ToLower(options.Lib[0]) + ".d.ts"
	}
	return filepath.Join(h.root, "node_modules", "typescript", "lib", lib)
}

func (h *Host) ResolveModuleNames(moduleNames []string, containingFile string) []*analysis.ResolvedModule {
	return h.resolver.ResolveModuleNames(moduleNames, containingFile)
}

// Lines returns the line table of the host text of fileName, used to map
// offsets in files other than the queried document.
func (h *Host) Lines(fileName string) *sitteradapter.LineIndex {
	if e, ok := h.registry.ByPath(fileName); ok {
		return e.Document.Lines()
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		return sitteradapter.NewLineIndex("")
	}
	return sitteradapter.NewLineIndex(string(data))
}
