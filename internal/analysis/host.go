// Package analysis is a lightweight JavaScript/TypeScript language service
// built on the tree-sitter syntax trees of internal/parser. It pulls every
// input from a Host and builds source files through an injected
// SourceFileFactory, so callers can change how files are parsed without
// touching the service.
package analysis

import "github.com/sandersn/vetur/internal/ast"

type ScriptKind int

const (
	ScriptKindUnknown ScriptKind = iota
	ScriptKindJS
	ScriptKindJSX
	ScriptKindTS
	ScriptKindTSX
)

type ModuleResolutionKind int

const (
	ModuleResolutionClassic ModuleResolutionKind = iota
	ModuleResolutionNode
)

// CompilerOptions are the compilation settings reported by the host.
type CompilerOptions struct {
	AllowJS              bool
	AllowNonTSExtensions bool
	Lib                  []string
	ModuleResolution     ModuleResolutionKind
}

type Extension string

const (
	ExtensionTS  Extension = ".ts"
	ExtensionTSX Extension = ".tsx"
	ExtensionDTS Extension = ".d.ts"
	ExtensionJS  Extension = ".js"
	ExtensionJSX Extension = ".jsx"
)

// ResolvedModule names the file an import resolved to.
type ResolvedModule struct {
	ResolvedFileName        string
	Extension               Extension
	IsExternalLibraryImport bool
}

// Host is the environment the service runs against.
type Host interface {
	CompilationSettings() CompilerOptions
	ScriptFileNames() []string
	ScriptVersion(fileName string) string
	ScriptKind(fileName string) ScriptKind
	// ScriptSnapshot returns nil when the file does not exist.
	ScriptSnapshot(fileName string) Snapshot
	CurrentDirectory() string
	DefaultLibFileName(options CompilerOptions) string
	// ResolveModuleNames returns one entry per name; nil means unresolved.
	ResolveModuleNames(moduleNames []string, containingFile string) []*ResolvedModule
}

type TextSpan struct {
	Start  int
	Length int
}

func (s TextSpan) End() int { return s.Start + s.Length }

func spanOf(n *ast.Node) TextSpan { return TextSpan{Start: n.Pos, Length: n.Len()} }

// TextChangeRange describes the edit turning an old text into a new one:
// Span covers the replaced part of the old text, NewLength the length of its
// replacement.
type TextChangeRange struct {
	Span      TextSpan
	NewLength int
}

// Snapshot is an immutable view of a file's text.
type Snapshot interface {
	Text(start, end int) string
	Len() int
	// ChangeRange returns the edit from old to this snapshot, or nil when it
	// is unknown.
	ChangeRange(old Snapshot) *TextChangeRange
}

type stringSnapshot string

// NewSnapshot wraps text in a Snapshot.
func NewSnapshot(text string) Snapshot { return stringSnapshot(text) }

func (s stringSnapshot) Text(start, end int) string { return string(s)[start:end] }

func (s stringSnapshot) Len() int { return len(s) }

func (s stringSnapshot) ChangeRange(old Snapshot) *TextChangeRange {
	if old == nil {
		return nil
	}
	r := ComputeChangeRange(old.Text(0, old.Len()), string(s))
	return &r
}

type projectedSnapshot struct {
	stringSnapshot
	lang string
}

// NewProjectedSnapshot wraps the script view of a component file whose
// script block is written in lang. Factories must not project it again.
func NewProjectedSnapshot(text, lang string) Snapshot {
	return projectedSnapshot{stringSnapshot: stringSnapshot(text), lang: lang}
}

// ProjectedLang returns the script language of a snapshot made by
// NewProjectedSnapshot.
func ProjectedLang(s Snapshot) (string, bool) {
	p, ok := s.(projectedSnapshot)
	return p.lang, ok
}

// SnapshotText returns the full text of s.
func SnapshotText(s Snapshot) string { return s.Text(0, s.Len()) }

// ComputeChangeRange finds the smallest single edit turning old into new by
// trimming their common prefix and suffix.
func ComputeChangeRange(old, new string) TextChangeRange {
	prefix := 0
	for prefix < len(old) && prefix < len(new) && old[prefix] == new[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(old)-prefix && suffix < len(new)-prefix &&
		old[len(old)-1-suffix] == new[len(new)-1-suffix] {
		suffix++
	}
	return TextChangeRange{
		Span:      TextSpan{Start: prefix, Length: len(old) - prefix - suffix},
		NewLength: len(new) - prefix - suffix,
	}
}

// SourceFileFactory builds source files for the service. UpdateSourceFile may
// reuse file; change is nil when the edit is unknown.
type SourceFileFactory interface {
	CreateSourceFile(fileName string, snapshot Snapshot, version string, kind ScriptKind) (*ast.SourceFile, error)
	UpdateSourceFile(file *ast.SourceFile, snapshot Snapshot, version string, change *TextChangeRange) (*ast.SourceFile, error)
}
