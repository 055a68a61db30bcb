// Package interceptor decorates a SourceFileFactory so component files are
// parsed from their projected script text and typed as framework instances.
package interceptor

import (
	"log"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/ast"
	"github.com/sandersn/vetur/internal/component"
	"github.com/sandersn/vetur/internal/projection"
)

// Factory wraps another SourceFileFactory. Files that are not component files
// pass through untouched.
type Factory struct {
	next      analysis.SourceFileFactory
	framework analysis.Framework
}

func New(next analysis.SourceFileFactory, framework analysis.Framework) *Factory {
	return &Factory{next: next, framework: framework}
}

func (f *Factory) CreateSourceFile(fileName string, snapshot analysis.Snapshot, version string, kind analysis.ScriptKind) (*ast.SourceFile, error) {
	if !component.IsComponentFile(fileName) {
		return f.next.CreateSourceFile(fileName, snapshot, version, kind)
	}
	text, lang := project(fileName, snapshot)
	if kind == analysis.ScriptKindUnknown {
		kind = kindOf(lang)
	}
	return f.create(fileName, text, version, kind)
}

func (f *Factory) create(fileName, text, version string, kind analysis.ScriptKind) (*ast.SourceFile, error) {
	sf, err := f.next.CreateSourceFile(fileName, analysis.NewSnapshot(text), version, kind)
	if err != nil {
		return nil, err
	}
	Patch(sf, f.framework)
	return sf, nil
}

// UpdateSourceFile reparses file from snapshot. A script block whose lang
// changed is parsed from scratch with the new grammar.
func (f *Factory) UpdateSourceFile(file *ast.SourceFile, snapshot analysis.Snapshot, version string, change *analysis.TextChangeRange) (*ast.SourceFile, error) {
	if !component.IsComponentFile(file.FileName) {
		return f.next.UpdateSourceFile(file, snapshot, version, change)
	}
	text, lang := project(file.FileName, snapshot)
	if lang != file.Lang {
		return f.create(file.FileName, text, version, kindOf(lang))
	}
	// Patching rewrote file, so the change is taken against its text.
	r := analysis.ComputeChangeRange(file.Text, text)
	sf, err := f.next.UpdateSourceFile(file, analysis.NewSnapshot(text), version, &r)
	if err != nil {
		return nil, err
	}
	Patch(sf, f.framework)
	return sf, nil
}

// project returns the script view of a component file and its language.
// Snapshots the host already projected are used as they are.
func project(fileName string, snapshot analysis.Snapshot) (string, string) {
	text := analysis.SnapshotText(snapshot)
	if lang, ok := analysis.ProjectedLang(snapshot); ok {
		return text, lang
	}
	doc := projection.Build(fileName, 0, text)
	if !doc.HasRegion {
		log.Printf("No script region in %s", fileName)
	}
	return doc.Text, doc.Lang
}

func kindOf(lang string) analysis.ScriptKind {
	if lang == component.LangTypeScript {
		return analysis.ScriptKindTS
	}
	return analysis.ScriptKindJS
}
