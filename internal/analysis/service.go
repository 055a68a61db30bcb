package analysis

import (
	"log"

	"github.com/sandersn/vetur/internal/ast"
)

// Framework names the runtime module and constructor whose instances get a
// typed `this`.
type Framework struct {
	Module      string
	Constructor string
}

var DefaultFramework = Framework{Module: "vue", Constructor: "Vue"}

// Service answers queries over the files its Host reports. It is not safe
// for concurrent use.
type Service struct {
	host      Host
	factory   SourceFileFactory
	framework Framework
	files     map[string]*fileState
}

type fileState struct {
	version   string
	snapshot  Snapshot
	file      *ast.SourceFile
	binding   *Binding
	resolved  []*ResolvedModule
	instances map[*ast.Node]*Instance
}

// NewService creates a service. Source files are always built through
// factory.
func NewService(host Host, factory SourceFileFactory, framework Framework) *Service {
	return &Service{
		host:      host,
		factory:   factory,
		framework: framework,
		files:     make(map[string]*fileState),
	}
}

// SourceFile returns the current source file for fileName, rebuilding it if
// the host reports a new version.
func (s *Service) SourceFile(fileName string) *ast.SourceFile {
	if fs := s.state(fileName); fs != nil {
		return fs.file
	}
	return nil
}

// state brings fileName up to the host's version. Files are only rebuilt when
// the version string changes.
func (s *Service) state(fileName string) *fileState {
	version := s.host.ScriptVersion(fileName)
	fs := s.files[fileName]
	if fs != nil && fs.version == version {
		return fs
	}
	snapshot := s.host.ScriptSnapshot(fileName)
	if snapshot == nil {
		delete(s.files, fileName)
		return nil
	}
	var (
		file *ast.SourceFile
		err  error
	)
	if fs != nil {
		file, err = s.factory.UpdateSourceFile(fs.file, snapshot, version, snapshot.ChangeRange(fs.snapshot))
	} else {
		file, err = s.factory.CreateSourceFile(fileName, snapshot, version, s.host.ScriptKind(fileName))
	}
	if err != nil {
		log.Printf("Failed to build %s: %v", fileName, err)
		delete(s.files, fileName)
		return nil
	}
	fs = &fileState{version: version, snapshot: snapshot, file: file}
	s.files[fileName] = fs
	return fs
}

// bound returns the state of fileName with binding, module resolution and
// framework instances computed.
func (s *Service) bound(fileName string) *fileState {
	fs := s.state(fileName)
	if fs == nil || fs.binding != nil {
		return fs
	}
	fs.binding = Bind(fs.file)
	if len(fs.binding.Imports) > 0 {
		names := make([]string, len(fs.binding.Imports))
		for i, imp := range fs.binding.Imports {
			names[i] = imp.Module
		}
		fs.resolved = s.host.ResolveModuleNames(names, fileName)
	}
	fs.instances = findInstances(fs.binding, s.framework)
	return fs
}

// resolveImport returns the file an import binding's module resolved to.
func (s *Service) resolveImport(fs *fileState, imp *Import) string {
	for i, mi := range fs.binding.Imports {
		if mi.Source == imp.Source && i < len(fs.resolved) && fs.resolved[i] != nil {
			return fs.resolved[i].ResolvedFileName
		}
	}
	return ""
}

// Files returns the names of the files the host reports, in host order.
func (s *Service) Files() []string { return s.host.ScriptFileNames() }

// SyntacticDiagnostics returns the parse errors of fileName.
func (s *Service) SyntacticDiagnostics(fileName string) []ast.Diagnostic {
	fs := s.state(fileName)
	if fs == nil {
		return nil
	}
	return fs.file.ParseDiagnostics
}

// SemanticDiagnostics returns redeclarations, unresolved imports and
// unknown framework instance members of fileName.
func (s *Service) SemanticDiagnostics(fileName string) []ast.Diagnostic {
	fs := s.bound(fileName)
	if fs == nil {
		return nil
	}
	return check(fs)
}

// Remove drops the source file of fileName, so the next query rebuilds it
// from the host even if the host reports a version seen before.
func (s *Service) Remove(fileName string) {
	delete(s.files, fileName)
}

// Dispose drops every cached file.
func (s *Service) Dispose() {
	s.files = make(map[string]*fileState)
}
