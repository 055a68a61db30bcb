package analysis

import (
	"sort"

	"github.com/sandersn/vetur/internal/ast"
)

type DefinitionInfo struct {
	FileName      string
	TextSpan      TextSpan
	Kind          string
	Name          string
	ContainerName string
}

type ReferenceEntry struct {
	FileName      string
	TextSpan      TextSpan
	IsWriteAccess bool
}

// DefinitionAtPosition returns where the name at offset is declared. Import
// bindings are followed into the file the import resolves to.
func (s *Service) DefinitionAtPosition(fileName string, offset int) []DefinitionInfo {
	fs := s.bound(fileName)
	if fs == nil {
		return nil
	}
	n := ast.NodeAt(fs.file.Root, offset)
	switch n.Type {
	case "identifier", "shorthand_property_identifier", "type_identifier", "shorthand_property_identifier_pattern":
	case "property_identifier":
		owner, m := s.memberAt(fs, n)
		if m == nil || m.Node == nil || !m.Node.Positioned() {
			return nil
		}
		return []DefinitionInfo{{
			FileName:      fileName,
			TextSpan:      spanOf(m.Node),
			Kind:          m.Kind,
			Name:          m.Name,
			ContainerName: owner,
		}}
	default:
		return nil
	}
	sym := fs.binding.SymbolAt(n)
	if sym == nil {
		return nil
	}
	if sym.Import != nil {
		if target, tfs, e := s.followImport(fs, sym); target != "" {
			if e == nil {
				return []DefinitionInfo{{FileName: target, Kind: KindModule, Name: sym.Import.Module}}
			}
			return []DefinitionInfo{exportDefinition(target, tfs, e)}
		}
	}
	var out []DefinitionInfo
	for _, d := range sym.Decls {
		if !d.Name.Positioned() {
			continue
		}
		out = append(out, DefinitionInfo{
			FileName: fileName,
			TextSpan: spanOf(d.Name),
			Kind:     elementKind(sym),
			Name:     sym.Name,
		})
	}
	return out
}

func exportDefinition(fileName string, fs *fileState, e *Export) DefinitionInfo {
	info := DefinitionInfo{FileName: fileName, Name: e.Name, Kind: KindVariable}
	switch {
	case e.Symbol != nil && e.Symbol.Decl().Name.Positioned():
		info.TextSpan = spanOf(e.Symbol.Decl().Name)
		info.Kind = elementKind(e.Symbol)
	case e.Node != nil && e.Node.Positioned():
		info.TextSpan = spanOf(e.Node)
	}
	return info
}

// followImport resolves an import binding to the exporting file and export.
// The export is nil when the module resolved but does not declare the name.
func (s *Service) followImport(fs *fileState, sym *Symbol) (string, *fileState, *Export) {
	target := s.resolveImport(fs, sym.Import)
	if target == "" {
		return "", nil, nil
	}
	tfs := s.bound(target)
	if tfs == nil {
		return "", nil, nil
	}
	if sym.Import.Imported == "*" {
		return target, tfs, nil
	}
	return target, tfs, tfs.binding.Exports[sym.Import.Imported]
}

// ReferencesAtPosition returns every reference to the name at offset: uses in
// its own file and, for exported names, uses through imports in every other
// file the host reports.
func (s *Service) ReferencesAtPosition(fileName string, offset int) []ReferenceEntry {
	fs := s.bound(fileName)
	if fs == nil {
		return nil
	}
	n := ast.NodeAt(fs.file.Root, offset)
	if n.Type == "property_identifier" {
		var out []ReferenceEntry
		for _, o := range s.memberOccurrences(fs, n) {
			out = append(out, ReferenceEntry{FileName: fileName, TextSpan: spanOf(o), IsWriteAccess: isWriteAccess(fs.binding, o)})
		}
		return out
	}
	sym := fs.binding.SymbolAt(n)
	if sym == nil {
		return nil
	}
	defFile, defState := fileName, fs
	if sym.Import != nil {
		target, tfs, e := s.followImport(fs, sym)
		if e == nil || e.Symbol == nil {
			return s.referencesIn(fileName, fs, sym)
		}
		defFile, defState, sym = target, tfs, e.Symbol
	}
	out := s.referencesIn(defFile, defState, sym)
	exported := exportNames(defState.binding, sym)
	if len(exported) == 0 {
		return out
	}
	for _, other := range s.otherFiles(defFile, fileName) {
		ofs := s.bound(other)
		if ofs == nil {
			continue
		}
		for _, imp := range importsOf(ofs.binding) {
			if !exported[imp.Import.Imported] || s.resolveImport(ofs, imp.Import) != defFile {
				continue
			}
			out = append(out, s.referencesIn(other, ofs, imp)...)
		}
	}
	return out
}

func (s *Service) referencesIn(fileName string, fs *fileState, sym *Symbol) []ReferenceEntry {
	var out []ReferenceEntry
	for _, o := range fs.binding.Occurrences(sym) {
		out = append(out, ReferenceEntry{FileName: fileName, TextSpan: spanOf(o), IsWriteAccess: isWriteAccess(fs.binding, o)})
	}
	return out
}

// otherFiles lists the host's files plus the queried file, minus defFile.
func (s *Service) otherFiles(defFile, queried string) []string {
	seen := map[string]bool{defFile: true}
	var out []string
	for _, f := range append(s.host.ScriptFileNames(), queried) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func exportNames(b *Binding, sym *Symbol) map[string]bool {
	var out map[string]bool
	for name, e := range b.Exports {
		if e.Symbol == sym {
			if out == nil {
				out = make(map[string]bool)
			}
			out[name] = true
		}
	}
	return out
}

func importsOf(b *Binding) []*Symbol {
	var out []*Symbol
	seen := make(map[*Symbol]bool)
	for _, sym := range b.decls {
		if sym.Import != nil && !sym.Synthesized && !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decl().Name.Pos < out[j].Decl().Name.Pos })
	return out
}
