package analysis

import (
	"github.com/sandersn/vetur/internal/ast"
)

type QuickInfo struct {
	Kind          string
	TextSpan      TextSpan
	DisplayParts  []SymbolDisplayPart
	Documentation []SymbolDisplayPart
}

// QuickInfoAtPosition describes the name at offset.
func (s *Service) QuickInfoAtPosition(fileName string, offset int) *QuickInfo {
	fs := s.bound(fileName)
	if fs == nil {
		return nil
	}
	n := ast.NodeAt(fs.file.Root, offset)
	if n == fs.file.Root {
		return nil
	}
	sf := fs.file
	info := &QuickInfo{TextSpan: spanOf(n)}
	switch n.Type {
	case "identifier", "shorthand_property_identifier", "type_identifier":
		if sym := fs.binding.SymbolAt(n); sym != nil {
			info.Kind = elementKind(sym)
			info.DisplayParts = displaySymbol(sf, sym)
			info.Documentation = jsDoc(sf, sym.Decl().Name)
			return info
		}
		if g := globals[n.Text]; g != nil {
			info.Kind = g.Kind
			info.DisplayParts = displayGlobal(g)
			if g.Doc != "" {
				info.Documentation = []SymbolDisplayPart{{Text: g.Doc, Kind: PartText}}
			}
			return info
		}
	case "property_identifier":
		owner, m := s.memberAt(fs, n)
		if m == nil {
			return nil
		}
		info.Kind = m.Kind
		info.DisplayParts = displayMember(sf, owner, m)
		info.Documentation = memberDoc(sf, m)
		return info
	case "this":
		var b partsBuilder
		b.keyword("this")
		if inst := instanceAtNode(fs, n); inst != nil {
			b.punct(":").space().add(PartClassName, inst.Type)
		}
		info.Kind = KindKeyword
		info.DisplayParts = b
		return info
	}
	return nil
}

// memberAt resolves a property name: a member access on `this`, the
// framework constructor, a global or a local object, or the key of an object
// literal member.
func (s *Service) memberAt(fs *fileState, n *ast.Node) (string, *Member) {
	p := n.Parent
	if p == nil {
		return "", nil
	}
	switch p.Type {
	case "member_expression":
		if n.Field != "property" {
			return "", nil
		}
		obj := p.Child("object")
		if obj == nil {
			return "", nil
		}
		switch obj.Type {
		case "this":
			if inst := instanceAtNode(fs, obj); inst != nil {
				return inst.Type, inst.Lookup(n.Text)
			}
			if cls := obj.Ancestor("class_body"); cls != nil {
				return "", findMember(classMembers(fs.file, cls), n.Text)
			}
		case "identifier":
			sym := fs.binding.SymbolAt(obj)
			switch {
			case isFrameworkConstructor(sym, s.framework):
				return s.framework.Constructor, staticMembers[n.Text]
			case sym != nil:
				if o := initializerObject(sym); o != nil {
					return sym.Name, findMember(objectMembers(fs.file, o), n.Text)
				}
			default:
				if g := globals[obj.Text]; g != nil {
					return g.Name, g.Members[n.Text]
				}
			}
		}
	case "pair", "method_definition":
		if p.Parent == nil {
			return "", nil
		}
		if p.Parent.Type == "class_body" {
			return "", findMember(classMembers(fs.file, p.Parent), n.Text)
		}
		if p.Parent.Type == "object" {
			return "", findMember(objectMembers(fs.file, p.Parent), n.Text)
		}
	}
	return "", nil
}

func findMember(ms []*Member, name string) *Member {
	for _, m := range ms {
		if m.Name == name {
			return m
		}
	}
	return nil
}
