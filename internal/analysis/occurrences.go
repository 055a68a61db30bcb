package analysis

import (
	"sort"

	"github.com/sandersn/vetur/internal/ast"
)

type OccurrenceEntry struct {
	FileName      string
	TextSpan      TextSpan
	IsWriteAccess bool
}

// OccurrencesAtPosition returns the occurrences in fileName of the name at
// offset.
func (s *Service) OccurrencesAtPosition(fileName string, offset int) []OccurrenceEntry {
	fs := s.bound(fileName)
	if fs == nil {
		return nil
	}
	n := ast.NodeAt(fs.file.Root, offset)
	var nodes []*ast.Node
	switch n.Type {
	case "identifier", "shorthand_property_identifier", "type_identifier", "shorthand_property_identifier_pattern":
		sym := fs.binding.SymbolAt(n)
		if sym == nil {
			return nil
		}
		nodes = fs.binding.Occurrences(sym)
	case "property_identifier":
		nodes = s.memberOccurrences(fs, n)
	default:
		return nil
	}
	var out []OccurrenceEntry
	for _, o := range nodes {
		out = append(out, OccurrenceEntry{
			FileName:      fileName,
			TextSpan:      spanOf(o),
			IsWriteAccess: isWriteAccess(fs.binding, o),
		})
	}
	return out
}

// memberOccurrences collects uses of a framework instance member: its key in
// the options object and every `this.name` sharing that instance.
func (s *Service) memberOccurrences(fs *fileState, n *ast.Node) []*ast.Node {
	owner, m := s.memberAt(fs, n)
	if m == nil || m.Node == nil || owner == "" {
		return []*ast.Node{n}
	}
	var inst *Instance
	for _, i := range fs.instances {
		if i.Members[m.Name] == m {
			inst = i
		}
	}
	if inst == nil {
		return []*ast.Node{n}
	}
	out := []*ast.Node{m.Node}
	ast.Walk(fs.file.Root, func(c *ast.Node) bool {
		if c.Type != "member_expression" {
			return true
		}
		obj, prop := c.Child("object"), c.Child("property")
		if obj != nil && prop != nil && obj.Type == "this" && prop.Text == m.Name && prop.Positioned() &&
			instanceAtNode(fs, obj) == inst {
			out = append(out, prop)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// isWriteAccess reports whether n is written: a declaration with a value, an
// assignment target or an update operand.
func isWriteAccess(b *Binding, n *ast.Node) bool {
	if b.IsDeclaration(n) {
		sym := b.SymbolAt(n)
		for _, d := range sym.Decls {
			if d.Name != n {
				continue
			}
			if d.Node.Type == "variable_declarator" {
				return d.Node.Child("value") != nil || d.Name.Parent != d.Node
			}
			return true
		}
		return true
	}
	child := n
	for p := n.Parent; p != nil; child, p = p, p.Parent {
		switch p.Type {
		case "assignment_expression", "augmented_assignment_expression", "for_in_statement":
			return child.Field == "left"
		case "update_expression":
			return true
		case "member_expression":
			if child.Field == "object" {
				return false
			}
			continue
		case "parenthesized_expression", "object_pattern", "array_pattern", "pair_pattern",
			"rest_pattern", "assignment_pattern", "object_assignment_pattern":
			continue
		}
		return false
	}
	return false
}
