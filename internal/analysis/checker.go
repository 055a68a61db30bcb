package analysis

import (
	"fmt"
	"sort"

	"github.com/sandersn/vetur/internal/ast"
)

// check computes the semantic diagnostics of a bound file. Nodes without a
// position never carry a diagnostic.
func check(fs *fileState) []ast.Diagnostic {
	b := fs.binding
	diags := append([]ast.Diagnostic(nil), b.Diagnostics...)

	for i, imp := range b.Imports {
		if !imp.Source.Positioned() {
			continue
		}
		if i < len(fs.resolved) && fs.resolved[i] != nil {
			continue
		}
		diags = append(diags, ast.Diagnostic{
			FileName: b.File.FileName,
			Start:    imp.Source.Pos,
			Length:   imp.Source.Len(),
			Code:     2307,
			Category: ast.CategoryError,
			Message:  fmt.Sprintf("Cannot find module '%s'.", imp.Module),
		})
	}

	if len(fs.instances) > 0 {
		ast.Walk(b.File.Root, func(n *ast.Node) bool {
			if n.Type != "member_expression" {
				return true
			}
			obj, prop := n.Child("object"), n.Child("property")
			if obj == nil || prop == nil || obj.Type != "this" || prop.Type != "property_identifier" || !prop.Positioned() {
				return true
			}
			inst := instanceAtNode(fs, obj)
			if inst == nil || inst.Open || inst.Lookup(prop.Text) != nil {
				return true
			}
			diags = append(diags, ast.Diagnostic{
				FileName: b.File.FileName,
				Start:    prop.Pos,
				Length:   prop.Len(),
				Code:     2339,
				Category: ast.CategoryError,
				Message:  fmt.Sprintf("Property '%s' does not exist on type '%s'.", prop.Text, inst.Type),
			})
			return true
		})
	}

	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Start < diags[j].Start })
	return diags
}
