package analysis

import (
	"strings"

	"github.com/sandersn/vetur/internal/ast"
)

// elementKind maps a symbol to the kind reported by completions, quick info
// and navigation items.
func elementKind(sym *Symbol) string {
	local := sym.Scope != nil && sym.Scope.Kind != ScopeModule
	switch sym.Kind {
	case SymbolVar:
		if local {
			return KindLocalVariable
		}
		return KindVariable
	case SymbolLet:
		return KindLet
	case SymbolConst:
		return KindConst
	case SymbolFunction:
		if local {
			return KindLocalFunction
		}
		return KindFunction
	case SymbolClass:
		return KindClass
	case SymbolParameter:
		return KindParameter
	case SymbolImport:
		return KindAlias
	case SymbolInterface:
		return KindInterface
	case SymbolTypeAlias:
		return KindType
	case SymbolEnum:
		return KindEnum
	case SymbolModule:
		return KindModule
	}
	return KindUnknown
}

func displaySymbol(sf *ast.SourceFile, sym *Symbol) []SymbolDisplayPart {
	var b partsBuilder
	decl := sym.Decl()
	switch sym.Kind {
	case SymbolVar, SymbolLet, SymbolConst:
		kw := map[SymbolKind]string{SymbolVar: "var", SymbolLet: "let", SymbolConst: "const"}[sym.Kind]
		b.keyword(kw).space().add(PartLocalName, sym.Name)
		if decl.Node.Type == "variable_declarator" && decl.Name.Parent == decl.Node {
			if t := decl.Node.Child("type"); t != nil {
				b.text(sf.Content(t))
			} else if v := decl.Node.Child("value"); v != nil {
				b.punct(":").space().text(literalType(sf, v, sym.Kind != SymbolConst))
			}
		}
	case SymbolParameter:
		b.punct("(").text("parameter").punct(")").space().add(PartParameterName, sym.Name)
		if t := decl.Node.Child("type"); t != nil && decl.Node.Type == "required_parameter" {
			b.text(sf.Content(t))
		}
	case SymbolFunction:
		b.keyword("function").space().add(PartFunctionName, sym.Name)
		signatureParts(&b, sf, decl.Node)
	case SymbolClass:
		b.keyword("class").space().add(PartClassName, sym.Name)
	case SymbolImport:
		b.keyword("import").space().add(PartAliasName, sym.Name)
		if sym.Import != nil {
			b.space().keyword("from").space().add(PartStringLiteral, "'"+sym.Import.Module+"'")
		}
	case SymbolInterface:
		b.keyword("interface").space().add(PartClassName, sym.Name)
	case SymbolTypeAlias:
		b.keyword("type").space().add(PartClassName, sym.Name)
	case SymbolEnum:
		b.keyword("enum").space().add(PartClassName, sym.Name)
	case SymbolModule:
		b.keyword("namespace").space().add(PartModuleName, sym.Name)
	}
	return b
}

func signatureParts(b *partsBuilder, sf *ast.SourceFile, fn *ast.Node) {
	b.punct("(")
	for i, p := range paramNames(sf, fn) {
		if i > 0 {
			b.punct(",").space()
		}
		b.add(PartParameterName, p)
	}
	b.punct(")")
	if rt := fn.Child("return_type"); rt != nil {
		b.text(sf.Content(rt))
	}
}

func displayMember(sf *ast.SourceFile, typ string, m *Member) []SymbolDisplayPart {
	var b partsBuilder
	if m.Kind == KindMethod {
		b.punct("(").text("method").punct(")").space()
	} else {
		b.punct("(").text("property").punct(")").space()
	}
	if typ != "" {
		b.add(PartClassName, typ).punct(".")
	}
	if m.Kind == KindMethod {
		b.add(PartMethodName, m.Name).punct("(")
		for i, p := range m.Params {
			if i > 0 {
				b.punct(",").space()
			}
			b.add(PartParameterName, p)
		}
		b.punct(")")
		return b
	}
	b.add(PartPropertyName, m.Name)
	if m.Node != nil && m.Node.Parent != nil && m.Node.Parent.Type == "pair" {
		if v := m.Node.Parent.Child("value"); v != nil {
			b.punct(":").space().text(literalType(sf, v, true))
		}
	}
	return b
}

func displayGlobal(g *global) []SymbolDisplayPart {
	var b partsBuilder
	if g.Kind == KindFunction {
		b.keyword("function").space().add(PartFunctionName, g.Name).punct("(")
		for i, p := range g.Params {
			if i > 0 {
				b.punct(",").space()
			}
			b.add(PartParameterName, p)
		}
		b.punct(")")
		return b
	}
	b.keyword("var").space().add(PartLocalName, g.Name)
	if g.Type != "" {
		b.punct(":").space().text(g.Type)
	}
	return b
}

// literalType renders the type of a simple initializer. Literal types are
// widened for mutable bindings.
func literalType(sf *ast.SourceFile, v *ast.Node, widen bool) string {
	switch v.Type {
	case "number":
		if widen {
			return "number"
		}
		return v.Text
	case "string":
		if widen {
			return "string"
		}
		return `"` + Unquote(v.Text) + `"`
	case "template_string":
		return "string"
	case "true", "false":
		if widen {
			return "boolean"
		}
		return v.Type
	case "null":
		return "null"
	case "array":
		return "any[]"
	case "object":
		return "{ ... }"
	case "regex":
		return "RegExp"
	case "new_expression":
		if c := v.Child("constructor"); c != nil && c.Type == "identifier" {
			return c.Text
		}
	case "arrow_function", "function_expression", "function":
		return "(" + strings.Join(paramNames(sf, v), ", ") + ") => any"
	}
	return "any"
}

var docOwners = map[string]bool{
	"variable_declarator":  true,
	"lexical_declaration":  true,
	"variable_declaration": true,
	"export_statement":     true,
	"pair":                 true,
	"function_declaration": true,
	"class_declaration":    true,
	"method_definition":    true,
}

// jsDoc returns the description of the JSDoc comment directly preceding the
// statement or member that declares n.
func jsDoc(sf *ast.SourceFile, n *ast.Node) []SymbolDisplayPart {
	target := n
	for target.Parent != nil && docOwners[target.Parent.Type] {
		target = target.Parent
	}
	if target.Parent == nil || !target.Positioned() {
		return nil
	}
	var prev *ast.Node
	for _, c := range target.Parent.Children {
		if c == target {
			break
		}
		if c.Positioned() {
			prev = c
		}
	}
	if prev == nil || prev.Type != "comment" || !strings.HasPrefix(prev.Text, "/**") {
		return nil
	}
	if strings.TrimSpace(sf.Text[prev.End:target.Pos]) != "" {
		return nil
	}
	doc := parseJSDoc(prev.Text)
	if doc == "" {
		return nil
	}
	return []SymbolDisplayPart{{Text: doc, Kind: PartText}}
}

func parseJSDoc(comment string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(comment, "/**"), "*/")
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if strings.HasPrefix(line, "@") {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
