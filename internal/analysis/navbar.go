package analysis

import (
	"github.com/sandersn/vetur/internal/ast"
)

type NavigationBarItem struct {
	Text       string
	Kind       string
	Spans      []TextSpan
	ChildItems []NavigationBarItem
	Indent     int
}

// NavigationBarItems returns the outline of fileName: a root script item
// holding the top-level declarations, followed by every item that has
// children, each repeated at the top level with its nesting depth.
func (s *Service) NavigationBarItems(fileName string) []NavigationBarItem {
	fs := s.state(fileName)
	if fs == nil {
		return nil
	}
	sf := fs.file
	root := NavigationBarItem{
		Text:       "<global>",
		Kind:       KindScript,
		Spans:      []TextSpan{{Start: 0, Length: len(sf.Text)}},
		ChildItems: statementItems(sf, sf.Root.Children, false),
	}
	out := []NavigationBarItem{root}
	var flatten func(items []NavigationBarItem, indent int)
	flatten = func(items []NavigationBarItem, indent int) {
		for _, it := range items {
			if len(it.ChildItems) == 0 {
				continue
			}
			it.Indent = indent
			out = append(out, it)
			flatten(it.ChildItems, indent+1)
		}
	}
	flatten(root.ChildItems, 1)
	return out
}

func item(text, kind string, n *ast.Node, children []NavigationBarItem) NavigationBarItem {
	return NavigationBarItem{Text: text, Kind: kind, Spans: []TextSpan{spanOf(n)}, ChildItems: children}
}

func statementItems(sf *ast.SourceFile, stmts []*ast.Node, local bool) []NavigationBarItem {
	var out []NavigationBarItem
	for _, st := range stmts {
		if !st.Positioned() {
			continue
		}
		out = append(out, declarationItems(sf, st, local)...)
	}
	return out
}

func declarationItems(sf *ast.SourceFile, n *ast.Node, local bool) []NavigationBarItem {
	name := func() string {
		if c := n.Child("name"); c != nil {
			return c.Text
		}
		return ""
	}
	switch n.Type {
	case "function_declaration", "generator_function_declaration":
		kind := KindFunction
		if local {
			kind = KindLocalFunction
		}
		return []NavigationBarItem{item(name(), kind, n, bodyItems(sf, n))}
	case "class_declaration", "abstract_class_declaration", "class":
		if name() == "" {
			return nil
		}
		return []NavigationBarItem{item(name(), KindClass, n, classItems(sf, n))}
	case "lexical_declaration", "variable_declaration":
		kind := KindVariable
		if k := n.Child("kind"); k != nil && (k.Text == "const" || k.Text == "let") {
			kind = k.Text
		}
		var out []NavigationBarItem
		for _, d := range n.Children {
			id := d.Child("name")
			if d.Type != "variable_declarator" || id == nil || id.Type != "identifier" {
				continue
			}
			out = append(out, valueItem(sf, id.Text, kind, d, d.Child("value")))
		}
		return out
	case "export_statement":
		if n.FirstOfType("default") != nil {
			if v := n.Child("value"); v != nil && v.Positioned() {
				return []NavigationBarItem{valueItem(sf, "default", KindConst, v, v)}
			}
		}
		if d := n.Child("declaration"); d != nil {
			return declarationItems(sf, d, local)
		}
	case "interface_declaration":
		return []NavigationBarItem{item(name(), KindInterface, n, interfaceItems(n))}
	case "type_alias_declaration":
		return []NavigationBarItem{item(name(), KindType, n, nil)}
	case "enum_declaration":
		var members []NavigationBarItem
		if body := n.Child("body"); body != nil {
			for _, c := range body.Children {
				key := c
				if c.Type == "enum_assignment" {
					key = c.Child("name")
				}
				if text, ok := KeyName(key); ok {
					members = append(members, item(text, KindEnumMember, c, nil))
				}
			}
		}
		return []NavigationBarItem{item(name(), KindEnum, n, members)}
	case "internal_module", "module":
		var children []NavigationBarItem
		if body := n.Child("body"); body != nil {
			children = statementItems(sf, body.Children, false)
		}
		return []NavigationBarItem{item(name(), KindModule, n, children)}
	case "expression_statement":
		// Bare framework instances, as in `new Vue({...})`.
		for _, c := range n.Children {
			if c.Type == "new_expression" {
				if obj := optionsObject(c); obj != nil {
					return objectItems(sf, obj)
				}
			}
		}
	}
	return nil
}

// valueItem builds the item of a named value, looking through function and
// object initializers for children.
func valueItem(sf *ast.SourceFile, text, kind string, n, value *ast.Node) NavigationBarItem {
	if value == nil {
		return item(text, kind, n, nil)
	}
	switch {
	case isFunctionLike(value):
		return item(text, KindFunction, n, bodyItems(sf, value))
	case value.Type == "object":
		return item(text, kind, n, objectItems(sf, value))
	case value.Type == "new_expression":
		if obj := optionsObject(value); obj != nil {
			return item(text, kind, n, objectItems(sf, obj))
		}
	case value.Type == "class":
		return item(text, KindClass, n, classItems(sf, value))
	}
	return item(text, kind, n, nil)
}

func optionsObject(newExpr *ast.Node) *ast.Node {
	if args := newExpr.Child("arguments"); args != nil {
		return args.FirstOfType("object")
	}
	return nil
}

func bodyItems(sf *ast.SourceFile, fn *ast.Node) []NavigationBarItem {
	body := fn.Child("body")
	if body == nil || body.Type != "statement_block" {
		return nil
	}
	var out []NavigationBarItem
	for _, st := range body.Children {
		switch st.Type {
		case "function_declaration", "generator_function_declaration", "class_declaration":
			out = append(out, declarationItems(sf, st, true)...)
		}
	}
	return out
}

func objectItems(sf *ast.SourceFile, obj *ast.Node) []NavigationBarItem {
	var out []NavigationBarItem
	for _, c := range obj.Children {
		switch c.Type {
		case "pair":
			text, ok := KeyName(c.Child("key"))
			if !ok {
				continue
			}
			out = append(out, valueItem(sf, text, KindProperty, c, c.Child("value")))
		case "method_definition":
			if text, ok := KeyName(c.Child("name")); ok {
				out = append(out, item(text, methodKind(c), c, bodyItems(sf, c)))
			}
		case "shorthand_property_identifier":
			out = append(out, item(c.Text, KindProperty, c, nil))
		}
	}
	for i := range out {
		if out[i].Kind == KindFunction {
			out[i].Kind = KindMethod
		}
	}
	return out
}

func methodKind(m *ast.Node) string {
	switch {
	case m.FirstOfType("get") != nil:
		return KindGetter
	case m.FirstOfType("set") != nil:
		return KindSetter
	}
	return KindMethod
}

func classItems(sf *ast.SourceFile, cls *ast.Node) []NavigationBarItem {
	body := cls.Child("body")
	if body == nil {
		return nil
	}
	var out []NavigationBarItem
	for _, c := range body.Children {
		switch c.Type {
		case "method_definition":
			text, ok := KeyName(c.Child("name"))
			if !ok {
				continue
			}
			kind := methodKind(c)
			if text == "constructor" {
				kind = KindConstructor
			}
			out = append(out, item(text, kind, c, nil))
		case "field_definition", "public_field_definition":
			key := c.Child("property")
			if key == nil {
				key = c.Child("name")
			}
			if text, ok := KeyName(key); ok {
				out = append(out, item(text, KindProperty, c, nil))
			}
		}
	}
	return out
}

func interfaceItems(n *ast.Node) []NavigationBarItem {
	body := n.Child("body")
	if body == nil {
		return nil
	}
	var out []NavigationBarItem
	for _, c := range body.Children {
		switch c.Type {
		case "property_signature":
			if text, ok := KeyName(c.Child("name")); ok {
				out = append(out, item(text, KindProperty, c, nil))
			}
		case "method_signature":
			if text, ok := KeyName(c.Child("name")); ok {
				out = append(out, item(text, KindMethod, c, nil))
			}
		}
	}
	return out
}
