package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sandersn/vetur/internal/ast"
)

type SymbolKind int

const (
	SymbolVar SymbolKind = iota
	SymbolLet
	SymbolConst
	SymbolFunction
	SymbolClass
	SymbolParameter
	SymbolImport
	SymbolInterface
	SymbolTypeAlias
	SymbolEnum
	SymbolModule
)

func (k SymbolKind) blockScoped() bool { return k == SymbolLet || k == SymbolConst }

func (k SymbolKind) unique() bool {
	switch k {
	case SymbolClass, SymbolImport, SymbolEnum, SymbolTypeAlias:
		return true
	}
	return false
}

// Import is an import binding: the local name refers to Imported of Module.
// Imported is "default", "*" or an exported name.
type Import struct {
	Module   string
	Imported string
	Source   *ast.Node
}

type Declaration struct {
	Name *ast.Node
	Node *ast.Node
	Kind SymbolKind
}

type Symbol struct {
	Name        string
	Kind        SymbolKind
	Decls       []*Declaration
	Import      *Import
	Synthesized bool
	Scope       *Scope
}

func (s *Symbol) Decl() *Declaration { return s.Decls[0] }

type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeClass
)

type Scope struct {
	Kind    ScopeKind
	Node    *ast.Node
	Parent  *Scope
	Symbols map[string]*Symbol
}

func newScope(kind ScopeKind, n *ast.Node, parent *Scope) *Scope {
	return &Scope{Kind: kind, Node: n, Parent: parent, Symbols: make(map[string]*Symbol)}
}

// Lookup finds name in s or its ancestors.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.Symbols[name]; ok {
			return sym
		}
	}
	return nil
}

func (s *Scope) functionScope() *Scope {
	sc := s
	for sc.Kind != ScopeFunction && sc.Kind != ScopeModule {
		sc = sc.Parent
	}
	return sc
}

// ModuleImport is one module specifier of an import or re-export statement.
type ModuleImport struct {
	Module    string
	Source    *ast.Node
	Statement *ast.Node
}

// Export is one exported name. Symbol is nil for anonymous default exports,
// in which case Node is the exported expression.
type Export struct {
	Name   string
	Symbol *Symbol
	Node   *ast.Node
	ref    *ast.Node
}

// Binding is the result of binding one source file.
type Binding struct {
	File        *ast.SourceFile
	Root        *Scope
	Imports     []*ModuleImport
	Exports     map[string]*Export
	Diagnostics []ast.Diagnostic

	scopes map[*ast.Node]*Scope
	decls  map[*ast.Node]*Symbol
	refs   map[*ast.Node]*Symbol
}

// SymbolAt returns the symbol an identifier declares or refers to.
func (b *Binding) SymbolAt(n *ast.Node) *Symbol {
	if sym, ok := b.decls[n]; ok {
		return sym
	}
	return b.refs[n]
}

// IsDeclaration reports whether n is the name of a declaration.
func (b *Binding) IsDeclaration(n *ast.Node) bool {
	_, ok := b.decls[n]
	return ok
}

// ScopeAt returns the innermost scope enclosing n.
func (b *Binding) ScopeAt(n *ast.Node) *Scope {
	for p := n; p != nil; p = p.Parent {
		if s, ok := b.scopes[p]; ok {
			return s
		}
	}
	return b.Root
}

// Occurrences returns the declaration names and references of sym in this
// file, in source order.
func (b *Binding) Occurrences(sym *Symbol) []*ast.Node {
	var out []*ast.Node
	for n, s := range b.decls {
		if s == sym && n.Positioned() {
			out = append(out, n)
		}
	}
	for n, s := range b.refs {
		if s == sym && n.Positioned() {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

type binder struct {
	*Binding
	conflicts map[*Symbol]int
}

// Bind builds scopes, declarations and references for sf.
func Bind(sf *ast.SourceFile) *Binding {
	b := &binder{
		Binding: &Binding{
			File:    sf,
			Exports: make(map[string]*Export),
			scopes:  make(map[*ast.Node]*Scope),
			decls:   make(map[*ast.Node]*Symbol),
			refs:    make(map[*ast.Node]*Symbol),
		},
		conflicts: make(map[*Symbol]int),
	}
	b.Root = newScope(ScopeModule, sf.Root, nil)
	b.scopes[sf.Root] = b.Root
	b.children(sf.Root, b.Root)
	b.resolve(sf.Root)
	for _, e := range b.Exports {
		if e.Symbol == nil && e.ref != nil {
			e.Symbol = b.refs[e.ref]
		}
	}
	b.reportConflicts()
	return b.Binding
}

func (b *binder) children(n *ast.Node, scope *Scope) {
	for _, c := range n.Children {
		b.visit(c, scope)
	}
}

func (b *binder) visit(n *ast.Node, scope *Scope) {
	switch n.Type {
	case "import_statement":
		b.bindImport(n, scope)
	case "export_statement":
		b.bindExport(n, scope)
	case "function_declaration", "generator_function_declaration":
		if name := n.Child("name"); name != nil {
			b.declare(scope, name, SymbolFunction, n)
		}
		b.bindFunction(n, scope)
	case "function_expression", "function", "generator_function", "arrow_function", "method_definition":
		b.bindFunction(n, scope)
	case "class_declaration", "abstract_class_declaration":
		if name := n.Child("name"); name != nil {
			b.declare(scope, name, SymbolClass, n)
		}
		b.bindClass(n, scope)
	case "class":
		b.bindClass(n, scope)
	case "lexical_declaration", "variable_declaration":
		kind, target := SymbolVar, scope.functionScope()
		if k := n.Child("kind"); k != nil && k.Text == "const" {
			kind, target = SymbolConst, scope
		} else if k != nil && k.Text == "let" {
			kind, target = SymbolLet, scope
		}
		for _, d := range n.Children {
			if d.Type != "variable_declarator" {
				continue
			}
			if name := d.Child("name"); name != nil {
				b.declarePattern(target, name, kind, d, scope)
			}
			if v := d.Child("value"); v != nil {
				b.visit(v, scope)
			}
			if t := d.Child("type"); t != nil {
				b.visit(t, scope)
			}
		}
	case "statement_block":
		inner := newScope(ScopeBlock, n, scope)
		b.scopes[n] = inner
		b.children(n, inner)
	case "for_statement", "for_in_statement":
		inner := newScope(ScopeBlock, n, scope)
		b.scopes[n] = inner
		if k := n.Child("kind"); k != nil {
			kind, target := SymbolVar, scope.functionScope()
			switch k.Text {
			case "let":
				kind, target = SymbolLet, inner
			case "const":
				kind, target = SymbolConst, inner
			}
			if left := n.Child("left"); left != nil {
				b.declarePattern(target, left, kind, n, inner)
			}
		}
		b.children(n, inner)
	case "catch_clause":
		inner := newScope(ScopeBlock, n, scope)
		b.scopes[n] = inner
		if p := n.Child("parameter"); p != nil {
			b.declarePattern(inner, p, SymbolLet, n, inner)
		}
		if body := n.Child("body"); body != nil {
			b.children(body, inner)
		}
	case "interface_declaration":
		b.declareNamed(n, scope, SymbolInterface)
	case "type_alias_declaration":
		b.declareNamed(n, scope, SymbolTypeAlias)
	case "enum_declaration":
		b.declareNamed(n, scope, SymbolEnum)
	case "internal_module", "module":
		b.declareNamed(n, scope, SymbolModule)
	default:
		b.children(n, scope)
	}
}

func (b *binder) declareNamed(n *ast.Node, scope *Scope, kind SymbolKind) {
	if name := n.Child("name"); name != nil && (name.Type == "identifier" || name.Type == "type_identifier") {
		b.declare(scope, name, kind, n)
	}
	for _, c := range n.Children {
		if c.Field != "name" {
			b.visit(c, scope)
		}
	}
}

func (b *binder) bindFunction(n *ast.Node, scope *Scope) {
	fn := newScope(ScopeFunction, n, scope)
	b.scopes[n] = fn
	if n.Type != "function_declaration" && n.Type != "generator_function_declaration" && n.Type != "method_definition" {
		if name := n.Child("name"); name != nil && name.Type == "identifier" {
			b.declare(fn, name, SymbolFunction, n)
		}
	}
	if p := n.Child("parameter"); p != nil {
		b.declarePattern(fn, p, SymbolParameter, n, fn)
	}
	if params := n.Child("parameters"); params != nil {
		for _, p := range params.Children {
			b.declarePattern(fn, p, SymbolParameter, p, fn)
		}
	}
	for _, c := range n.Children {
		switch c.Field {
		case "name", "parameter", "parameters":
			continue
		case "body":
			if c.Type == "statement_block" {
				b.children(c, fn)
				continue
			}
		}
		b.visit(c, fn)
	}
}

func (b *binder) bindClass(n *ast.Node, scope *Scope) {
	cls := newScope(ScopeClass, n, scope)
	b.scopes[n] = cls
	if n.Type == "class" {
		if name := n.Child("name"); name != nil {
			b.declare(cls, name, SymbolClass, n)
		}
	}
	for _, c := range n.Children {
		if c.Field != "name" {
			b.visit(c, cls)
		}
	}
}

// declarePattern declares every name bound by a binding pattern. Default
// value expressions are visited in exprScope.
func (b *binder) declarePattern(scope *Scope, p *ast.Node, kind SymbolKind, decl *ast.Node, exprScope *Scope) {
	switch p.Type {
	case "identifier", "shorthand_property_identifier_pattern":
		b.declare(scope, p, kind, decl)
	case "object_pattern", "array_pattern":
		for _, c := range p.Children {
			b.declarePattern(scope, c, kind, decl, exprScope)
		}
	case "pair_pattern":
		if v := p.Child("value"); v != nil {
			b.declarePattern(scope, v, kind, decl, exprScope)
		}
		if k := p.Child("key"); k != nil && k.Type == "computed_property_name" {
			b.visit(k, exprScope)
		}
	case "assignment_pattern", "object_assignment_pattern":
		if l := p.Child("left"); l != nil {
			b.declarePattern(scope, l, kind, decl, exprScope)
		}
		if r := p.Child("right"); r != nil {
			b.visit(r, exprScope)
		}
	case "rest_pattern":
		for _, c := range p.Children {
			b.declarePattern(scope, c, kind, decl, exprScope)
		}
	case "required_parameter", "optional_parameter":
		for _, c := range p.Children {
			switch c.Field {
			case "pattern":
				b.declarePattern(scope, c, kind, decl, exprScope)
			case "value", "type":
				b.visit(c, exprScope)
			}
		}
	}
}

func (b *binder) declare(scope *Scope, name *ast.Node, kind SymbolKind, node *ast.Node) *Symbol {
	text := name.Text
	decl := &Declaration{Name: name, Node: node, Kind: kind}
	sym := scope.Symbols[text]
	switch {
	case sym == nil:
	case sym.Synthesized && !name.Synthesized():
		// A user declaration replaces a synthesized one.
		for _, d := range sym.Decls {
			delete(b.decls, d.Name)
		}
		sym = nil
	case name.Synthesized():
		return sym
	default:
		sym.Decls = append(sym.Decls, decl)
		b.decls[name] = sym
		switch {
		case kind.blockScoped() || sym.Kind.blockScoped():
			b.conflicts[sym] = 2451
		case kind.unique() || sym.Kind.unique():
			if b.conflicts[sym] == 0 {
				b.conflicts[sym] = 2300
			}
		}
		return sym
	}
	sym = &Symbol{
		Name:        text,
		Kind:        kind,
		Decls:       []*Declaration{decl},
		Synthesized: name.Synthesized(),
		Scope:       scope,
	}
	scope.Symbols[text] = sym
	b.decls[name] = sym
	return sym
}

func (b *binder) reportConflicts() {
	for sym, code := range b.conflicts {
		msg := fmt.Sprintf("Cannot redeclare block-scoped variable '%s'.", sym.Name)
		if code == 2300 {
			msg = fmt.Sprintf("Duplicate identifier '%s'.", sym.Name)
		}
		for _, d := range sym.Decls {
			if !d.Name.Positioned() {
				continue
			}
			b.Diagnostics = append(b.Diagnostics, ast.Diagnostic{
				FileName: b.File.FileName,
				Start:    d.Name.Pos,
				Length:   d.Name.Len(),
				Code:     code,
				Category: ast.CategoryError,
				Message:  msg,
			})
		}
	}
	sort.Slice(b.Diagnostics, func(i, j int) bool { return b.Diagnostics[i].Start < b.Diagnostics[j].Start })
}

func (b *binder) bindImport(n *ast.Node, scope *Scope) {
	source := n.Child("source")
	if source == nil {
		return
	}
	module := Unquote(source.Text)
	b.Imports = append(b.Imports, &ModuleImport{Module: module, Source: source, Statement: n})
	clause := n.FirstOfType("import_clause")
	if clause == nil {
		return
	}
	bind := func(local *ast.Node, imported string) {
		sym := b.declare(scope, local, SymbolImport, n)
		if sym.Decl().Name == local {
			sym.Import = &Import{Module: module, Imported: imported, Source: source}
		}
	}
	for _, c := range clause.Children {
		switch c.Type {
		case "identifier":
			bind(c, "default")
		case "namespace_import":
			if id := c.FirstOfType("identifier"); id != nil {
				bind(id, "*")
			}
		case "named_imports":
			for _, spec := range c.Children {
				if spec.Type != "import_specifier" {
					continue
				}
				name := spec.Child("name")
				if name == nil {
					continue
				}
				local := name
				if alias := spec.Child("alias"); alias != nil {
					local = alias
				}
				bind(local, Unquote(name.Text))
			}
		}
	}
}

func (b *binder) bindExport(n *ast.Node, scope *Scope) {
	if source := n.Child("source"); source != nil {
		b.Imports = append(b.Imports, &ModuleImport{Module: Unquote(source.Text), Source: source, Statement: n})
		return
	}
	if n.FirstOfType("default") != nil {
		target := n.Child("declaration")
		if target == nil {
			target = n.Child("value")
		}
		if target == nil {
			return
		}
		b.visit(target, scope)
		e := &Export{Name: "default", Node: target}
		switch {
		case target.Type == "identifier":
			e.ref = target
		case target.Child("name") != nil:
			e.Symbol = b.decls[target.Child("name")]
			e.Node = target.Child("name")
		}
		b.Exports["default"] = e
		return
	}
	if decl := n.Child("declaration"); decl != nil {
		b.visit(decl, scope)
		for _, name := range declaredNames(decl) {
			if sym := b.decls[name]; sym != nil {
				b.Exports[name.Text] = &Export{Name: name.Text, Symbol: sym, Node: name}
			}
		}
		return
	}
	for _, c := range n.Children {
		if c.Type != "export_clause" {
			b.visit(c, scope)
			continue
		}
		for _, spec := range c.Children {
			if spec.Type != "export_specifier" {
				continue
			}
			name := spec.Child("name")
			if name == nil {
				continue
			}
			exported := name.Text
			if alias := spec.Child("alias"); alias != nil {
				exported = alias.Text
			}
			b.Exports[exported] = &Export{Name: exported, Node: name, ref: name}
		}
	}
}

// declaredNames returns the name nodes a declaration statement introduces.
func declaredNames(decl *ast.Node) []*ast.Node {
	if name := decl.Child("name"); name != nil && decl.Type != "lexical_declaration" {
		return []*ast.Node{name}
	}
	var out []*ast.Node
	for _, d := range decl.Children {
		if d.Type != "variable_declarator" {
			continue
		}
		ast.Walk(d.Child("name"), func(n *ast.Node) bool {
			switch n.Type {
			case "identifier", "shorthand_property_identifier_pattern":
				out = append(out, n)
			}
			return n.Field != "value" && n.Field != "right"
		})
	}
	return out
}

func (b *binder) resolve(root *ast.Node) {
	ast.Walk(root, func(n *ast.Node) bool {
		switch n.Type {
		case "identifier", "shorthand_property_identifier", "type_identifier":
		default:
			return true
		}
		if _, ok := b.decls[n]; ok || !isReference(n) {
			return false
		}
		if sym := b.ScopeAt(n).Lookup(n.Text); sym != nil {
			b.refs[n] = sym
		}
		return false
	})
}

// isReference filters identifiers that name something other than a binding in
// scope.
func isReference(n *ast.Node) bool {
	p := n.Parent
	if p == nil {
		return false
	}
	switch p.Type {
	case "import_specifier", "namespace_import", "import_clause":
		return false
	case "export_specifier":
		return n.Field == "name"
	case "statement_identifier", "labeled_statement", "break_statement", "continue_statement":
		return false
	}
	return true
}

// Unquote strips the quotes of a string literal's text.
func Unquote(s string) string {
	if len(s) >= 2 && strings.ContainsRune(`'"`+"`", rune(s[0])) && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
