package analysis

import (
	"github.com/sandersn/vetur/internal/ast"
)

type SignatureHelpParameter struct {
	Name          string
	DisplayParts  []SymbolDisplayPart
	Documentation []SymbolDisplayPart
}

type SignatureHelpItem struct {
	PrefixDisplayParts    []SymbolDisplayPart
	SuffixDisplayParts    []SymbolDisplayPart
	SeparatorDisplayParts []SymbolDisplayPart
	Parameters            []SignatureHelpParameter
	Documentation         []SymbolDisplayPart
}

type SignatureHelpItems struct {
	Items             []SignatureHelpItem
	ApplicableSpan    TextSpan
	SelectedItemIndex int
	ArgumentIndex     int
}

// SignatureHelpItems describes the call whose argument list contains offset.
func (s *Service) SignatureHelpItems(fileName string, offset int) *SignatureHelpItems {
	fs := s.bound(fileName)
	if fs == nil {
		return nil
	}
	call, args := enclosingCall(fs.file, offset)
	if call == nil {
		return nil
	}
	callee := call.Child("function")
	if callee == nil {
		callee = call.Child("constructor")
	}
	if callee == nil {
		return nil
	}
	name, params, doc := s.calleeSignature(fs, callee)
	if name == "" {
		return nil
	}
	var prefix partsBuilder
	if call.Type == "new_expression" {
		prefix.keyword("new").space()
	}
	prefix.add(PartFunctionName, name).punct("(")
	item := SignatureHelpItem{
		PrefixDisplayParts:    prefix,
		SuffixDisplayParts:    []SymbolDisplayPart{{Text: ")", Kind: PartPunctuation}},
		SeparatorDisplayParts: []SymbolDisplayPart{{Text: ",", Kind: PartPunctuation}, {Text: " ", Kind: PartSpace}},
		Documentation:         doc,
	}
	for _, p := range params {
		item.Parameters = append(item.Parameters, SignatureHelpParameter{
			Name:         p,
			DisplayParts: []SymbolDisplayPart{{Text: p, Kind: PartParameterName}},
		})
	}
	return &SignatureHelpItems{
		Items:          []SignatureHelpItem{item},
		ApplicableSpan: TextSpan{Start: args.Pos + 1, Length: max(0, args.End-args.Pos-2)},
		ArgumentIndex:  argumentIndex(fs.file, args, offset),
	}
}

// enclosingCall finds the innermost call or new expression whose argument
// list contains offset, between its parentheses.
func enclosingCall(sf *ast.SourceFile, offset int) (*ast.Node, *ast.Node) {
	for n := ast.NodeAt(sf.Root, offset); n != nil; n = n.Parent {
		if n.Type != "arguments" || !n.Positioned() || n.Parent == nil {
			continue
		}
		closed := n.End > n.Pos && sf.Text[n.End-1] == ')'
		if offset > n.Pos && (offset < n.End || !closed) {
			switch n.Parent.Type {
			case "call_expression", "new_expression":
				return n.Parent, n
			}
		}
	}
	return nil, nil
}

// argumentIndex counts the commas of args before offset.
func argumentIndex(sf *ast.SourceFile, args *ast.Node, offset int) int {
	index := 0
	for _, t := range sf.Tokens {
		if t.Pos >= offset {
			break
		}
		if t.Type == "," && t.Parent == args {
			index++
		}
	}
	return index
}

func (s *Service) calleeSignature(fs *fileState, callee *ast.Node) (string, []string, []SymbolDisplayPart) {
	sf := fs.file
	switch callee.Type {
	case "identifier":
		if sym := fs.binding.SymbolAt(callee); sym != nil {
			d := sym.Decl()
			switch {
			case sym.Kind == SymbolFunction:
				return sym.Name, paramNames(sf, d.Node), jsDoc(sf, d.Name)
			case sym.Kind == SymbolClass:
				return sym.Name, constructorParams(sf, d.Node), jsDoc(sf, d.Name)
			case isFrameworkConstructor(sym, s.framework):
				return sym.Name, []string{"options?"}, nil
			case d.Node.Type == "variable_declarator":
				if v := d.Node.Child("value"); v != nil && isFunctionLike(v) {
					return sym.Name, paramNames(sf, v), jsDoc(sf, d.Name)
				}
			}
			return "", nil, nil
		}
		if g := globals[callee.Text]; g != nil && (g.Kind == KindFunction || g.Params != nil) {
			return g.Name, g.Params, docParts(g.Doc)
		}
	case "member_expression":
		prop := callee.Child("property")
		if prop == nil {
			return "", nil, nil
		}
		if _, m := s.memberAt(fs, prop); m != nil && m.Kind == KindMethod {
			return m.Name, m.Params, memberDoc(sf, m)
		}
	}
	return "", nil, nil
}

func constructorParams(sf *ast.SourceFile, cls *ast.Node) []string {
	body := cls.Child("body")
	if body == nil {
		return nil
	}
	for _, c := range body.Children {
		if c.Type == "method_definition" {
			if name, _ := KeyName(c.Child("name")); name == "constructor" {
				return paramNames(sf, c)
			}
		}
	}
	return nil
}

func docParts(doc string) []SymbolDisplayPart {
	if doc == "" {
		return nil
	}
	return []SymbolDisplayPart{{Text: doc, Kind: PartText}}
}
