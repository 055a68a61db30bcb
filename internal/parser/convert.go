package parser

import (
	"fmt"

	"github.com/sandersn/vetur/internal/ast"
	"github.com/sandersn/vetur/internal/sitteradapter"

	sitter "github.com/smacker/go-tree-sitter"
)

// atomic node types are kept as leaves; their inner structure is never
// needed and their text must not be re-indented.
var atomic = map[string]bool{
	"string":  true,
	"comment": true,
	"regex":   true,
	"number":  true,
}

// Anonymous tokens that carry meaning for the binder and the checker are kept
// as nodes even though the grammar does not name them.
var keptAnonymous = map[string]bool{
	"default": true,
	"async":   true,
	"static":  true,
	"get":     true,
	"set":     true,
	"*":       true,
}

type builder struct {
	src      []byte
	fileName string
	tokens   []ast.Token
	missing  []ast.Diagnostic
}

func (b *builder) convert(root *sitter.Node) *ast.Node {
	// The program node spans the whole file, leading trivia included.
	n := &ast.Node{Type: root.Type(), Pos: 0, End: len(b.src)}
	c := sitter.NewTreeCursor(root)
	defer c.Close()
	b.children(c, n)
	return n
}

func (b *builder) children(c *sitter.TreeCursor, parent *ast.Node) {
	if !c.GoToFirstChild() {
		return
	}
	for {
		b.visit(c, parent)
		if !c.GoToNextSibling() {
			break
		}
	}
	c.GoToParent()
}

func (b *builder) visit(c *sitter.TreeCursor, parent *ast.Node) {
	sn := c.CurrentNode()
	typ := sn.Type()
	pos, end := int(sn.StartByte()), int(sn.EndByte())

	if sn.IsMissing() {
		b.missing = append(b.missing, ast.Diagnostic{
			FileName: b.fileName,
			Start:    pos,
			Code:     1005,
			Category: ast.CategoryError,
			Message:  fmt.Sprintf("'%s' expected.", missingText(typ)),
		})
		return
	}

	if !sn.IsNamed() {
		if end > pos {
			b.tokens = append(b.tokens, ast.Token{Type: typ, Pos: pos, End: end, Parent: parent})
		}
		field := c.CurrentFieldName()
		if field != "" || keptAnonymous[typ] {
			parent.Append(&ast.Node{Type: typ, Field: field, Pos: pos, End: end, Text: typ})
		}
		return
	}

	n := &ast.Node{Type: typ, Field: c.CurrentFieldName(), Pos: pos, End: end}
	parent.Append(n)
	if atomic[typ] || sn.ChildCount() == 0 {
		n.Text = sn.Content(b.src)
		b.tokens = append(b.tokens, ast.Token{Type: typ, Pos: pos, End: end, Parent: parent})
		return
	}
	b.children(c, n)
}

// missingText names what a MISSING node stands for. Named missing nodes are
// usually identifiers.
func missingText(typ string) string {
	switch typ {
	case "identifier", "property_identifier":
		return "Identifier"
	}
	return typ
}

func editInput(oldText, newText string, change Change) sitter.EditInput {
	return sitteradapter.CreateTSEdit(oldText, newText, change.Start, change.OldEnd, change.NewEnd)
}
