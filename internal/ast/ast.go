// Package ast is the syntax tree shared by the parser, the source
// interceptor and the analysis service.
//
// Node types use the tree-sitter grammar vocabulary ("program",
// "export_statement", "object", "new_expression", ...). Children keep the
// grammar field name they were attached under, so ast.Node.Child("value")
// corresponds to tree-sitter's ChildByFieldName("value").
package ast

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

type NodeFlags uint8

const (
	// FlagSynthesized marks nodes that do not come from the parsed text.
	FlagSynthesized NodeFlags = 1 << iota
	// FlagNoPosition marks nodes that take no part in the coordinate space.
	// Position-based lookups never return them.
	FlagNoPosition
)

type Node struct {
	Type     string
	Field    string
	Pos      int
	End      int
	Text     string
	Flags    NodeFlags
	Parent   *Node
	Children []*Node
}

func (n *Node) Positioned() bool { return n.Flags&FlagNoPosition == 0 }

func (n *Node) Synthesized() bool { return n.Flags&FlagSynthesized != 0 }

func (n *Node) Len() int { return n.End - n.Pos }

// Contains reports whether offset lies in [Pos, End).
func (n *Node) Contains(offset int) bool {
	return n.Positioned() && n.Pos <= offset && offset < n.End
}

// Child returns the first child attached under field.
func (n *Node) Child(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenOf returns every child attached under field.
func (n *Node) ChildrenOf(field string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// FirstOfType returns the first direct child of the given type.
func (n *Node) FirstOfType(typ string) *Node {
	for _, c := range n.Children {
		if c.Type == typ {
			return c
		}
	}
	return nil
}

// ReplaceChild swaps old for replacement, which inherits old's field.
func (n *Node) ReplaceChild(old, replacement *Node) bool {
	for i, c := range n.Children {
		if c == old {
			replacement.Field = old.Field
			replacement.Parent = n
			n.Children[i] = replacement
			return true
		}
	}
	return false
}

// InsertChild inserts c at index i.
func (n *Node) InsertChild(i int, c *Node) {
	c.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = c
}

// Append adds c as the last child.
func (n *Node) Append(c *Node) *Node {
	c.Parent = n
	n.Children = append(n.Children, c)
	return n
}

// Ancestor returns the nearest proper ancestor whose type is one of types.
func (n *Node) Ancestor(types ...string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, t := range types {
			if p.Type == t {
				return p
			}
		}
	}
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s[%d,%d)", n.Type, n.Pos, n.End)
}

// NewSynthetic creates a synthesized node without a position.
func NewSynthetic(typ, text string, children ...*Node) *Node {
	n := &Node{Type: typ, Text: text, Flags: FlagSynthesized | FlagNoPosition}
	for _, c := range children {
		n.Append(c)
	}
	return n
}

// Token is a leaf of the parse: punctuation, keywords, operators,
// identifiers, literals and comments.
type Token struct {
	Type   string
	Pos    int
	End    int
	Parent *Node
}

type DiagnosticCategory int

const (
	CategoryError DiagnosticCategory = iota
	CategoryWarning
	CategorySuggestion
)

// Diagnostic is a message attached to a span of a source file.
type Diagnostic struct {
	FileName string
	Start    int
	Length   int
	Code     int
	Category DiagnosticCategory
	Message  string
}

// SourceFile is the parsed (and possibly patched) representation of one
// script.
type SourceFile struct {
	FileName         string
	Version          string
	Lang             string
	Text             string
	Root             *Node
	Tokens           []Token
	ParseDiagnostics []Diagnostic

	// Tree is the tree-sitter tree the AST was built from, kept for
	// incremental reparsing.
	Tree *sitter.Tree
}

// Statements returns the top-level statements, skipping comments.
func (sf *SourceFile) Statements() []*Node {
	var out []*Node
	for _, c := range sf.Root.Children {
		if c.Type != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// Content returns the source text covered by n, or n.Text for nodes without
// a position.
func (sf *SourceFile) Content(n *Node) string {
	if !n.Positioned() || n.End > len(sf.Text) {
		return n.Text
	}
	return sf.Text[n.Pos:n.End]
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// NodeAt returns the deepest positioned node containing offset. When no child
// contains offset, a child ending exactly at offset is preferred so a cursor
// placed right after a word still finds it.
func NodeAt(root *Node, offset int) *Node {
	n := root
	for {
		var next, touching *Node
		for _, c := range n.Children {
			if !c.Positioned() {
				continue
			}
			if c.Pos <= offset && offset < c.End {
				next = c
				break
			}
			if c.End == offset && c.Len() > 0 {
				touching = c
			}
		}
		if next == nil {
			next = touching
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// Dump renders n as an s-expression. Synthesized nodes are marked with '*'
// and unpositioned nodes print without a span.
func Dump(n *Node) string {
	var b strings.Builder
	dump(&b, n)
	return b.String()
}

func dump(b *strings.Builder, n *Node) {
	b.WriteByte('(')
	if n.Field != "" {
		b.WriteString(n.Field)
		b.WriteByte(':')
	}
	b.WriteString(n.Type)
	if n.Synthesized() {
		b.WriteByte('*')
	}
	if n.Positioned() {
		fmt.Fprintf(b, " %d-%d", n.Pos, n.End)
	}
	if len(n.Children) == 0 && n.Text != "" {
		fmt.Fprintf(b, " %q", n.Text)
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		dump(b, c)
	}
	b.WriteByte(')')
}
