package analysis

import (
	"sort"
	"strings"

	"github.com/sandersn/vetur/internal/ast"
	"github.com/sandersn/vetur/internal/sitteradapter"
)

type IndentStyle int

const (
	IndentStyleNone IndentStyle = iota
	IndentStyleBlock
	IndentStyleSmart
)

// FormatCodeSettings controls FormattingEditsForRange.
type FormatCodeSettings struct {
	// BaseIndentSize is the indentation width of the line holding the start
	// of the range. Deeper lines are indented relative to it.
	BaseIndentSize      int
	IndentSize          int
	TabSize             int
	NewLineCharacter    string
	ConvertTabsToSpaces bool
	IndentStyle         IndentStyle

	InsertSpaceAfterCommaDelimiter                              bool
	InsertSpaceAfterSemicolonInForStatements                    bool
	InsertSpaceBeforeAndAfterBinaryOperators                    bool
	InsertSpaceAfterKeywordsInControlFlowStatements             bool
	InsertSpaceAfterFunctionKeywordForAnonymousFunctions        bool
	InsertSpaceAfterOpeningAndBeforeClosingNonemptyParenthesis  bool
	InsertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets     bool
	InsertSpaceAfterOpeningAndBeforeClosingTemplateStringBraces bool
	InsertSpaceAfterOpeningAndBeforeClosingJsxExpressionBraces  bool
	PlaceOpenBraceOnNewLineForFunctions                         bool
	PlaceOpenBraceOnNewLineForControlBlocks                     bool
}

func DefaultFormatCodeSettings() FormatCodeSettings {
	return FormatCodeSettings{
		IndentSize:          4,
		TabSize:             4,
		NewLineCharacter:    "\n",
		ConvertTabsToSpaces: true,
		IndentStyle:         IndentStyleSmart,

		InsertSpaceAfterCommaDelimiter:                       true,
		InsertSpaceAfterSemicolonInForStatements:             true,
		InsertSpaceBeforeAndAfterBinaryOperators:             true,
		InsertSpaceAfterKeywordsInControlFlowStatements:      true,
		InsertSpaceAfterFunctionKeywordForAnonymousFunctions: true,
	}
}

type TextChange struct {
	Span    TextSpan
	NewText string
}

// FormattingEditsForRange re-indents the lines starting in [start, end],
// trims their trailing whitespace and normalizes the spacing between tokens
// according to settings. Brace placement is left untouched.
func (s *Service) FormattingEditsForRange(fileName string, start, end int, settings FormatCodeSettings) []TextChange {
	fs := s.state(fileName)
	if fs == nil {
		return nil
	}
	if settings.TabSize <= 0 {
		settings.TabSize = 4
	}
	if settings.IndentSize <= 0 {
		settings.IndentSize = settings.TabSize
	}
	f := &formatter{
		sf:       fs.file,
		settings: settings,
		lines:    sitteradapter.NewLineIndex(fs.file.Text).LineStarts(),
	}
	return f.format(start, end)
}

type formatter struct {
	sf       *ast.SourceFile
	settings FormatCodeSettings
	lines    []int
	edits    []TextChange

	// baseDepth is the nesting depth of the line holding the range start.
	baseDepth int
}

func (f *formatter) lineOf(offset int) int {
	return sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
}

func (f *formatter) lineEnd(line int) int {
	text := f.sf.Text
	end := len(text)
	if line+1 < len(f.lines) {
		end = f.lines[line+1] - 1
		if end > f.lines[line] && text[end-1] == '\r' {
			end--
		}
	}
	return end
}

func (f *formatter) edit(start, end int, newText string) {
	if f.sf.Text[start:end] == newText {
		return
	}
	f.edits = append(f.edits, TextChange{Span: TextSpan{Start: start, Length: end - start}, NewText: newText})
}

func (f *formatter) format(start, end int) []TextChange {
	text := f.sf.Text
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		return nil
	}
	anchor := f.lines[f.lineOf(start)]
	for anchor < len(text) && (text[anchor] == ' ' || text[anchor] == '\t') {
		anchor++
	}
	f.baseDepth = f.indentDepth(anchor)
	prevIndent := ""
	for line := f.lineOf(start); line < len(f.lines) && f.lines[line] <= end; line++ {
		lineStart, lineEnd := f.lines[line], f.lineEnd(line)
		if f.verbatim(lineStart) {
			continue
		}
		first := lineStart
		for first < lineEnd && (text[first] == ' ' || text[first] == '\t') {
			first++
		}
		if lineStart < start {
			prevIndent = text[lineStart:first]
			f.spacing(max(start, first), min(end, lineEnd))
			continue
		}
		if first == lineEnd {
			if lineEnd > lineStart && lineEnd <= end {
				f.edit(lineStart, lineEnd, "")
			}
			continue
		}
		indent := text[lineStart:first]
		switch f.settings.IndentStyle {
		case IndentStyleSmart:
			indent = f.indentString((f.indentDepth(first)-f.baseDepth)*f.settings.IndentSize + f.settings.BaseIndentSize)
		case IndentStyleBlock:
			if line > 0 {
				indent = prevIndent
			}
		}
		if first <= end {
			f.edit(lineStart, first, indent)
		}
		prevIndent = indent
		f.spacing(first, min(end, lineEnd))
		last := lineEnd
		for last > first && (text[last-1] == ' ' || text[last-1] == '\t') {
			last--
		}
		if last < lineEnd && lineEnd <= end && !f.verbatim(lineEnd) {
			f.edit(last, lineEnd, "")
		}
	}
	sort.SliceStable(f.edits, func(i, j int) bool { return f.edits[i].Span.Start < f.edits[j].Span.Start })
	return f.edits
}

func (f *formatter) indentString(width int) string {
	if width <= 0 {
		return ""
	}
	if f.settings.ConvertTabsToSpaces {
		return strings.Repeat(" ", width)
	}
	return strings.Repeat("\t", width/f.settings.TabSize) + strings.Repeat(" ", width%f.settings.TabSize)
}

// verbatim reports whether offset lies inside a multi-line string, comment or
// template literal, whose text must not change.
func (f *formatter) verbatim(offset int) bool {
	for _, t := range f.sf.Tokens {
		if t.Pos >= offset {
			break
		}
		if t.End > offset {
			switch t.Type {
			case "string", "comment", "string_fragment", "regex":
				return true
			}
		}
	}
	for n := ast.NodeAt(f.sf.Root, offset); n != nil; n = n.Parent {
		switch n.Type {
		case "template_substitution":
			return false
		case "template_string":
			return n.Pos < offset && offset < n.End
		}
	}
	return false
}

var indentContainers = map[string]bool{
	"statement_block":          true,
	"class_body":               true,
	"object":                   true,
	"object_pattern":           true,
	"array":                    true,
	"array_pattern":            true,
	"arguments":                true,
	"formal_parameters":        true,
	"switch_body":              true,
	"switch_case":              true,
	"switch_default":           true,
	"named_imports":            true,
	"export_clause":            true,
	"object_type":              true,
	"interface_body":           true,
	"enum_body":                true,
	"parenthesized_expression": true,
	"template_substitution":    true,
}

var closers = map[string]bool{"}": true, "]": true, ")": true}

// indentDepth counts the containers opened on earlier lines around offset.
// A container only adds a level when it starts on a different line than the
// container nested in it, and not for its own closing bracket.
func (f *formatter) indentDepth(offset int) int {
	var tok *ast.Token
	i := sort.Search(len(f.sf.Tokens), func(i int) bool { return f.sf.Tokens[i].Pos >= offset })
	if i < len(f.sf.Tokens) && f.sf.Tokens[i].Pos == offset {
		tok = &f.sf.Tokens[i]
	}
	childLine := f.lineOf(offset)
	depth := 0
	for a := ast.NodeAt(f.sf.Root, offset); a != nil && a != f.sf.Root; a = a.Parent {
		if !a.Positioned() {
			continue
		}
		aLine := f.lineOf(a.Pos)
		if indentContainers[a.Type] {
			if aLine < childLine {
				closing := tok != nil && tok.Parent == a && closers[tok.Type] && tok.End == a.End
				if !closing {
					depth++
				}
				childLine = aLine
			}
			continue
		}
		switch a.Field {
		case "body", "consequence", "alternative":
			if a.Type != "statement_block" && a.Parent != nil && aLine > f.lineOf(a.Parent.Pos) && aLine == childLine {
				depth++
				childLine = f.lineOf(a.Parent.Pos)
			}
		}
	}
	return depth
}

var binaryParents = map[string]bool{
	"binary_expression":               true,
	"assignment_expression":           true,
	"augmented_assignment_expression": true,
	"variable_declarator":             true,
	"ternary_expression":              true,
	"assignment_pattern":              true,
	"object_assignment_pattern":       true,
	"required_parameter":              true,
	"optional_parameter":              true,
	"public_field_definition":         true,
	"field_definition":                true,
}

var wordOperators = map[string]bool{"in": true, "instanceof": true}

func isBinaryOperator(t ast.Token) bool {
	if t.Parent == nil || !binaryParents[t.Parent.Type] {
		return false
	}
	switch t.Type {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "&=", "|=", "^=", "<<=", ">>=", ">>>=", "&&=", "||=", "??=",
		"+", "-", "*", "/", "%", "**", "==", "===", "!=", "!==", "<", ">", "<=", ">=",
		"&&", "||", "??", "&", "|", "^", "<<", ">>", ">>>", "in", "instanceof":
		return true
	case "?", ":":
		return t.Parent.Type == "ternary_expression"
	}
	return false
}

var controlKeywords = map[string]bool{"if": true, "for": true, "while": true, "switch": true, "catch": true, "with": true}

// spacing normalizes the whitespace between adjacent tokens of one line
// whose gap starts in [from, to].
func (f *formatter) spacing(from, to int) {
	toks := f.sf.Tokens
	i := sort.Search(len(toks), func(i int) bool { return toks[i].End >= from })
	for ; i+1 < len(toks); i++ {
		a, b := toks[i], toks[i+1]
		if a.End > to {
			break
		}
		if a.End < from || b.Pos > to {
			continue
		}
		gap := f.sf.Text[a.End:b.Pos]
		if strings.TrimLeft(gap, " \t") != "" || a.Type == "comment" || b.Type == "comment" {
			continue
		}
		if want, ok := f.rule(a, b); ok {
			f.edit(a.End, b.Pos, want)
		}
	}
}

func (f *formatter) space(on bool) string {
	if on {
		return " "
	}
	return ""
}

// rule returns the spacing required between a and b, if any rule applies.
func (f *formatter) rule(a, b ast.Token) (string, bool) {
	st := f.settings
	switch {
	case a.Type == "=>" || b.Type == "=>":
		return " ", true
	case a.Type == ",":
		if closers[b.Type] && b.Type != "}" {
			return "", false
		}
		return f.space(st.InsertSpaceAfterCommaDelimiter), true
	case b.Type == "," || b.Type == ";":
		return "", true
	case b.Type == "{" && b.Parent != nil && blockBodies[b.Parent.Type] && a.Type != "(":
		return " ", true
	case a.Type == ";" && inFor(a):
		if b.Type == ")" {
			return "", false
		}
		return f.space(st.InsertSpaceAfterSemicolonInForStatements), true
	case isBinaryOperator(a) || isBinaryOperator(b):
		if wordOperators[a.Type] || wordOperators[b.Type] {
			return " ", true
		}
		return f.space(st.InsertSpaceBeforeAndAfterBinaryOperators), true
	case controlKeywords[a.Type] && b.Type == "(":
		return f.space(st.InsertSpaceAfterKeywordsInControlFlowStatements), true
	case a.Type == "function" && b.Type == "(" && a.Parent != nil && a.Parent.Child("name") == nil:
		return f.space(st.InsertSpaceAfterFunctionKeywordForAnonymousFunctions), true
	case a.Type == "(" && b.Type != ")", b.Type == ")" && a.Type != "(":
		return f.space(st.InsertSpaceAfterOpeningAndBeforeClosingNonemptyParenthesis), true
	case a.Type == "[" && b.Type != "]", b.Type == "]" && a.Type != "[":
		return f.space(st.InsertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets), true
	case a.Type == "${", b.Type == "}" && b.Parent != nil && b.Parent.Type == "template_substitution":
		return f.space(st.InsertSpaceAfterOpeningAndBeforeClosingTemplateStringBraces), true
	case a.Type == "{" && a.Parent != nil && a.Parent.Type == "jsx_expression",
		b.Type == "}" && b.Parent != nil && b.Parent.Type == "jsx_expression":
		return f.space(st.InsertSpaceAfterOpeningAndBeforeClosingJsxExpressionBraces), true
	}
	return "", false
}

func inFor(t ast.Token) bool {
	for p, depth := t.Parent, 0; p != nil && depth < 2; p, depth = p.Parent, depth+1 {
		if p.Type == "for_statement" {
			return true
		}
	}
	return false
}

var blockBodies = map[string]bool{"statement_block": true, "class_body": true, "switch_body": true}
