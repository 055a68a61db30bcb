package sitteradapter

import (
	"sort"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	lsp "github.com/tliron/glsp/protocol_3_16"
)

// LineIndex maps between byte offsets, LSP positions (UTF-16 columns) and
// tree-sitter points (byte columns) for one immutable text.
type LineIndex struct {
	text   string
	starts []int
}

func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// LineStarts returns the byte offset of the first byte of every line.
func (li *LineIndex) LineStarts() []int { return li.starts }

// lineEnd returns the offset of the line break ending line (or len(text)).
func (li *LineIndex) lineEnd(line int) int {
	if line+1 < len(li.starts) {
		end := li.starts[line+1] - 1
		if end > li.starts[line] && li.text[end-1] == '\r' {
			end--
		}
		return end
	}
	return len(li.text)
}

// OffsetAt converts an LSP position to a byte offset, clamping lines past the
// end of the text and characters past the end of the line.
func (li *LineIndex) OffsetAt(pos lsp.Position) int {
	line := int(pos.Line)
	if line >= len(li.starts) {
		return len(li.text)
	}
	offset := li.starts[line]
	end := li.lineEnd(line)
	var units uint32
	for offset < end && units < pos.Character {
		r, size := utf8.DecodeRuneInString(li.text[offset:end])
		// Each codepoint uses 1 or 2 UTF-16 code units
		n := uint32(1)
		if r > 0xFFFF {
			n = 2
		}
		if units+n > pos.Character {
			break
		}
		units += n
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset to an LSP position.
func (li *LineIndex) PositionAt(offset int) lsp.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	for offset > 0 && offset < len(li.text) && !utf8.RuneStart(li.text[offset]) {
		offset--
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	var units uint32
	for _, r := range li.text[li.starts[line]:offset] {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return lsp.Position{Line: uint32(line), Character: units}
}

// Point converts a byte offset to a tree-sitter point.
func (li *LineIndex) Point(offset int) sitter.Point {
	if offset > len(li.text) {
		offset = len(li.text)
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return sitter.Point{Row: uint32(line), Column: uint32(offset - li.starts[line])}
}

// Range converts a byte span to an LSP range.
func (li *LineIndex) Range(start, length int) lsp.Range {
	return lsp.Range{Start: li.PositionAt(start), End: li.PositionAt(start + length)}
}

// Span converts an LSP range to a byte span.
func (li *LineIndex) Span(r lsp.Range) (start, end int) {
	return li.OffsetAt(r.Start), li.OffsetAt(r.End)
}

// ApplyTextEdit applies a single LSP content change to document. A change
// without a range replaces the whole document.
func ApplyTextEdit(
	change lsp.TextDocumentContentChangeEvent,
	document string,
) string {
	if change.Range == nil {
		return change.Text
	}
	li := NewLineIndex(document)
	start, end := li.Span(*change.Range)
	if end < start {
		end = start
	}
	return document[:start] + change.Text + document[end:]
}

// CreateTSEdit builds the tree-sitter edit describing the replacement of
// oldText[start:oldEnd] by newText[start:newEnd].
func CreateTSEdit(oldText, newText string, start, oldEnd, newEnd int) sitter.EditInput {
	before := NewLineIndex(oldText)
	after := NewLineIndex(newText)
	return sitter.EditInput{
		StartIndex:  uint32(start),
		OldEndIndex: uint32(oldEnd),
		NewEndIndex: uint32(newEnd),
		StartPoint:  before.Point(start),
		OldEndPoint: before.Point(oldEnd),
		NewEndPoint: after.Point(newEnd),
	}
}
