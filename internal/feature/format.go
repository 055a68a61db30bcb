package feature

import (
	"strings"

	"github.com/sandersn/vetur/internal/projection"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// FormattingOptions are the request options the formatter reads.
type FormattingOptions struct {
	TabSize      int
	InsertSpaces bool
}

// OptionsFrom reads tab size and indentation style from an LSP options map.
func OptionsFrom(opts protocol.FormattingOptions) FormattingOptions {
	out := FormattingOptions{TabSize: 4, InsertSpaces: true}
	switch v := opts["tabSize"].(type) {
	case float64:
		out.TabSize = int(v)
	case int:
		out.TabSize = v
	case protocol.UInteger:
		out.TabSize = int(v)
	}
	if v, ok := opts["insertSpaces"].(bool); ok {
		out.InsertSpaces = v
	}
	if out.TabSize <= 0 {
		out.TabSize = 4
	}
	return out
}

// Format returns the edits that format r. For component documents r is
// clamped to the script region. The first line of r keeps its indentation
// level and the lines after it are indented from there. When r ends at the start of a line, or in
// its leading whitespace, that line is re-indented to the level of the
// first line of r.
func (m *Mode) Format(doc projection.HostDocument, r protocol.Range, opts FormattingOptions) []protocol.TextEdit {
	p, name := m.sync(doc)
	li := p.Lines()
	start, end := li.Span(r)
	if p.HasRegion {
		start = max(start, p.Region.Offset)
		end = min(end, p.Region.End())
		if start > end {
			return nil
		}
	}
	startPos, endPos := li.PositionAt(start), li.PositionAt(end)
	level := computeInitialIndent(doc.Text, li.OffsetAt(protocol.Position{Line: startPos.Line}), opts)

	var lastLine *protocol.Range
	lineStart := li.OffsetAt(protocol.Position{Line: endPos.Line})
	if endPos.Character == 0 || strings.TrimSpace(doc.Text[lineStart:end]) == "" {
		end = lineStart
		lastLine = &protocol.Range{Start: protocol.Position{Line: endPos.Line}, End: endPos}
	}

	settings := m.config.FormatSettings(opts.TabSize, opts.InsertSpaces)
	settings.BaseIndentSize = level * opts.TabSize
	edits := []protocol.TextEdit{}
	for _, c := range m.service.FormattingEditsForRange(name, start, end, settings) {
		if c.Span.Start < start || c.Span.End() > end {
			continue
		}
		edits = append(edits, protocol.TextEdit{Range: toRange(li, c.Span), NewText: c.NewText})
	}
	if lastLine != nil {
		edits = append(edits, protocol.TextEdit{Range: *lastLine, NewText: generateIndent(level, opts)})
	}
	return edits
}

// FormatDocument formats the whole of doc.
func (m *Mode) FormatDocument(doc projection.HostDocument, opts FormattingOptions) []protocol.TextEdit {
	li := m.registry.Resolve(doc).Lines()
	return m.Format(doc, li.Range(0, len(doc.Text)), opts)
}

// computeInitialIndent returns the indentation level of the line starting at
// lineStart, counting a tab as TabSize columns.
func computeInitialIndent(text string, lineStart int, opts FormattingOptions) int {
	n := 0
loop:
	for i := lineStart; i < len(text); i++ {
		switch text[i] {
		case ' ':
			n++
		case '\t':
			n += opts.TabSize
		default:
			break loop
		}
	}
	return n / opts.TabSize
}

func generateIndent(level int, opts FormattingOptions) string {
	if opts.InsertSpaces {
		return strings.Repeat(" ", level*opts.TabSize)
	}
	return strings.Repeat("\t", level)
}
