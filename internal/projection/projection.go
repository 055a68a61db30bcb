// Package projection builds position-stable script views of host documents.
package projection

import (
	"path/filepath"
	"strings"

	"github.com/sandersn/vetur/internal/component"
	"github.com/sandersn/vetur/internal/sitteradapter"
)

// HostDocument is an editor-owned document as seen at one version.
type HostDocument struct {
	URI     string
	Version int32
	Text    string
}

// Document is the projected view of a HostDocument. Text has exactly the
// length and line structure of Host, so every byte offset is valid in both.
type Document struct {
	URI       string
	Version   int32
	Lang      string
	Region    component.Region
	HasRegion bool
	Host      string
	Text      string

	lines *sitteradapter.LineIndex
}

// Lines returns the line table of the host text.
func (d *Document) Lines() *sitteradapter.LineIndex {
	if d.lines == nil {
		d.lines = sitteradapter.NewLineIndex(d.Host)
	}
	return d.lines
}

// Project blanks every byte of text outside region with a space, keeping line
// breaks. A nil region leaves text unchanged.
func Project(text string, region *component.Region) string {
	if region == nil {
		return text
	}
	start, end := region.Offset, region.End()
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	var b strings.Builder
	b.Grow(len(text))
	blank(&b, text[:start])
	b.WriteString(text[start:end])
	blank(&b, text[end:])
	return b.String()
}

func blank(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n', '\r':
			b.WriteByte(s[i])
		default:
			b.WriteByte(' ')
		}
	}
}

// Build projects text for the document uri. Component files expose only their
// script region; other files, and component files without a script block,
// are used whole.
func Build(uri string, version int32, text string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Lang:    langOf(uri),
		Host:    text,
		Text:    text,
	}
	if !component.IsComponentFile(uri) {
		return doc
	}
	region, ok := component.ExtractScriptRegion(text)
	if !ok {
		return doc
	}
	doc.Region = region
	doc.HasRegion = true
	doc.Lang = region.Lang
	doc.Text = Project(text, &region)
	return doc
}

func langOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return component.LangTypeScript
	default:
		return component.LangJavaScript
	}
}
