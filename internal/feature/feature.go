// Package feature answers editor queries for script and component documents
// by running them against the analysis service in projected coordinates and
// mapping the results back to document ranges.
package feature

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/config"
	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/resolver"
	"github.com/sandersn/vetur/internal/sitteradapter"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LineSource returns the line table of any file the service knows about.
type LineSource interface {
	Lines(fileName string) *sitteradapter.LineIndex
}

// Mode is not safe for concurrent use; callers serialize requests.
type Mode struct {
	registry *projection.Registry
	service  *analysis.Service
	lines    LineSource
	config   config.Config
}

func New(registry *projection.Registry, service *analysis.Service, lines LineSource, cfg config.Config) *Mode {
	return &Mode{registry: registry, service: service, lines: lines, config: cfg}
}

// Configure replaces the settings used by later requests.
func (m *Mode) Configure(cfg config.Config) { m.config = cfg }

// sync brings the registry to doc's version and returns the projection and
// the service file name of doc.
func (m *Mode) sync(doc projection.HostDocument) (*projection.Document, string) {
	return m.registry.Resolve(doc), resolver.URIToPath(doc.URI)
}

func toRange(li *sitteradapter.LineIndex, span analysis.TextSpan) protocol.Range {
	return li.Range(span.Start, span.Length)
}

// Diagnostics returns the syntactic and semantic errors of doc.
func (m *Mode) Diagnostics(doc projection.HostDocument) []protocol.Diagnostic {
	p, name := m.sync(doc)
	li := p.Lines()
	diags := append(m.service.SyntacticDiagnostics(name), m.service.SemanticDiagnostics(name)...)
	severity := protocol.DiagnosticSeverityError
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, protocol.Diagnostic{
			Range:    li.Range(d.Start, d.Length),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: protocol.Integer(d.Code)},
			Message:  d.Message,
		})
	}
	return out
}

// jsWord matches the words a completion replaces.
var jsWord = regexp.MustCompile(`(-?\d*\.\d\w*)|([^` + "`" + `~!@#%^&*()\-=+\[{\]}\\|;:'",.<>/?\s]+)`)

// wordAt returns the span of the word around offset on its line, or an
// empty span at offset.
func wordAt(text string, offset int) analysis.TextSpan {
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
		lineEnd = offset + i
	}
	for _, loc := range jsWord.FindAllStringIndex(text[lineStart:lineEnd], -1) {
		start, end := lineStart+loc[0], lineStart+loc[1]
		if start <= offset && offset <= end {
			return analysis.TextSpan{Start: start, Length: end - start}
		}
	}
	return analysis.TextSpan{Start: offset}
}

type completionData struct {
	LanguageID string `json:"languageId"`
	URI        string `json:"uri"`
	Version    int32  `json:"version"`
	Offset     int    `json:"offset"`
}

// Complete lists completions at pos. The replace range of every item is the
// word around pos.
func (m *Mode) Complete(doc projection.HostDocument, pos protocol.Position) *protocol.CompletionList {
	p, name := m.sync(doc)
	li := p.Lines()
	offset := li.OffsetAt(pos)
	list := &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}
	info := m.service.CompletionsAtPosition(name, offset)
	if info == nil {
		return list
	}
	replace := toRange(li, wordAt(doc.Text, offset))
	for _, e := range info.Entries {
		kind := convertKind(e.Kind)
		sortText := e.SortText
		list.Items = append(list.Items, protocol.CompletionItem{
			Label:    e.Name,
			Kind:     &kind,
			SortText: &sortText,
			TextEdit: protocol.TextEdit{Range: replace, NewText: e.Name},
			Data: completionData{
				LanguageID: "javascript",
				URI:        doc.URI,
				Version:    doc.Version,
				Offset:     offset,
			},
		})
	}
	return list
}

// Resolve fills in the detail and documentation of a completion item and
// drops its resolve data.
// Resolve fills in the detail and documentation of item. Items completed
// against an older version of doc are returned unchanged.
func (m *Mode) Resolve(doc projection.HostDocument, item protocol.CompletionItem) protocol.CompletionItem {
	_, name := m.sync(doc)
	data, ok := decodeData(item.Data)
	if !ok {
		return item
	}
	if _, err := m.registry.Lookup(doc.URI, data.Version); err != nil {
		log.Printf("Not resolving %q: %v", item.Label, err)
		return item
	}
	details := m.service.CompletionEntryDetails(name, data.Offset, item.Label)
	if details == nil {
		return item
	}
	detail := analysis.DisplayPartsToString(details.DisplayParts)
	item.Detail = &detail
	item.Documentation = analysis.DisplayPartsToString(details.Documentation)
	item.Data = nil
	return item
}

// decodeData reads resolve data back, which arrives either as sent or
// decoded from JSON.
func decodeData(data any) (completionData, bool) {
	switch d := data.(type) {
	case completionData:
		return d, true
	case map[string]any:
		offset, ok := number(d["offset"])
		if !ok {
			return completionData{}, false
		}
		version, _ := number(d["version"])
		uri, _ := d["uri"].(string)
		lang, _ := d["languageId"].(string)
		return completionData{LanguageID: lang, URI: uri, Version: int32(version), Offset: offset}, true
	}
	return completionData{}, false
}

func number(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func (m *Mode) Hover(doc projection.HostDocument, pos protocol.Position) *protocol.Hover {
	p, name := m.sync(doc)
	li := p.Lines()
	info := m.service.QuickInfoAtPosition(name, li.OffsetAt(pos))
	if info == nil {
		return nil
	}
	r := toRange(li, info.TextSpan)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: analysis.DisplayPartsToString(info.DisplayParts),
		},
		Range: &r,
	}
}

func (m *Mode) SignatureHelp(doc projection.HostDocument, pos protocol.Position) *protocol.SignatureHelp {
	p, name := m.sync(doc)
	help := m.service.SignatureHelpItems(name, p.Lines().OffsetAt(pos))
	if help == nil {
		return nil
	}
	active := protocol.UInteger(help.SelectedItemIndex)
	param := protocol.UInteger(help.ArgumentIndex)
	out := &protocol.SignatureHelp{
		ActiveSignature: &active,
		ActiveParameter: &param,
		Signatures:      []protocol.SignatureInformation{},
	}
	for _, item := range help.Items {
		label := analysis.DisplayPartsToString(item.PrefixDisplayParts)
		sig := protocol.SignatureInformation{
			Documentation: analysis.DisplayPartsToString(item.Documentation),
			Parameters:    []protocol.ParameterInformation{},
		}
		for i, p := range item.Parameters {
			text := analysis.DisplayPartsToString(p.DisplayParts)
			sig.Parameters = append(sig.Parameters, protocol.ParameterInformation{
				Label:         text,
				Documentation: analysis.DisplayPartsToString(p.Documentation),
			})
			label += text
			if i < len(item.Parameters)-1 {
				label += analysis.DisplayPartsToString(item.SeparatorDisplayParts)
			}
		}
		label += analysis.DisplayPartsToString(item.SuffixDisplayParts)
		sig.Label = label
		out.Signatures = append(out.Signatures, sig)
	}
	return out
}

func (m *Mode) Highlights(doc projection.HostDocument, pos protocol.Position) []protocol.DocumentHighlight {
	p, name := m.sync(doc)
	li := p.Lines()
	var out []protocol.DocumentHighlight
	for _, o := range m.service.OccurrencesAtPosition(name, li.OffsetAt(pos)) {
		if o.FileName != name {
			continue
		}
		kind := protocol.DocumentHighlightKindText
		if o.IsWriteAccess {
			kind = protocol.DocumentHighlightKindWrite
		}
		out = append(out, protocol.DocumentHighlight{Range: toRange(li, o.TextSpan), Kind: &kind})
	}
	return out
}

// Symbols flattens the navigation tree of doc. Every symbol is listed once
// and names the nearest listed ancestor as its container.
func (m *Mode) Symbols(doc projection.HostDocument) []protocol.SymbolInformation {
	p, name := m.sync(doc)
	items := m.service.NavigationBarItems(name)
	if items == nil {
		return nil
	}
	return flatten(doc.URI, p.Lines(), items, []protocol.SymbolInformation{})
}

// WorkspaceSymbols lists the symbols of every file the service knows about.
// Open documents are read at their last synced version.
func (m *Mode) WorkspaceSymbols() []protocol.SymbolInformation {
	out := []protocol.SymbolInformation{}
	for _, name := range m.service.Files() {
		items := m.service.NavigationBarItems(name)
		if items == nil {
			continue
		}
		uri, li := resolver.PathToURI(name), m.lines.Lines(name)
		if e, ok := m.registry.ByPath(name); ok {
			uri, li = e.URI, e.Document.Lines()
		}
		out = flatten(uri, li, items, out)
	}
	return out
}

func flatten(uri string, li *sitteradapter.LineIndex, items []analysis.NavigationBarItem, out []protocol.SymbolInformation) []protocol.SymbolInformation {
	seen := make(map[string]bool)
	var collect func(item analysis.NavigationBarItem, container string)
	collect = func(item analysis.NavigationBarItem, container string) {
		if len(item.Spans) == 0 {
			return
		}
		sig := item.Text + item.Kind + strconv.Itoa(item.Spans[0].Start)
		if item.Kind != analysis.KindScript && !seen[sig] {
			sym := protocol.SymbolInformation{
				Name: item.Text,
				Kind: convertSymbolKind(item.Kind),
				Location: protocol.Location{
					URI:   uri,
					Range: toRange(li, item.Spans[0]),
				},
			}
			if container != "" {
				c := container
				sym.ContainerName = &c
			}
			seen[sig] = true
			out = append(out, sym)
			container = item.Text
		}
		for _, child := range item.ChildItems {
			collect(child, container)
		}
	}
	for _, item := range items {
		collect(item, "")
	}
	return out
}

// location maps a span of fileName to a protocol location, using the open
// document's table when fileName is doc.
func (m *Mode) location(doc projection.HostDocument, p *projection.Document, name, fileName string, span analysis.TextSpan) protocol.Location {
	if fileName == name {
		return protocol.Location{URI: doc.URI, Range: toRange(p.Lines(), span)}
	}
	return protocol.Location{URI: resolver.PathToURI(fileName), Range: toRange(m.lines.Lines(fileName), span)}
}

func (m *Mode) Definition(doc projection.HostDocument, pos protocol.Position) []protocol.Location {
	p, name := m.sync(doc)
	defs := m.service.DefinitionAtPosition(name, p.Lines().OffsetAt(pos))
	if defs == nil {
		return nil
	}
	out := make([]protocol.Location, 0, len(defs))
	for _, d := range defs {
		out = append(out, m.location(doc, p, name, d.FileName, d.TextSpan))
	}
	return out
}

func (m *Mode) References(doc projection.HostDocument, pos protocol.Position) []protocol.Location {
	p, name := m.sync(doc)
	refs := m.service.ReferencesAtPosition(name, p.Lines().OffsetAt(pos))
	if refs == nil {
		return nil
	}
	out := make([]protocol.Location, 0, len(refs))
	for _, r := range refs {
		out = append(out, m.location(doc, p, name, r.FileName, r.TextSpan))
	}
	return out
}
