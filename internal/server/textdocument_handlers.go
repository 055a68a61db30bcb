package server

import (
	"fmt"

	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/resolver"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := params.TextDocument
	doc := s.manager.Open(item.URI, item.Version, item.Text)
	s.publishDiagnostics(context, doc)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.manager.ApplyChanges(params.TextDocument.URI, params.TextDocument.Version, params.ContentChanges)
	if err != nil {
		return fmt.Errorf("failed to apply changes: %w", err)
	}
	s.publishDiagnostics(context, doc)
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uri := params.TextDocument.URI
	s.manager.Close(uri)
	if s.registry != nil {
		s.registry.Remove(uri)
		s.service.Remove(resolver.URIToPath(uri))
	}
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// publishDiagnostics sends the full diagnostic set of doc, replacing what
// the client showed before.
func (s *Server) publishDiagnostics(context *glsp.Context, doc projection.HostDocument) {
	if s.mode == nil {
		return
	}
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: s.mode.Diagnostics(doc),
	})
}
