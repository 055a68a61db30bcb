package server

import (
	"fmt"

	"github.com/sandersn/vetur/internal/feature"
	"github.com/sandersn/vetur/internal/projection"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// document returns the current state of an open document. Queries for
// documents that were never opened are protocol misuse.
func (s *Server) document(uri string) (projection.HostDocument, error) {
	if s.mode == nil {
		return projection.HostDocument{}, fmt.Errorf("server not initialized")
	}
	return s.manager.Get(uri)
}

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return s.mode.Complete(doc, params.Position), nil
}

func (s *Server) completionItemResolve(
	context *glsp.Context,
	params *protocol.CompletionItem,
) (*protocol.CompletionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := params.Data.(map[string]any)
	if !ok {
		return params, nil
	}
	uri, _ := data["uri"].(string)
	doc, err := s.document(uri)
	if err != nil {
		return params, nil
	}
	item := s.mode.Resolve(doc, *params)
	return &item, nil
}

func (s *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return s.mode.Hover(doc, params.Position), nil
}

func (s *Server) textDocumentSignatureHelp(
	context *glsp.Context,
	params *protocol.SignatureHelpParams,
) (*protocol.SignatureHelp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return s.mode.SignatureHelp(doc, params.Position), nil
}

func (s *Server) textDocumentDocumentHighlight(
	context *glsp.Context,
	params *protocol.DocumentHighlightParams,
) ([]protocol.DocumentHighlight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return s.mode.Highlights(doc, params.Position), nil
}

func (s *Server) textDocumentFormatting(
	context *glsp.Context,
	params *protocol.DocumentFormattingParams,
) ([]protocol.TextEdit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return s.mode.FormatDocument(doc, feature.OptionsFrom(params.Options)), nil
}

func (s *Server) textDocumentRangeFormatting(
	context *glsp.Context,
	params *protocol.DocumentRangeFormattingParams,
) ([]protocol.TextEdit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return s.mode.Format(doc, params.Range, feature.OptionsFrom(params.Options)), nil
}
