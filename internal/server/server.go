// Package server exposes the analysis of script and component files over the
// language server protocol.
package server

import (
	"sync"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/cache"
	"github.com/sandersn/vetur/internal/config"
	"github.com/sandersn/vetur/internal/feature"
	"github.com/sandersn/vetur/internal/host"
	"github.com/sandersn/vetur/internal/manager"
	"github.com/sandersn/vetur/internal/parser"
	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/scheduler"
	"github.com/sandersn/vetur/internal/store"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const Name = "vls"

// Server answers one request at a time: every handler holds mu for its whole
// duration, so the analysis pipeline never sees concurrent calls.
type Server struct {
	mu          sync.Mutex
	handler     *protocol.Handler
	root        string
	config      config.Config
	manager     *manager.DocumentManager
	registry    *projection.Registry
	projections *cache.Cache[*projection.Document]
	host        *host.Host
	store       *store.Store
	parser      *parser.Parser
	service     *analysis.Service
	mode        *feature.Mode
	scheduler   *scheduler.Scheduler
}

// NewServer returns a protocol server whose configuration starts from cfg
// and is refined by the client's initialization options.
func NewServer(cfg config.Config) (*server.Server, error) {
	ls := New(cfg)
	return server.NewServer(ls.handler, Name, false), nil
}

func New(cfg config.Config) *Server {
	ls := &Server{config: cfg, manager: manager.NewDocumentManager()}
	ls.handler = &protocol.Handler{
		Initialize:                      ls.initialize,
		Initialized:                     ls.initialized,
		Shutdown:                        ls.shutdown,
		WorkspaceDidChangeConfiguration: ls.workspaceDidChangeConfiguration,
		WorkspaceSymbol:                 ls.workspaceSymbol,
		TextDocumentDidOpen:             ls.textDocumentDidOpen,
		TextDocumentDidChange:           ls.textDocumentDidChange,
		TextDocumentDidClose:            ls.textDocumentDidClose,
		TextDocumentCompletion:          ls.textDocumentCompletion,
		CompletionItemResolve:           ls.completionItemResolve,
		TextDocumentHover:               ls.textDocumentHover,
		TextDocumentSignatureHelp:       ls.textDocumentSignatureHelp,
		TextDocumentDocumentHighlight:   ls.textDocumentDocumentHighlight,
		TextDocumentDocumentSymbol:      ls.textDocumentDocumentSymbol,
		TextDocumentDefinition:          ls.textDocumentDefinition,
		TextDocumentReferences:          ls.textDocumentReferences,
		TextDocumentFormatting:          ls.textDocumentFormatting,
		TextDocumentRangeFormatting:     ls.textDocumentRangeFormatting,
	}
	return ls
}

// Handler returns the protocol handler table.
func (s *Server) Handler() *protocol.Handler { return s.handler }
