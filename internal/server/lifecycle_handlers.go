package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/feature"
	"github.com/sandersn/vetur/internal/host"
	"github.com/sandersn/vetur/internal/interceptor"
	"github.com/sandersn/vetur/internal/parser"
	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/resolver"
	"github.com/sandersn/vetur/internal/scanner"
	"github.com/sandersn/vetur/internal/scheduler"
	"github.com/sandersn/vetur/internal/store"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	parserPoolSize = 4
	rescanInterval = 5 * time.Minute
)

var compilerOptions = analysis.CompilerOptions{
	AllowJS:              true,
	AllowNonTSExtensions: true,
	ModuleResolution:     analysis.ModuleResolutionNode,
}

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.config.Merge(params.InitializationOptions)
	if err != nil {
		return nil, fmt.Errorf("invalid initialization options: %w", err)
	}
	s.config = cfg
	log.Printf("Config: %+v", cfg)

	s.root = rootOf(params)
	log.Printf("Root is %s", s.root)
	if err := s.open(); err != nil {
		return nil, err
	}
	s.scheduler.Every(rescanInterval, scheduler.Task{Name: "scan", Execute: s.scan})

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
		ResolveProvider:   &protocol.True,
	}
	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{
		TriggerCharacters: []string{"(", ","},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo:   &protocol.InitializeResultServerInfo{Name: Name},
	}, nil
}

func rootOf(params *protocol.InitializeParams) string {
	switch {
	case params.RootURI != nil && *params.RootURI != "":
		return resolver.URIToPath(*params.RootURI)
	case params.RootPath != nil && *params.RootPath != "":
		return *params.RootPath
	}
	wd, _ := os.Getwd()
	return wd
}

// open builds the analysis pipeline for the current root and config.
func (s *Server) open() error {
	if s.config.Store != "" {
		if path, err := storePath(s.config.Store, s.root); err != nil {
			log.Printf("Snapshot store disabled: %v", err)
		} else if st, err := store.Open(path); err != nil {
			log.Printf("Snapshot store disabled: %v", err)
		} else {
			log.Printf("Using snapshot store %s", path)
			s.store = st
		}
	}

	p, err := parser.New(parserPoolSize)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	s.parser = p

	s.projections = projection.NewCache(s.config.Cache.MaxEntries, s.config.CacheMaxAge())
	s.registry = projection.NewRegistry(s.projections, resolver.URIToPath)
	var opts []host.Option
	if s.store != nil {
		opts = append(opts, host.WithStore(s.store))
	}
	s.host = host.New(s.root, s.registry, compilerOptions, opts...)

	fw := s.config.AnalysisFramework()
	factory := interceptor.New(analysis.NewParserFactory(p), fw)
	s.service = analysis.NewService(s.host, factory, fw)
	s.mode = feature.New(s.registry, s.service, s.host, s.config)

	s.scheduler = scheduler.New(4)
	s.scheduler.Start()
	return nil
}

// scan refreshes the set of workspace files the host reports.
func (s *Server) scan(ctx context.Context) error {
	files := scanner.Scan(s.root, nil)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.host.SetFiles(files)
	log.Printf("Found %d source files under %s", len(files), s.root)
	return nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Println("Client initialized.")
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Println("Shutdown")
	if s.service != nil {
		s.service.Dispose()
	}
	if s.parser != nil {
		s.parser.Close()
	}
	if s.projections != nil {
		hits, misses := s.projections.Stats()
		log.Printf("Projection cache: %d hits, %d builds", hits, misses)
		s.projections.Clear()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("failed to close snapshot store: %w", err)
		}
	}
	return nil
}

// workspaceDidChangeConfiguration applies new settings. Clients nest them
// under a "vetur" section or send them bare.
func (s *Server) workspaceDidChangeConfiguration(
	context *glsp.Context,
	params *protocol.DidChangeConfigurationParams,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := params.Settings
	if m, ok := settings.(map[string]any); ok {
		if section, ok := m[Name]; ok {
			settings = section
		} else if section, ok := m["vetur"]; ok {
			settings = section
		}
	}
	cfg, err := s.config.Merge(settings)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	s.config = cfg
	if s.mode != nil {
		s.mode.Configure(cfg)
	}
	return nil
}
