package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/feature"
	"github.com/sandersn/vetur/internal/host"
	"github.com/sandersn/vetur/internal/interceptor"
	"github.com/sandersn/vetur/internal/parser"
	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/resolver"
	"github.com/sandersn/vetur/internal/scanner"
	"github.com/sandersn/vetur/internal/store"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>...",
	Short: "Report diagnostics for script and component files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,

	SilenceUsage: true,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel file reads (0=auto)")
	checkCmd.Flags().String("color", "auto", "colorize output (auto|on|off)")
}

var (
	pathColor  = color.New(color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
	codeColor  = color.New(color.FgHiBlack)
)

type source struct {
	path string
	text string
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetOutput(cmd.ErrOrStderr())
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
	default:
		return fmt.Errorf("unknown color mode %q", mode)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	files, err := collect(args)
	if err != nil {
		return err
	}
	sources, err := readAll(cmd.Context(), files, jobs)
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	p, err := parser.New(1)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	defer p.Close()

	registry := projection.NewRegistry(projection.NewCache(len(sources)+1, cfg.CacheMaxAge()), resolver.URIToPath)
	var opts []host.Option
	if cfg.Store != "" && cfg.Store != "auto" {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open snapshot store: %w", err)
		}
		defer st.Close()
		opts = append(opts, host.WithStore(st))
	}
	h := host.New(root, registry, analysis.CompilerOptions{
		AllowJS:              true,
		AllowNonTSExtensions: true,
		ModuleResolution:     analysis.ModuleResolutionNode,
	}, append(opts, host.WithFiles(files))...)
	fw := cfg.AnalysisFramework()
	svc := analysis.NewService(h, interceptor.New(analysis.NewParserFactory(p), fw), fw)
	defer svc.Dispose()
	features := feature.New(registry, svc, h, cfg)

	out := cmd.OutOrStdout()
	problems := 0
	for _, src := range sources {
		doc := projection.HostDocument{URI: resolver.PathToURI(src.path), Version: 1, Text: src.text}
		name := src.path
		if rel, err := filepath.Rel(root, src.path); err == nil {
			name = rel
		}
		for _, d := range features.Diagnostics(doc) {
			problems++
			fmt.Fprintf(out, "%s %s %s %s\n",
				pathColor.Sprintf("%s:%d:%d:", name, d.Range.Start.Line+1, d.Range.Start.Character+1),
				errorColor.Sprint("error"),
				codeColor.Sprint(code(d)),
				d.Message,
			)
		}
	}
	if problems > 0 {
		return fmt.Errorf("found %d problem(s) in %d file(s)", problems, len(sources))
	}
	return nil
}

func code(d protocol.Diagnostic) string {
	if d.Code == nil {
		return ""
	}
	return fmt.Sprintf("TS%v", d.Code.Value)
}

// collect expands directories into the source files below them.
func collect(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		found := []string{abs}
		if info.IsDir() {
			found = scanner.Scan(abs, nil)
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// readAll loads files concurrently, keeping their order.
func readAll(ctx context.Context, files []string, jobs int) ([]source, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sources := make([]source, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			sources[i] = source{path: path, text: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}
