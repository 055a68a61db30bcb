package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sandersn/vetur/internal/ast"
	"github.com/sandersn/vetur/internal/component"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Grammar names one of the tree-sitter grammars the parser can load.
type Grammar string

const (
	GrammarJavaScript Grammar = "javascript"
	GrammarTypeScript Grammar = "typescript"
	GrammarTSX        Grammar = "tsx"
)

var languages = map[Grammar]*sitter.Language{
	GrammarJavaScript: javascript.GetLanguage(),
	GrammarTypeScript: typescript.GetLanguage(),
	GrammarTSX:        tsx.GetLanguage(),
}

// GrammarFor picks the grammar for a file. lang is the script language of a
// component region and wins over the extension when set.
func GrammarFor(fileName, lang string) Grammar {
	switch lang {
	case component.LangTypeScript:
		return GrammarTypeScript
	case component.LangJavaScript:
		return GrammarJavaScript
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".ts", ".mts", ".cts":
		return GrammarTypeScript
	case ".tsx":
		return GrammarTSX
	}
	return GrammarJavaScript
}

// Change describes the replacement of old[Start:OldEnd] by new[Start:NewEnd].
type Change struct {
	Start  int
	OldEnd int
	NewEnd int
}

// Parser hands out pooled tree-sitter parsers per grammar and converts their
// trees into ast.SourceFile values.
type Parser struct {
	pools map[Grammar]*ParserPool
}

// New creates a Parser keeping size parsers per grammar.
func New(size int) (*Parser, error) {
	p := &Parser{pools: make(map[Grammar]*ParserPool, len(languages))}
	for g, lang := range languages {
		pool, err := NewParserPool(size, lang)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to create %s parser pool: %w", g, err)
		}
		p.pools[g] = pool
	}
	return p, nil
}

// Parse builds a source file from scratch.
func (p *Parser) Parse(ctx context.Context, fileName, lang, text, version string) (*ast.SourceFile, error) {
	g := GrammarFor(fileName, lang)
	tree, err := p.pools[g].parse(ctx, nil, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	return p.build(g, tree, fileName, lang, text, version), nil
}

// Reparse builds a new source file for text, reusing the tree of old for the
// unchanged parts. old stays valid.
func (p *Parser) Reparse(ctx context.Context, old *ast.SourceFile, text, version string, change Change) (*ast.SourceFile, error) {
	g := GrammarFor(old.FileName, old.Lang)
	if old.Tree == nil {
		return p.Parse(ctx, old.FileName, old.Lang, text, version)
	}
	prev := old.Tree.Copy()
	prev.Edit(editInput(old.Text, text, change))
	tree, err := p.pools[g].parse(ctx, prev, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to reparse %s: %w", old.FileName, err)
	}
	return p.build(g, tree, old.FileName, old.Lang, text, version), nil
}

func (p *Parser) build(g Grammar, tree *sitter.Tree, fileName, lang, text, version string) *ast.SourceFile {
	src := []byte(text)
	b := &builder{src: src, fileName: fileName}
	root := b.convert(tree.RootNode())
	diags := p.pools[g].syntaxErrors(tree.RootNode(), src, fileName)
	diags = append(diags, b.missing...)
	sortDiagnostics(diags)
	return &ast.SourceFile{
		FileName:         fileName,
		Version:          version,
		Lang:             lang,
		Text:             text,
		Root:             root,
		Tokens:           b.tokens,
		ParseDiagnostics: diags,
		Tree:             tree,
	}
}

// Close releases every pooled parser.
func (p *Parser) Close() error {
	for _, pool := range p.pools {
		pool.Close()
	}
	return nil
}
