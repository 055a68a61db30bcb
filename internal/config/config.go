package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sandersn/vetur/internal/analysis"
)

// FormatConfig holds the `javascript.format` toggles. A nil field was not
// set by the user.
type FormatConfig struct {
	InsertSpaceAfterCommaDelimiter                              *bool `json:"insertSpaceAfterCommaDelimiter,omitempty" toml:"insertSpaceAfterCommaDelimiter"`
	InsertSpaceAfterSemicolonInForStatements                    *bool `json:"insertSpaceAfterSemicolonInForStatements,omitempty" toml:"insertSpaceAfterSemicolonInForStatements"`
	InsertSpaceBeforeAndAfterBinaryOperators                    *bool `json:"insertSpaceBeforeAndAfterBinaryOperators,omitempty" toml:"insertSpaceBeforeAndAfterBinaryOperators"`
	InsertSpaceAfterKeywordsInControlFlowStatements             *bool `json:"insertSpaceAfterKeywordsInControlFlowStatements,omitempty" toml:"insertSpaceAfterKeywordsInControlFlowStatements"`
	InsertSpaceAfterFunctionKeywordForAnonymousFunctions        *bool `json:"insertSpaceAfterFunctionKeywordForAnonymousFunctions,omitempty" toml:"insertSpaceAfterFunctionKeywordForAnonymousFunctions"`
	InsertSpaceAfterOpeningAndBeforeClosingNonemptyParenthesis  *bool `json:"insertSpaceAfterOpeningAndBeforeClosingNonemptyParenthesis,omitempty" toml:"insertSpaceAfterOpeningAndBeforeClosingNonemptyParenthesis"`
	InsertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets     *bool `json:"insertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets,omitempty" toml:"insertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets"`
	InsertSpaceAfterOpeningAndBeforeClosingTemplateStringBraces *bool `json:"insertSpaceAfterOpeningAndBeforeClosingTemplateStringBraces,omitempty" toml:"insertSpaceAfterOpeningAndBeforeClosingTemplateStringBraces"`
	InsertSpaceAfterOpeningAndBeforeClosingJsxExpressionBraces  *bool `json:"insertSpaceAfterOpeningAndBeforeClosingJsxExpressionBraces,omitempty" toml:"insertSpaceAfterOpeningAndBeforeClosingJsxExpressionBraces"`
	PlaceOpenBraceOnNewLineForFunctions                         *bool `json:"placeOpenBraceOnNewLineForFunctions,omitempty" toml:"placeOpenBraceOnNewLineForFunctions"`
	PlaceOpenBraceOnNewLineForControlBlocks                     *bool `json:"placeOpenBraceOnNewLineForControlBlocks,omitempty" toml:"placeOpenBraceOnNewLineForControlBlocks"`
}

type JavaScriptConfig struct {
	Format FormatConfig `json:"format" toml:"format"`
}

type FrameworkConfig struct {
	Module      string `json:"module" toml:"module"`
	Constructor string `json:"constructor" toml:"constructor"`
}

type CacheConfig struct {
	MaxEntries    int `json:"max_entries" toml:"max_entries"`
	MaxAgeSeconds int `json:"max_age_seconds" toml:"max_age_seconds"`
}

type Config struct {
	JavaScript JavaScriptConfig `json:"javascript" toml:"javascript"`
	Framework  FrameworkConfig  `json:"framework" toml:"framework"`
	Cache      CacheConfig      `json:"cache" toml:"cache"`
	// Store is the path of the snapshot database. Empty disables it; "auto"
	// places it in the user's state directory.
	Store string `json:"store" toml:"store"`
}

var defaultConfig = Config{
	Framework: FrameworkConfig{
		Module:      analysis.DefaultFramework.Module,
		Constructor: analysis.DefaultFramework.Constructor,
	},
	Cache: CacheConfig{
		MaxEntries:    10,
		MaxAgeSeconds: 60,
	},
}

// Default returns the configuration used when the client sends none.
func Default() Config { return defaultConfig }

// Load decodes v, typically the client's initialization options, over the
// defaults.
func Load(v any) (Config, error) {
	return defaultConfig.Merge(v)
}

// Merge decodes v over c. Only fields present in v overwrite.
func (c Config) Merge(v any) (Config, error) {
	if v == nil {
		return c, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}
	return c, nil
}

// LoadFile decodes a TOML configuration file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cfg, nil
}

// AnalysisFramework returns the framework whose instances get typed.
func (c Config) AnalysisFramework() analysis.Framework {
	fw := analysis.DefaultFramework
	if c.Framework.Module != "" {
		fw.Module = c.Framework.Module
	}
	if c.Framework.Constructor != "" {
		fw.Constructor = c.Framework.Constructor
	}
	return fw
}

// CacheMaxAge returns how long a projection stays cached without use.
func (c Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAgeSeconds) * time.Second
}

func isTrue(b *bool) bool  { return b != nil && *b }
func notFalse(b *bool) bool { return b == nil || *b }

// FormatSettings builds the formatter settings for a request with the given
// tab size and indentation style.
func (c Config) FormatSettings(tabSize int, insertSpaces bool) analysis.FormatCodeSettings {
	f := c.JavaScript.Format
	return analysis.FormatCodeSettings{
		ConvertTabsToSpaces: insertSpaces,
		TabSize:             tabSize,
		IndentSize:          tabSize,
		IndentStyle:         analysis.IndentStyleSmart,
		NewLineCharacter:    "\n",

		InsertSpaceAfterCommaDelimiter:                              notFalse(f.InsertSpaceAfterCommaDelimiter),
		InsertSpaceAfterSemicolonInForStatements:                    notFalse(f.InsertSpaceAfterSemicolonInForStatements),
		InsertSpaceBeforeAndAfterBinaryOperators:                    notFalse(f.InsertSpaceBeforeAndAfterBinaryOperators),
		InsertSpaceAfterKeywordsInControlFlowStatements:             notFalse(f.InsertSpaceAfterKeywordsInControlFlowStatements),
		InsertSpaceAfterFunctionKeywordForAnonymousFunctions:        notFalse(f.InsertSpaceAfterFunctionKeywordForAnonymousFunctions),
		InsertSpaceAfterOpeningAndBeforeClosingNonemptyParenthesis:  isTrue(f.InsertSpaceAfterOpeningAndBeforeClosingNonemptyParenthesis),
		InsertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets:     isTrue(f.InsertSpaceAfterOpeningAndBeforeClosingNonemptyBrackets),
		InsertSpaceAfterOpeningAndBeforeClosingTemplateStringBraces: isTrue(f.InsertSpaceAfterOpeningAndBeforeClosingTemplateStringBraces),
		InsertSpaceAfterOpeningAndBeforeClosingJsxExpressionBraces:  isTrue(f.InsertSpaceAfterOpeningAndBeforeClosingJsxExpressionBraces),
		PlaceOpenBraceOnNewLineForFunctions:                         isTrue(f.PlaceOpenBraceOnNewLineForFunctions),
		PlaceOpenBraceOnNewLineForControlBlocks:                     isTrue(f.PlaceOpenBraceOnNewLineForControlBlocks),
	}
}
