// Package component locates the embedded script region of a component file.
package component

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

const (
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
)

// Region is the byte span of the script block content inside a component file.
type Region struct {
	Offset int
	Length int
	Lang   string
}

func (r Region) End() int { return r.Offset + r.Length }

// IsComponentFile reports whether name denotes a component file.
func IsComponentFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".vue")
}

// ExtractScriptRegion returns the content span of the first <script> block in
// text. The second result is false when the document has no script block.
func ExtractScriptRegion(text string) (Region, bool) {
	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return Region{}, false
		}
		raw := len(z.Raw())
		offset += raw
		if tt != html.StartTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "script" {
			continue
		}
		lang := LangJavaScript
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if string(key) == "lang" {
				lang = normalizeLang(string(val))
			}
		}

		region := Region{Offset: offset, Lang: lang}
		// Script content is raw text up to the closing tag.
		if z.Next() == html.TextToken {
			region.Length = len(z.Raw())
		}
		return region, true
	}
}

func normalizeLang(lang string) string {
	switch strings.ToLower(lang) {
	case "ts", "typescript", "tsx":
		return LangTypeScript
	default:
		return LangJavaScript
	}
}
