// Package resolver maps import names to files and document URIs to paths.
package resolver

import (
	"encoding/json"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/component"
)

// URIToPath returns the file system path of a file URI. Other URIs are
// returned unchanged.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.Clean(filepath.FromSlash(u.Path))
}

// PathToURI returns the file URI of an absolute path.
func PathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Clean(path))}
	return u.String()
}

// Resolver resolves module names the way a Node-style module loader does,
// except that component files named directly are joined to the importing
// file's directory.
type Resolver struct {
	options analysis.CompilerOptions
}

func New(options analysis.CompilerOptions) *Resolver {
	return &Resolver{options: options}
}

// ResolveModuleNames resolves every name imported by containingFile. The
// result has one entry per name; nil entries are unresolved.
func (r *Resolver) ResolveModuleNames(names []string, containingFile string) []*analysis.ResolvedModule {
	out := make([]*analysis.ResolvedModule, len(names))
	for i, name := range names {
		out[i] = r.Resolve(name, containingFile)
	}
	return out
}

// Resolve resolves a single module name. Relative component file names
// bypass the general lookup; no existence check is made for them.
func (r *Resolver) Resolve(name, containingFile string) *analysis.ResolvedModule {
	if !filepath.IsAbs(name) && component.IsComponentFile(name) {
		return &analysis.ResolvedModule{
			ResolvedFileName: filepath.Join(filepath.Dir(containingFile), name),
			Extension:        analysis.ExtensionTS,
		}
	}
	m := r.resolveGeneral(name, containingFile)
	if m == nil {
		log.Printf("Unresolved module %q from %s", name, containingFile)
	}
	return m
}

func isRelative(name string) bool {
	return name == "." || name == ".." ||
		strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") ||
		filepath.IsAbs(name)
}

func (r *Resolver) resolveGeneral(name, containingFile string) *analysis.ResolvedModule {
	dir := filepath.Dir(containingFile)
	if isRelative(name) {
		candidate := name
		if !filepath.IsAbs(name) {
			candidate = filepath.Join(dir, name)
		}
		if m := r.loadFile(candidate); m != nil {
			return m
		}
		return r.loadDirectory(candidate)
	}
	if r.options.ModuleResolution == analysis.ModuleResolutionClassic {
		for d := dir; ; d = filepath.Dir(d) {
			if m := r.loadFile(filepath.Join(d, name)); m != nil {
				return m
			}
			if parent := filepath.Dir(d); parent == d {
				break
			}
		}
		return nil
	}
	for d := dir; ; d = filepath.Dir(d) {
		if filepath.Base(d) != "node_modules" {
			for _, base := range []string{filepath.Join(d, "node_modules", name), filepath.Join(d, "node_modules", "@types", typesName(name))} {
				m := r.loadFile(base)
				if m == nil {
					m = r.loadDirectory(base)
				}
				if m != nil {
					m.IsExternalLibraryImport = true
					return m
				}
			}
		}
		if parent := filepath.Dir(d); parent == d {
			return nil
		}
	}
}

// typesName maps a scoped package to its @types directory name.
func typesName(name string) string {
	if strings.HasPrefix(name, "@") {
		if scope, pkg, ok := strings.Cut(name[1:], "/"); ok {
			return scope + "__" + pkg
		}
	}
	return name
}

func (r *Resolver) extensions() []analysis.Extension {
	exts := []analysis.Extension{analysis.ExtensionTS, analysis.ExtensionTSX, analysis.ExtensionDTS}
	if r.options.AllowJS {
		exts = append(exts, analysis.ExtensionJS, analysis.ExtensionJSX)
	}
	return exts
}

func (r *Resolver) loadFile(candidate string) *analysis.ResolvedModule {
	if isFile(candidate) {
		for _, ext := range r.extensions() {
			if strings.HasSuffix(candidate, string(ext)) {
				if strings.HasSuffix(candidate, string(analysis.ExtensionDTS)) {
					ext = analysis.ExtensionDTS
				}
				return &analysis.ResolvedModule{ResolvedFileName: candidate, Extension: ext}
			}
		}
	}
	// A .js specifier may name a TypeScript source.
	stem := candidate
	if ext := filepath.Ext(candidate); ext == ".js" || ext == ".jsx" {
		stem = strings.TrimSuffix(candidate, ext)
	}
	for _, ext := range r.extensions() {
		if isFile(stem + string(ext)) {
			return &analysis.ResolvedModule{ResolvedFileName: stem + string(ext), Extension: ext}
		}
	}
	return nil
}

type packageJSON struct {
	Types   string `json:"types"`
	Typings string `json:"typings"`
	Main    string `json:"main"`
}

func (r *Resolver) loadDirectory(dir string) *analysis.ResolvedModule {
	if data, err := os.ReadFile(filepath.Join(dir, "package.json")); err == nil {
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			log.Printf("Failed to parse %s: %v", filepath.Join(dir, "package.json"), err)
		}
		for _, entry := range []string{pkg.Types, pkg.Typings, pkg.Main} {
			if entry == "" {
				continue
			}
			target := filepath.Join(dir, entry)
			if m := r.loadFile(target); m != nil {
				return m
			}
			if m := r.loadIndex(target); m != nil {
				return m
			}
		}
	}
	return r.loadIndex(dir)
}

func (r *Resolver) loadIndex(dir string) *analysis.ResolvedModule {
	return r.loadFile(filepath.Join(dir, "index"))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
