package projection

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sandersn/vetur/internal/cache"
)

var (
	ErrStaleVersion = errors.New("stale document version")
	ErrUnknown      = errors.New("document not registered")
)

// Entry is the registry state of one open document.
type Entry struct {
	URI             string
	Path            string
	LastSeenVersion int32
	Document        *Document
}

// Registry tracks the latest projected view of every open document and only
// recomputes it when the host version changes.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	paths   map[string]string
	cache   *cache.Cache[*Document]
	pathOf  func(uri string) string
}

// NewRegistry creates a registry that builds projections through c. pathOf
// maps a document URI to the file name used by the analysis service.
func NewRegistry(c *cache.Cache[*Document], pathOf func(uri string) string) *Registry {
	if pathOf == nil {
		pathOf = func(uri string) string { return uri }
	}
	return &Registry{
		entries: make(map[string]*Entry),
		paths:   make(map[string]string),
		cache:   c,
		pathOf:  pathOf,
	}
}

// NewCache creates a projection cache that builds entries with Build.
func NewCache(maxEntries int, maxAge time.Duration, opts ...cache.Option) *cache.Cache[*Document] {
	return cache.New[*Document](maxEntries, maxAge, Build, opts...)
}

// Resolve reconciles the registry with doc and returns the projection stamped
// with doc.Version.
func (r *Registry) Resolve(doc HostDocument) *Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[doc.URI]; ok && e.LastSeenVersion == doc.Version {
		return e.Document
	}

	projected := r.cache.Get(doc.URI, doc.Version, doc.Text)
	if projected.Version != doc.Version {
		projected = Build(doc.URI, doc.Version, doc.Text)
	}

	path := r.pathOf(doc.URI)
	r.entries[doc.URI] = &Entry{
		URI:             doc.URI,
		Path:            path,
		LastSeenVersion: doc.Version,
		Document:        projected,
	}
	r.paths[path] = doc.URI
	return projected
}

// Lookup returns the projection of uri, failing when the registry holds a
// different version than the one requested.
func (r *Registry) Lookup(uri string, version int32) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, uri)
	}
	if e.LastSeenVersion != version {
		return nil, fmt.Errorf("%w: %s has version %d, requested %d", ErrStaleVersion, uri, e.LastSeenVersion, version)
	}
	return e.Document, nil
}

// ByPath returns the current entry of the document with the given file name.
func (r *Registry) ByPath(path string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uri, ok := r.paths[path]
	if !ok {
		return nil, false
	}
	e, ok := r.entries[uri]
	return e, ok
}

// Remove destroys the entry of a closed document.
func (r *Registry) Remove(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[uri]; ok {
		delete(r.paths, e.Path)
		delete(r.entries, uri)
	}
	r.cache.Remove(uri)
}

// Paths returns the file names of all registered documents, sorted.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, 0, len(r.paths))
	for p := range r.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
