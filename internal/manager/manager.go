// Package manager owns the host documents of an editor session.
package manager

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sandersn/vetur/internal/projection"
	"github.com/sandersn/vetur/internal/sitteradapter"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

var ErrNotOpen = errors.New("document not open")

// DocumentManager keeps the text and version of every open document.
type DocumentManager struct {
	mu   sync.Mutex
	docs map[string]projection.HostDocument
}

func NewDocumentManager() *DocumentManager {
	return &DocumentManager{docs: make(map[string]projection.HostDocument)}
}

// Open registers a document at its initial version.
func (dm *DocumentManager) Open(uri string, version int32, text string) projection.HostDocument {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc := projection.HostDocument{URI: uri, Version: version, Text: text}
	dm.docs[uri] = doc
	return doc
}

// Get returns the current state of an open document.
func (dm *DocumentManager) Get(uri string) (projection.HostDocument, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.docs[uri]
	if !ok {
		return projection.HostDocument{}, fmt.Errorf("%w: %s", ErrNotOpen, uri)
	}
	return doc, nil
}

// ApplyChanges applies content changes in order and stamps the result with
// version. Versions never go backwards.
func (dm *DocumentManager) ApplyChanges(
	uri string,
	version int32,
	changes []any,
) (projection.HostDocument, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.docs[uri]
	if !ok {
		return projection.HostDocument{}, fmt.Errorf("%w: %s", ErrNotOpen, uri)
	}
	for _, c := range changes {
		switch change := c.(type) {
		case protocol.TextDocumentContentChangeEvent:
			doc.Text = sitteradapter.ApplyTextEdit(change, doc.Text)
		case protocol.TextDocumentContentChangeEventWhole:
			doc.Text = change.Text
		default:
			return doc, fmt.Errorf("unsupported content change %T for %s", c, uri)
		}
	}
	if version > doc.Version {
		doc.Version = version
	} else {
		doc.Version++
	}
	dm.docs[uri] = doc
	return doc, nil
}

// Close forgets a document.
func (dm *DocumentManager) Close(uri string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.docs, uri)
}
