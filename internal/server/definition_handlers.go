package server

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/sync/errgroup"
)

const maxWorkspaceSymbols = 128

func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if locs := s.mode.Definition(doc, params.Position); locs != nil {
		return locs, nil
	}
	return nil, nil
}

func (s *Server) textDocumentReferences(
	context *glsp.Context,
	params *protocol.ReferenceParams,
) ([]protocol.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return s.mode.References(doc, params.Position), nil
}

func (s *Server) textDocumentDocumentSymbol(
	context *glsp.Context,
	params *protocol.DocumentSymbolParams,
) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return s.mode.Symbols(doc), nil
}

// workspaceSymbol matches the query against the symbols of every workspace
// file, tolerating a few typos in longer queries.
func (s *Server) workspaceSymbol(
	context *glsp.Context,
	params *protocol.WorkspaceSymbolParams,
) ([]protocol.SymbolInformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == nil {
		return nil, nil
	}
	symbols := s.mode.WorkspaceSymbols()
	names := make([]string, len(symbols))
	for i, sym := range symbols {
		names[i] = sym.Name
	}
	hits, err := fuzzyFilter(params.Query, names, maxWorkspaceSymbols)
	if err != nil {
		return nil, fmt.Errorf("failed to filter workspace symbols: %w", err)
	}
	out := make([]protocol.SymbolInformation, 0, len(hits))
	for _, i := range hits {
		out = append(out, symbols[i])
	}
	return out, nil
}

// tolerance is the number of edits a query of n runes may be off by.
func tolerance(n int) int {
	switch {
	case n < 4:
		return 0
	case n < 8:
		return 1
	}
	return 2
}

// fuzzyFilter returns, in order, the indexes of the first maxHits names that
// contain pattern up to tolerance(len(pattern)) edits, ignoring case. Only
// the first 63 runes of pattern are matched.
func fuzzyFilter(pattern string, names []string, maxHits int) ([]int, error) {
	runes := []rune(strings.ToLower(pattern))
	if len(runes) > 63 {
		runes = runes[:63]
	}
	matched := make([]bool, len(names))
	if len(runes) == 0 {
		for i := range matched {
			matched[i] = true
		}
	} else {
		masks := make(map[rune]uint64, len(runes))
		for i, r := range runes {
			masks[r] |= 1 << uint(i)
		}
		highest := uint64(1) << uint(len(runes)-1)
		k := tolerance(len(runes))

		const chunk = 256
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for lo := 0; lo < len(names); lo += chunk {
			lo := lo
			hi := min(lo+chunk, len(names))
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					matched[i] = bitapFuzzyMatch(strings.ToLower(names[i]), masks, highest, k)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var hits []int
	for i, ok := range matched {
		if ok {
			hits = append(hits, i)
			if len(hits) == maxHits {
				break
			}
		}
	}
	return hits, nil
}

// bitapFuzzyMatch reports whether the pattern encoded by masks occurs in
// text with at most k substitutions, insertions or deletions.
func bitapFuzzyMatch(text string, masks map[rune]uint64, highest uint64, k int) bool {
	r := make([]uint64, k+1)
	for d := range r {
		r[d] = (1 << uint(d)) - 1
	}
	for _, c := range text {
		mask := masks[c]
		prev := r[0]
		r[0] = ((r[0] << 1) | 1) & mask
		for d := 1; d <= k; d++ {
			old := r[d]
			r[d] = (((old << 1) | 1) & mask) | // match
				((prev << 1) | 1) | // substitution
				prev | // extra character in text
				((r[d-1] << 1) | 1) // missing character in text
			prev = old
		}
		for d := 0; d <= k; d++ {
			if r[d]&highest != 0 {
				return true
			}
		}
	}
	return false
}
