package analysis

import (
	"sort"

	"github.com/sandersn/vetur/internal/ast"
)

type CompletionEntry struct {
	Name     string
	Kind     string
	SortText string
}

type CompletionInfo struct {
	IsMemberCompletion bool
	Entries            []CompletionEntry
}

type CompletionEntryDetails struct {
	Name          string
	Kind          string
	DisplayParts  []SymbolDisplayPart
	Documentation []SymbolDisplayPart
}

// candidate is a completion entry together with what it describes.
type candidate struct {
	entry  CompletionEntry
	symbol *Symbol
	member *Member
	owner  string
	global *global
}

// CompletionsAtPosition lists the names available at offset. After a '.' the
// members of the receiver are listed instead.
func (s *Service) CompletionsAtPosition(fileName string, offset int) *CompletionInfo {
	fs := s.bound(fileName)
	if fs == nil {
		return nil
	}
	cands, member, ok := s.candidates(fs, offset)
	if !ok {
		return nil
	}
	info := &CompletionInfo{IsMemberCompletion: member}
	for _, c := range cands {
		info.Entries = append(info.Entries, c.entry)
	}
	return info
}

// CompletionEntryDetails describes the entry called name at offset.
func (s *Service) CompletionEntryDetails(fileName string, offset int, name string) *CompletionEntryDetails {
	fs := s.bound(fileName)
	if fs == nil {
		return nil
	}
	cands, _, ok := s.candidates(fs, offset)
	if !ok {
		return nil
	}
	for _, c := range cands {
		if c.entry.Name != name {
			continue
		}
		d := &CompletionEntryDetails{Name: name, Kind: c.entry.Kind}
		switch {
		case c.symbol != nil:
			d.DisplayParts = displaySymbol(fs.file, c.symbol)
			d.Documentation = jsDoc(fs.file, c.symbol.Decl().Name)
		case c.member != nil:
			d.DisplayParts = displayMember(fs.file, c.owner, c.member)
			d.Documentation = memberDoc(fs.file, c.member)
		case c.global != nil:
			d.DisplayParts = displayGlobal(c.global)
			if c.global.Doc != "" {
				d.Documentation = []SymbolDisplayPart{{Text: c.global.Doc, Kind: PartText}}
			}
		default:
			d.DisplayParts = []SymbolDisplayPart{{Text: name, Kind: PartKeyword}}
		}
		return d
	}
	return nil
}

func memberDoc(sf *ast.SourceFile, m *Member) []SymbolDisplayPart {
	if m.Node != nil {
		return jsDoc(sf, m.Node)
	}
	if m.Doc != "" {
		return []SymbolDisplayPart{{Text: m.Doc, Kind: PartText}}
	}
	return nil
}

func (s *Service) candidates(fs *fileState, offset int) ([]candidate, bool, bool) {
	sf := fs.file
	if offset < 0 || offset > len(sf.Text) || insideLiteral(sf, offset) {
		return nil, false, false
	}
	start := offset
	for start > 0 && isIdentByte(sf.Text[start-1]) {
		start--
	}
	dot := start
	for dot > 0 && isSpace(sf.Text[dot-1]) {
		dot--
	}
	if dot > 0 && sf.Text[dot-1] == '.' && (dot < 2 || sf.Text[dot-2] != '.') {
		return s.memberCandidates(fs, dot-1), true, true
	}
	return s.scopeCandidates(fs, start), false, true
}

func (s *Service) memberCandidates(fs *fileState, dot int) []candidate {
	end := dot
	for end > 0 && isSpace(fs.file.Text[end-1]) {
		end--
	}
	if end == 0 {
		return nil
	}
	recv := ast.NodeAt(fs.file.Root, end-1)
	var out []candidate
	addMembers := func(owner string, ms []*Member) {
		for _, m := range ms {
			out = append(out, candidate{
				entry:  CompletionEntry{Name: m.Name, Kind: m.Kind, SortText: "0"},
				member: m,
				owner:  owner,
			})
		}
	}
	switch recv.Type {
	case "this":
		if inst := instanceAtNode(fs, recv); inst != nil {
			addMembers(inst.Type, inst.SortedMembers())
		} else if cls := recv.Ancestor("class_body"); cls != nil {
			addMembers("", classMembers(fs.file, cls))
		}
	case "identifier":
		sym := fs.binding.SymbolAt(recv)
		switch {
		case isFrameworkConstructor(sym, s.framework):
			addMembers(s.framework.Constructor, sortedMembers(staticMembers))
		case sym != nil:
			if obj := initializerObject(sym); obj != nil {
				addMembers(sym.Name, objectMembers(fs.file, obj))
			}
		default:
			if g := globals[recv.Text]; g != nil {
				addMembers(g.Name, sortedMembers(g.Members))
			}
		}
	}
	return out
}

func (s *Service) scopeCandidates(fs *fileState, offset int) []candidate {
	at := ast.NodeAt(fs.file.Root, offset)
	seen := make(map[string]bool)
	var out []candidate
	for sc := fs.binding.ScopeAt(at); sc != nil; sc = sc.Parent {
		var syms []*Symbol
		for _, sym := range sc.Symbols {
			if !sym.Synthesized && !seen[sym.Name] {
				syms = append(syms, sym)
			}
		}
		sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
		for _, sym := range syms {
			seen[sym.Name] = true
			out = append(out, candidate{
				entry:  CompletionEntry{Name: sym.Name, Kind: elementKind(sym), SortText: "0"},
				symbol: sym,
			})
		}
	}
	names := make([]string, 0, len(globals))
	for name := range globals {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		g := globals[name]
		out = append(out, candidate{
			entry:  CompletionEntry{Name: name, Kind: g.Kind, SortText: "1"},
			global: g,
		})
	}
	kws := keywords
	if fs.file.Lang == "typescript" {
		kws = append(append([]string(nil), keywords...), typeScriptKeywords...)
	}
	for _, kw := range kws {
		out = append(out, candidate{entry: CompletionEntry{Name: kw, Kind: KindKeyword, SortText: "2"}})
	}
	return out
}

func sortedMembers(ms map[string]*Member) []*Member {
	out := make([]*Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// initializerObject returns the object literal a variable is initialized
// with.
func initializerObject(sym *Symbol) *ast.Node {
	switch sym.Kind {
	case SymbolVar, SymbolLet, SymbolConst:
	default:
		return nil
	}
	d := sym.Decl()
	if d.Node.Type != "variable_declarator" || d.Name.Parent != d.Node {
		return nil
	}
	return unparen(d.Node.Child("value"), "object")
}

// objectMembers lists the statically named members of an object literal.
func objectMembers(sf *ast.SourceFile, obj *ast.Node) []*Member {
	var out []*Member
	for _, c := range obj.Children {
		var key *ast.Node
		kind := KindProperty
		switch c.Type {
		case "pair":
			key = c.Child("key")
			if v := c.Child("value"); v != nil && isFunctionLike(v) {
				kind = KindMethod
			}
		case "method_definition":
			key, kind = c.Child("name"), KindMethod
		case "shorthand_property_identifier":
			key = c
		}
		name, ok := KeyName(key)
		if !ok {
			continue
		}
		m := &Member{Name: name, Kind: kind, Node: key}
		if kind == KindMethod {
			m.Params = paramNames(sf, functionOf(c))
		}
		out = append(out, m)
	}
	return out
}

// classMembers lists the methods and fields of a class body.
func classMembers(sf *ast.SourceFile, body *ast.Node) []*Member {
	var out []*Member
	for _, c := range body.Children {
		switch c.Type {
		case "method_definition":
			if name, ok := KeyName(c.Child("name")); ok && name != "constructor" {
				out = append(out, &Member{Name: name, Kind: KindMethod, Node: c.Child("name"), Params: paramNames(sf, c)})
			}
		case "field_definition", "public_field_definition":
			key := c.Child("property")
			if key == nil {
				key = c.Child("name")
			}
			if name, ok := KeyName(key); ok {
				out = append(out, &Member{Name: name, Kind: KindProperty, Node: key})
			}
		}
	}
	return out
}

// insideLiteral reports whether offset falls inside a string, comment or
// regular expression token.
func insideLiteral(sf *ast.SourceFile, offset int) bool {
	i := sort.Search(len(sf.Tokens), func(i int) bool { return sf.Tokens[i].End >= offset })
	for ; i < len(sf.Tokens) && sf.Tokens[i].Pos < offset; i++ {
		t := sf.Tokens[i]
		switch t.Type {
		case "string", "regex", "string_fragment":
			if offset < t.End {
				return true
			}
		case "comment":
			if offset < t.End || (t.End-t.Pos >= 2 && sf.Text[t.Pos+1] == '/') {
				return true
			}
		}
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
