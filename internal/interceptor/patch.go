package interceptor

import (
	"github.com/sandersn/vetur/internal/analysis"
	"github.com/sandersn/vetur/internal/ast"
)

// Patch rewrites sf in place so the default export of a component is typed
// as a framework instance:
//
//	import { Vue as Vue } from 'vue'   (unpositioned)
//	export default new Vue({ ... })    (new expression spans the literal)
//
// The import is inserted once. The wrap only happens when the first default
// export is a plain object literal; anything else is left as is. Patch
// reports whether the export was wrapped.
func Patch(sf *ast.SourceFile, fw analysis.Framework) bool {
	if patched(sf) {
		return false
	}
	sf.Root.InsertChild(0, frameworkImport(fw))

	obj := defaultExportObject(sf)
	if obj == nil {
		return false
	}
	export := obj.Parent

	args := &ast.Node{
		Type:  "arguments",
		Field: "arguments",
		Pos:   obj.Pos,
		End:   obj.End,
		Flags: ast.FlagSynthesized,
	}
	ctor := ast.NewSynthetic("identifier", fw.Constructor)
	ctor.Field = "constructor"
	wrapper := &ast.Node{
		Type:  "new_expression",
		Pos:   obj.Pos,
		End:   obj.End,
		Flags: ast.FlagSynthesized,
	}
	wrapper.Append(ctor)
	wrapper.Append(args)

	export.ReplaceChild(obj, wrapper)
	obj.Field = ""
	args.Append(obj)
	return true
}

func patched(sf *ast.SourceFile) bool {
	if len(sf.Root.Children) == 0 {
		return false
	}
	first := sf.Root.Children[0]
	return first.Type == "import_statement" && first.Synthesized()
}

func frameworkImport(fw analysis.Framework) *ast.Node {
	name := ast.NewSynthetic("identifier", fw.Constructor)
	name.Field = "name"
	alias := ast.NewSynthetic("identifier", fw.Constructor)
	alias.Field = "alias"
	source := ast.NewSynthetic("string", "'"+fw.Module+"'")
	source.Field = "source"
	return ast.NewSynthetic("import_statement", "",
		ast.NewSynthetic("import_clause", "",
			ast.NewSynthetic("named_imports", "",
				ast.NewSynthetic("import_specifier", "", name, alias),
			),
		),
		source,
	)
}

// defaultExportObject returns the object literal exported by the first
// top-level default export, or nil when that export is anything else.
func defaultExportObject(sf *ast.SourceFile) *ast.Node {
	for _, st := range sf.Root.Children {
		if st.Type != "export_statement" || st.FirstOfType("default") == nil {
			continue
		}
		if v := st.Child("value"); v != nil && v.Type == "object" {
			return v
		}
		return nil
	}
	return nil
}
