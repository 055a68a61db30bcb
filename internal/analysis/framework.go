package analysis

import (
	"sort"
	"strings"

	"github.com/sandersn/vetur/internal/ast"
)

// Member is one member of a framework instance.
type Member struct {
	Name   string
	Kind   string
	Node   *ast.Node
	Params []string
	Doc    string
}

// Instance is the typed `this` of the options object passed to a framework
// constructor.
type Instance struct {
	file    *ast.SourceFile
	Type    string
	Options *ast.Node
	Members map[string]*Member
	// Open is set when the member set cannot be known, for example because
	// of spreads, mixins or computed keys. Open instances are never checked.
	Open bool
}

// Lookup finds a declared or built-in member.
func (inst *Instance) Lookup(name string) *Member {
	if m, ok := inst.Members[name]; ok {
		return m
	}
	return builtinMembers[name]
}

// SortedMembers returns declared members followed by built-ins, each group
// sorted by name.
func (inst *Instance) SortedMembers() []*Member {
	var own, builtin []*Member
	for _, m := range inst.Members {
		own = append(own, m)
	}
	for name, m := range builtinMembers {
		if _, shadowed := inst.Members[name]; !shadowed {
			builtin = append(builtin, m)
		}
	}
	byName := func(ms []*Member) {
		sort.Slice(ms, func(i, j int) bool { return ms[i].Name < ms[j].Name })
	}
	byName(own)
	byName(builtin)
	return append(own, builtin...)
}

func builtin(name, kind, doc string, params ...string) *Member {
	return &Member{Name: name, Kind: kind, Params: params, Doc: doc}
}

var builtinMembers = map[string]*Member{}

var staticMembers = map[string]*Member{}

func init() {
	for _, m := range []*Member{
		builtin("$data", KindProperty, "The data object that the instance is observing."),
		builtin("$props", KindProperty, "An object representing the current props the component has received."),
		builtin("$el", KindProperty, "The root DOM element that the instance is managing."),
		builtin("$options", KindProperty, "The instantiation options used for the current instance."),
		builtin("$parent", KindProperty, "The parent instance, if the current instance has one."),
		builtin("$root", KindProperty, "The root instance of the current component tree."),
		builtin("$children", KindProperty, "The direct child components of the current instance."),
		builtin("$refs", KindProperty, "An object of DOM elements and component instances registered with ref attributes."),
		builtin("$slots", KindProperty, "Used to programmatically access content distributed by slots."),
		builtin("$scopedSlots", KindProperty, "Used to programmatically access scoped slots."),
		builtin("$isServer", KindProperty, "Whether the current instance is running on the server."),
		builtin("$ssrContext", KindProperty, "The server-side rendering context."),
		builtin("$vnode", KindProperty, "The placeholder node of the instance in its parent tree."),
		builtin("$attrs", KindProperty, "Parent-scope attribute bindings not recognized as props."),
		builtin("$listeners", KindProperty, "Parent-scope event listeners."),
		builtin("$mount", KindMethod, "Manually start the mounting of an unmounted instance.", "elementOrSelector?", "hydrating?"),
		builtin("$forceUpdate", KindMethod, "Force the instance to re-render."),
		builtin("$destroy", KindMethod, "Completely destroy the instance."),
		builtin("$set", KindMethod, "Set a reactive property on an object.", "object", "key", "value"),
		builtin("$delete", KindMethod, "Delete a reactive property of an object.", "object", "key"),
		builtin("$watch", KindMethod, "Watch an expression or a computed function for changes.", "expOrFn", "callback", "options?"),
		builtin("$on", KindMethod, "Listen for a custom event on the current instance.", "event", "callback"),
		builtin("$once", KindMethod, "Listen for a custom event, but only once.", "event", "callback"),
		builtin("$off", KindMethod, "Remove custom event listeners.", "event?", "callback?"),
		builtin("$emit", KindMethod, "Trigger an event on the current instance.", "event", "...args"),
		builtin("$nextTick", KindMethod, "Defer the callback to be executed after the next update cycle.", "callback?"),
		builtin("$createElement", KindMethod, "Create a virtual node.", "tag?", "data?", "children?"),
	} {
		builtinMembers[m.Name] = m
	}
	for _, m := range []*Member{
		builtin("extend", KindMethod, "Create a subclass of the base constructor.", "options"),
		builtin("nextTick", KindMethod, "Defer the callback to be executed after the next update cycle.", "callback?"),
		builtin("set", KindMethod, "Set a reactive property on an object.", "object", "key", "value"),
		builtin("delete", KindMethod, "Delete a reactive property of an object.", "object", "key"),
		builtin("directive", KindMethod, "Register or retrieve a global directive.", "id", "definition?"),
		builtin("filter", KindMethod, "Register or retrieve a global filter.", "id", "definition?"),
		builtin("component", KindMethod, "Register or retrieve a global component.", "id", "definition?"),
		builtin("use", KindMethod, "Install a plugin.", "plugin", "...options"),
		builtin("mixin", KindMethod, "Apply a mixin globally.", "mixin"),
		builtin("compile", KindMethod, "Compile a template string into a render function.", "template"),
		builtin("config", KindProperty, "Global configuration."),
		builtin("version", KindProperty, "The installed version."),
	} {
		staticMembers[m.Name] = m
	}
}

// instanceGroups are the option groups whose functions share the instance
// `this`.
var instanceGroups = map[string]bool{"methods": true, "computed": true, "watch": true}

// findInstances locates every `new C(obj)` where C is the framework
// constructor imported from the framework module.
func findInstances(b *Binding, fw Framework) map[*ast.Node]*Instance {
	var out map[*ast.Node]*Instance
	ast.Walk(b.File.Root, func(n *ast.Node) bool {
		if n.Type != "new_expression" {
			return true
		}
		ctor := n.Child("constructor")
		if ctor == nil || !isFrameworkConstructor(b.SymbolAt(ctor), fw) {
			return true
		}
		args := n.Child("arguments")
		if args == nil {
			return true
		}
		if obj := args.FirstOfType("object"); obj != nil {
			if out == nil {
				out = make(map[*ast.Node]*Instance)
			}
			out[obj] = newInstance(b.File, fw.Constructor, obj)
		}
		return true
	})
	return out
}

func isFrameworkConstructor(sym *Symbol, fw Framework) bool {
	return sym != nil && sym.Import != nil && sym.Import.Module == fw.Module &&
		(sym.Import.Imported == "default" || sym.Import.Imported == fw.Constructor)
}

func newInstance(file *ast.SourceFile, typ string, obj *ast.Node) *Instance {
	inst := &Instance{file: file, Type: typ, Options: obj, Members: make(map[string]*Member)}
	for _, c := range obj.Children {
		switch c.Type {
		case "pair":
			key := c.Child("key")
			name, ok := KeyName(key)
			if !ok {
				continue
			}
			inst.addOption(name, c.Child("value"))
		case "method_definition":
			if name, ok := KeyName(c.Child("name")); ok && name == "data" {
				inst.addData(c)
			}
		case "spread_element":
			inst.Open = true
		}
	}
	return inst
}

func (inst *Instance) addOption(name string, value *ast.Node) {
	if value == nil {
		return
	}
	switch name {
	case "data":
		inst.addData(value)
	case "props":
		switch value.Type {
		case "array":
			for _, el := range value.Children {
				switch el.Type {
				case "string":
					p := Unquote(el.Text)
					inst.Members[p] = &Member{Name: p, Kind: KindProperty, Node: el}
				case "spread_element":
					inst.Open = true
				}
			}
		case "object":
			inst.addKeys(value, KindProperty)
		default:
			inst.Open = true
		}
	case "computed":
		inst.addKeys(value, KindProperty)
	case "methods":
		inst.addKeys(value, KindMethod)
	case "mixins", "extends":
		inst.Open = true
	}
}

func (inst *Instance) addData(value *ast.Node) {
	if value.Type == "object" {
		inst.addKeys(value, KindProperty)
		return
	}
	if obj := returnedObject(value); obj != nil {
		inst.addKeys(obj, KindProperty)
		return
	}
	inst.Open = true
}

func (inst *Instance) addKeys(obj *ast.Node, kind string) {
	if obj.Type != "object" {
		inst.Open = true
		return
	}
	for _, c := range obj.Children {
		var key *ast.Node
		switch c.Type {
		case "pair":
			key = c.Child("key")
		case "method_definition":
			key = c.Child("name")
		case "shorthand_property_identifier":
			key = c
		case "spread_element":
			inst.Open = true
			continue
		default:
			continue
		}
		name, ok := KeyName(key)
		if !ok {
			inst.Open = true
			continue
		}
		m := &Member{Name: name, Kind: kind, Node: key}
		if kind == KindMethod {
			m.Params = paramNames(inst.file, functionOf(c))
		}
		inst.Members[name] = m
	}
}

// returnedObject finds the object literal a function returns from its top
// level.
func returnedObject(fn *ast.Node) *ast.Node {
	body := fn.Child("body")
	if body == nil {
		return nil
	}
	if body.Type != "statement_block" {
		return unparen(body, "object")
	}
	for _, st := range body.Children {
		if st.Type != "return_statement" {
			continue
		}
		for _, c := range st.Children {
			if obj := unparen(c, "object"); obj != nil {
				return obj
			}
		}
	}
	return nil
}

func unparen(n *ast.Node, typ string) *ast.Node {
	for n != nil && n.Type == "parenthesized_expression" {
		var inner *ast.Node
		for _, c := range n.Children {
			inner = c
		}
		n = inner
	}
	if n != nil && n.Type == typ {
		return n
	}
	return nil
}

// KeyName returns the static name of a property key.
func KeyName(key *ast.Node) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type {
	case "property_identifier", "identifier", "shorthand_property_identifier", "number", "private_property_identifier":
		return key.Text, true
	case "string":
		return Unquote(key.Text), true
	}
	return "", false
}

// functionOf returns the function an object member defines, if any.
func functionOf(member *ast.Node) *ast.Node {
	switch member.Type {
	case "method_definition":
		return member
	case "pair":
		if v := member.Child("value"); v != nil && isFunctionLike(v) {
			return v
		}
	}
	return nil
}

func isFunctionLike(n *ast.Node) bool {
	switch n.Type {
	case "function_expression", "function", "generator_function", "arrow_function",
		"method_definition", "function_declaration", "generator_function_declaration":
		return true
	}
	return false
}

func paramNames(sf *ast.SourceFile, fn *ast.Node) []string {
	if fn == nil {
		return nil
	}
	if p := fn.Child("parameter"); p != nil {
		return []string{sf.Content(p)}
	}
	params := fn.Child("parameters")
	if params == nil {
		return nil
	}
	var out []string
	for _, p := range params.Children {
		if label := paramLabel(sf, p); label != "" {
			out = append(out, label)
		}
	}
	return out
}

// paramLabel renders a parameter without its default value.
func paramLabel(sf *ast.SourceFile, p *ast.Node) string {
	switch p.Type {
	case "identifier", "object_pattern", "array_pattern", "rest_pattern":
		return sf.Content(p)
	case "assignment_pattern":
		if l := p.Child("left"); l != nil {
			return sf.Content(l) + "?"
		}
	case "required_parameter", "optional_parameter":
		end := p.End
		if v := p.Child("value"); v != nil {
			end = p.Pos
			for _, c := range p.Children {
				if c != v && c.End <= v.Pos && c.End > end {
					end = c.End
				}
			}
		}
		label := sf.Text[p.Pos:end]
		if p.Type == "optional_parameter" && p.Child("value") == nil && !strings.Contains(label, "?") {
			label += "?"
		}
		return label
	}
	return ""
}

// instanceAtNode returns the framework instance `this` refers to at n.
func instanceAtNode(fs *fileState, n *ast.Node) *Instance {
	if len(fs.instances) == 0 {
		return nil
	}
	var fn *ast.Node
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == "arrow_function" {
			continue
		}
		if isFunctionLike(p) {
			fn = p
			break
		}
		if p.Type == "class_body" {
			return nil
		}
	}
	if fn == nil {
		return nil
	}
	obj := fn.Parent
	if obj != nil && obj.Type == "pair" {
		obj = obj.Parent
	}
	if obj == nil || obj.Type != "object" {
		return nil
	}
	if inst := fs.instances[obj]; inst != nil {
		return inst
	}
	group, outer := enclosingGroup(obj)
	if inst := fs.instances[outer]; inst != nil && instanceGroups[group] {
		return inst
	}
	if group == "" || outer == nil {
		return nil
	}
	group, outer = enclosingGroup(outer)
	if inst := fs.instances[outer]; inst != nil && (group == "computed" || group == "watch") {
		return inst
	}
	return nil
}

// enclosingGroup returns the key and object of the pair whose value is obj.
func enclosingGroup(obj *ast.Node) (string, *ast.Node) {
	pair := obj.Parent
	if pair == nil || pair.Type != "pair" || pair.Parent == nil {
		return "", nil
	}
	name, _ := KeyName(pair.Child("key"))
	return name, pair.Parent
}
