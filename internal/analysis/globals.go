package analysis

// global describes a name provided by the default library.
type global struct {
	Name    string
	Kind    string
	Type    string
	Doc     string
	Params  []string
	Members map[string]*Member
}

func members(ms ...*Member) map[string]*Member {
	out := make(map[string]*Member, len(ms))
	for _, m := range ms {
		out[m.Name] = m
	}
	return out
}

var globals = map[string]*global{}

func init() {
	for _, g := range []*global{
		{Name: "console", Kind: KindVariable, Type: "Console", Members: members(
			builtin("log", KindMethod, "Prints to stdout with newline.", "...data"),
			builtin("info", KindMethod, "Prints an informational message.", "...data"),
			builtin("warn", KindMethod, "Prints a warning.", "...data"),
			builtin("error", KindMethod, "Prints an error.", "...data"),
			builtin("debug", KindMethod, "Prints a debug message.", "...data"),
			builtin("table", KindMethod, "Displays tabular data as a table.", "tabularData", "properties?"),
			builtin("time", KindMethod, "Starts a timer.", "label?"),
			builtin("timeEnd", KindMethod, "Stops a timer.", "label?"),
		)},
		{Name: "Math", Kind: KindVariable, Type: "Math", Doc: "An intrinsic object that provides basic mathematics functionality and constants.", Members: members(
			builtin("PI", KindProperty, "Pi. This is the ratio of the circumference of a circle to its diameter."),
			builtin("E", KindProperty, "The mathematical constant e."),
			builtin("abs", KindMethod, "Returns the absolute value of a number.", "x"),
			builtin("ceil", KindMethod, "Returns the smallest integer greater than or equal to its numeric argument.", "x"),
			builtin("floor", KindMethod, "Returns the greatest integer less than or equal to its numeric argument.", "x"),
			builtin("round", KindMethod, "Returns a supplied numeric expression rounded to the nearest integer.", "x"),
			builtin("max", KindMethod, "Returns the larger of a set of supplied numeric expressions.", "...values"),
			builtin("min", KindMethod, "Returns the smaller of a set of supplied numeric expressions.", "...values"),
			builtin("random", KindMethod, "Returns a pseudorandom number between 0 and 1."),
			builtin("sqrt", KindMethod, "Returns the square root of a number.", "x"),
			builtin("pow", KindMethod, "Returns the value of a base expression taken to a specified power.", "x", "y"),
		)},
		{Name: "JSON", Kind: KindVariable, Type: "JSON", Doc: "An intrinsic object that provides functions to convert JavaScript values to and from the JavaScript Object Notation (JSON) format.", Members: members(
			builtin("parse", KindMethod, "Converts a JavaScript Object Notation (JSON) string into an object.", "text", "reviver?"),
			builtin("stringify", KindMethod, "Converts a JavaScript value to a JavaScript Object Notation (JSON) string.", "value", "replacer?", "space?"),
		)},
		{Name: "Object", Kind: KindVariable, Type: "ObjectConstructor", Doc: "Provides functionality common to all JavaScript objects.", Members: members(
			builtin("keys", KindMethod, "Returns the names of the enumerable string properties and methods of an object.", "o"),
			builtin("values", KindMethod, "Returns an array of values of the enumerable properties of an object.", "o"),
			builtin("entries", KindMethod, "Returns an array of key/values of the enumerable properties of an object.", "o"),
			builtin("assign", KindMethod, "Copy the values of all of the enumerable own properties from one or more source objects to a target object.", "target", "...sources"),
			builtin("freeze", KindMethod, "Prevents the modification of existing property attributes and values.", "o"),
			builtin("create", KindMethod, "Creates an object that has the specified prototype.", "o", "properties?"),
			builtin("defineProperty", KindMethod, "Adds a property to an object, or modifies attributes of an existing property.", "o", "p", "attributes"),
		)},
		{Name: "Promise", Kind: KindVariable, Type: "PromiseConstructor", Doc: "Represents the completion of an asynchronous operation.", Params: []string{"executor"}, Members: members(
			builtin("resolve", KindMethod, "Creates a new resolved promise.", "value?"),
			builtin("reject", KindMethod, "Creates a new rejected promise.", "reason?"),
			builtin("all", KindMethod, "Creates a Promise that is resolved when all of the provided Promises resolve.", "values"),
			builtin("race", KindMethod, "Creates a Promise that is settled when any of the provided Promises settles.", "values"),
		)},
		{Name: "Array", Kind: KindVariable, Type: "ArrayConstructor", Params: []string{"...items"}, Members: members(
			builtin("isArray", KindMethod, "Returns true if the value is an array.", "arg"),
			builtin("from", KindMethod, "Creates an array from an array-like object.", "arrayLike", "mapfn?"),
			builtin("of", KindMethod, "Returns a new array from a set of elements.", "...items"),
		)},
		{Name: "String", Kind: KindVariable, Type: "StringConstructor", Params: []string{"value?"}, Doc: "Allows manipulation and formatting of text strings."},
		{Name: "Number", Kind: KindVariable, Type: "NumberConstructor", Params: []string{"value?"}, Doc: "An object that represents a number of any kind."},
		{Name: "Boolean", Kind: KindVariable, Type: "BooleanConstructor", Params: []string{"value?"}},
		{Name: "Date", Kind: KindVariable, Type: "DateConstructor", Params: []string{"value?"}, Doc: "Enables basic storage and retrieval of dates and times."},
		{Name: "RegExp", Kind: KindVariable, Type: "RegExpConstructor", Params: []string{"pattern", "flags?"}},
		{Name: "Error", Kind: KindVariable, Type: "ErrorConstructor", Params: []string{"message?"}},
		{Name: "Map", Kind: KindVariable, Type: "MapConstructor", Params: []string{"entries?"}},
		{Name: "Set", Kind: KindVariable, Type: "SetConstructor", Params: []string{"values?"}},
		{Name: "Symbol", Kind: KindVariable, Type: "SymbolConstructor", Params: []string{"description?"}},
		{Name: "window", Kind: KindVariable, Type: "Window"},
		{Name: "document", Kind: KindVariable, Type: "Document"},
		{Name: "undefined", Kind: KindVariable, Type: "undefined"},
		{Name: "NaN", Kind: KindVariable, Type: "number"},
		{Name: "Infinity", Kind: KindVariable, Type: "number"},
		{Name: "parseInt", Kind: KindFunction, Doc: "Converts a string to an integer.", Params: []string{"s", "radix?"}},
		{Name: "parseFloat", Kind: KindFunction, Doc: "Converts a string to a floating-point number.", Params: []string{"string"}},
		{Name: "isNaN", Kind: KindFunction, Doc: "Returns a Boolean value that indicates whether a value is the reserved value NaN (not a number).", Params: []string{"number"}},
		{Name: "setTimeout", Kind: KindFunction, Params: []string{"handler", "timeout?", "...arguments"}},
		{Name: "clearTimeout", Kind: KindFunction, Params: []string{"handle?"}},
		{Name: "setInterval", Kind: KindFunction, Params: []string{"handler", "timeout?", "...arguments"}},
		{Name: "clearInterval", Kind: KindFunction, Params: []string{"handle?"}},
		{Name: "require", Kind: KindFunction, Params: []string{"id"}},
		{Name: "module", Kind: KindVariable, Type: "NodeModule"},
		{Name: "exports", Kind: KindVariable, Type: "any"},
		{Name: "process", Kind: KindVariable, Type: "NodeJS.Process"},
	} {
		globals[g.Name] = g
	}
}

var keywords = []string{
	"break", "case", "catch", "class", "const", "continue", "debugger", "default",
	"delete", "do", "else", "enum", "export", "extends", "false", "finally", "for",
	"function", "if", "import", "in", "instanceof", "let", "new", "null", "return",
	"super", "switch", "this", "throw", "true", "try", "typeof", "var", "void",
	"while", "with", "yield", "async", "await", "of",
}

var typeScriptKeywords = []string{
	"any", "boolean", "declare", "interface", "keyof", "module", "namespace",
	"never", "number", "private", "protected", "public", "readonly", "string",
	"type", "unknown",
}
