package analysis

// Element kinds reported by completions, quick info and navigation items.
const (
	KindUnknown        = ""
	KindWarning        = "warning"
	KindKeyword        = "keyword"
	KindScript         = "script"
	KindModule         = "module"
	KindClass          = "class"
	KindInterface      = "interface"
	KindType           = "type"
	KindEnum           = "enum"
	KindEnumMember     = "enum member"
	KindVariable       = "var"
	KindLocalVariable  = "local var"
	KindFunction       = "function"
	KindLocalFunction  = "local function"
	KindMethod         = "method"
	KindGetter         = "getter"
	KindSetter         = "setter"
	KindProperty       = "property"
	KindConstructor    = "constructor"
	KindParameter      = "parameter"
	KindPrimitiveType  = "primitive type"
	KindAlias          = "alias"
	KindConst          = "const"
	KindLet            = "let"
	KindExternalModule = "external module name"
)

// Display part kinds.
const (
	PartText          = "text"
	PartKeyword       = "keyword"
	PartPunctuation   = "punctuation"
	PartSpace         = "space"
	PartOperator      = "operator"
	PartParameterName = "parameterName"
	PartPropertyName  = "propertyName"
	PartLocalName     = "localName"
	PartFunctionName  = "functionName"
	PartClassName     = "className"
	PartAliasName     = "aliasName"
	PartModuleName    = "moduleName"
	PartMethodName    = "methodName"
	PartStringLiteral = "stringLiteral"
)

type SymbolDisplayPart struct {
	Text string
	Kind string
}

// DisplayPartsToString concatenates the text of parts.
func DisplayPartsToString(parts []SymbolDisplayPart) string {
	var n int
	for _, p := range parts {
		n += len(p.Text)
	}
	b := make([]byte, 0, n)
	for _, p := range parts {
		b = append(b, p.Text...)
	}
	return string(b)
}

type partsBuilder []SymbolDisplayPart

func (b *partsBuilder) add(kind, text string) *partsBuilder {
	*b = append(*b, SymbolDisplayPart{Text: text, Kind: kind})
	return b
}

func (b *partsBuilder) keyword(text string) *partsBuilder { return b.add(PartKeyword, text) }
func (b *partsBuilder) punct(text string) *partsBuilder   { return b.add(PartPunctuation, text) }
func (b *partsBuilder) space() *partsBuilder              { return b.add(PartSpace, " ") }
func (b *partsBuilder) text(text string) *partsBuilder    { return b.add(PartText, text) }
