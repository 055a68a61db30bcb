package feature

import (
	"github.com/sandersn/vetur/internal/analysis"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func convertKind(kind string) protocol.CompletionItemKind {
	switch kind {
	case analysis.KindPrimitiveType, analysis.KindKeyword:
		return protocol.CompletionItemKindKeyword
	case analysis.KindVariable, analysis.KindLocalVariable:
		return protocol.CompletionItemKindVariable
	case analysis.KindProperty, analysis.KindGetter, analysis.KindSetter:
		return protocol.CompletionItemKindField
	case analysis.KindFunction, analysis.KindMethod, "construct", "call", "index":
		return protocol.CompletionItemKindFunction
	case analysis.KindEnum:
		return protocol.CompletionItemKindEnum
	case analysis.KindModule:
		return protocol.CompletionItemKindModule
	case analysis.KindClass:
		return protocol.CompletionItemKindClass
	case analysis.KindInterface:
		return protocol.CompletionItemKindInterface
	case analysis.KindWarning:
		return protocol.CompletionItemKindFile
	}
	return protocol.CompletionItemKindProperty
}

func convertSymbolKind(kind string) protocol.SymbolKind {
	switch kind {
	case analysis.KindVariable, analysis.KindLocalVariable, analysis.KindConst:
		return protocol.SymbolKindVariable
	case analysis.KindFunction, analysis.KindLocalFunction:
		return protocol.SymbolKindFunction
	case analysis.KindEnum:
		return protocol.SymbolKindEnum
	case analysis.KindModule:
		return protocol.SymbolKindModule
	case analysis.KindClass:
		return protocol.SymbolKindClass
	case analysis.KindInterface:
		return protocol.SymbolKindInterface
	case analysis.KindMethod:
		return protocol.SymbolKindMethod
	case analysis.KindProperty, analysis.KindGetter, analysis.KindSetter:
		return protocol.SymbolKindProperty
	}
	return protocol.SymbolKindVariable
}
