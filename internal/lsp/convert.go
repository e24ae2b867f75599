package lsp

import (
	"github.com/dgallion1/docnav/internal/fold"
	"github.com/dgallion1/docnav/internal/outline"
	"go.lsp.dev/protocol"
)

func position(p outline.Position) protocol.Position {
	return protocol.Position{Line: uint32(p.Row), Character: uint32(p.Column)}
}

func symbolKind(n *outline.Node) protocol.SymbolKind {
	switch n.Category() {
	case outline.TagInfo:
		return protocol.SymbolKindConstant
	case outline.TagSuccess:
		return protocol.SymbolKindBoolean
	case outline.TagWarning, outline.TagError:
		return protocol.SymbolKindEvent
	}
	return protocol.SymbolKindString
}

// documentSymbols converts the forest into nested symbols. A symbol's
// range covers its own section, its selection range the heading.
func documentSymbols(forest []*outline.Node) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(forest))
	for _, n := range forest {
		name := n.Text
		if name == "" {
			name = "(untitled)"
		}
		sym := protocol.DocumentSymbol{
			Name:           name,
			Kind:           symbolKind(n),
			Range:          protocol.Range{Start: position(n.Start), End: position(n.RangeEnd)},
			SelectionRange: protocol.Range{Start: position(n.Start), End: position(n.End)},
		}
		if cat := n.Category(); cat != outline.CategoryStandard {
			sym.Detail = cat
		}
		if len(n.Children) > 0 {
			sym.Children = documentSymbols(n.Children)
		}
		out = append(out, sym)
	}
	return out
}

// foldingRanges converts fold ranges. The preamble is reported as a
// comment region so clients can tell it apart.
func foldingRanges(ranges []fold.Range) []protocol.FoldingRange {
	out := make([]protocol.FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		kind := protocol.FoldingRangeKind("region")
		if r.Preamble {
			kind = protocol.FoldingRangeKind("comment")
		}
		out = append(out, protocol.FoldingRange{
			StartLine: uint32(r.Start),
			EndLine:   uint32(r.End),
			Kind:      kind,
		})
	}
	return out
}
