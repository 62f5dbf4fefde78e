package walker

import (
	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/syntax"
)

const (
	linebreakGlyph = "⮰"
	boldMathFont   = `font-family: "NewComputerModernMath"; font-weight: bold;`
	linebreakStyle = "font-family: NewComputerModernMath; font-weight: bold;"
)

func (w *walker) linebreak(e syntax.Linebreak, p params) (*decoration.Set, error) {
	set := decoration.NewSet(w.limit)
	err := set.Style(e.Node().Span(), p.key("linebreak"), linebreakGlyph, symbols.Comparison, p.style+linebreakStyle, p.off)
	return set, err
}

// shorthand decorates a math shorthand. Minus and asterisk fall back to
// their ASCII forms, the double brackets are set delimiters, everything
// else keeps its glyph as a bold relation.
func (w *walker) shorthand(e syntax.Shorthand, p params) (*decoration.Set, error) {
	glyph := e.Get()
	color, style, content := symbols.Comparison, boldMathFont, string(glyph)
	switch glyph {
	case '−':
		color, style, content = symbols.Operator, "", "-"
	case '∗':
		color, style, content = symbols.Operator, "", "*"
	case '⟦', '⟧':
		color, style = symbols.Set, ""
	}

	set := decoration.NewSet(w.limit)
	return set, set.Style(e.Node().Span(), p.key(content), content, color, p.style+style, p.off)
}

// textOperators are the single characters decorated wherever they appear.
var textOperators = map[string]symbols.Color{
	"+": symbols.Operator,
	"=": symbols.Comparison,
	"<": symbols.Comparison,
	">": symbols.Comparison,
	"[": symbols.Set,
	"]": symbols.Set,
}

// text decorates operator characters everywhere and any other text only
// inside a lifted attachment.
func (w *walker) text(e syntax.Text, p params) (*decoration.Set, error) {
	set := decoration.NewSet(w.limit)
	t := e.Get()
	if color, ok := textOperators[t]; ok {
		return set, set.Style(e.Node().Span(), p.key(t), t, color, p.style, p.off)
	}
	if p.state.IsAttachment {
		return set, set.Style(e.Node().Span(), p.key("text-"+t), t, symbols.Number, p.style, p.off)
	}
	return set, nil
}

// str decorates a string literal only inside a lifted attachment.
func (w *walker) str(e syntax.Str, p params) (*decoration.Set, error) {
	set := decoration.NewSet(w.limit)
	if !p.state.IsAttachment {
		return set, nil
	}
	t := e.Get()
	return set, set.Style(e.Node().Span(), p.key("text-"+t), t, symbols.Number, p.style, p.off)
}
