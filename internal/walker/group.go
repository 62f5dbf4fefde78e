package walker

import (
	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/syntax"
)

// math walks a math sequence. A parenthesized group around one simple
// operand is transparent: the parens are hidden and the operand keeps the
// caller's namespace and style. Anything else is walked plain.
func (w *walker) math(e syntax.Math, p params) (*decoration.Set, error) {
	n := e.Node()
	if !w.transparentGroup(n) {
		return w.walkChildren(n, p.plain())
	}

	o := w.newOut()
	o.check(o.set.Hide(n.Child(0).Span(), decoration.Offset{Leading: p.off.Leading}))
	o.check(o.set.Hide(n.Child(2).Span(), decoration.Offset{Trailing: p.off.Trailing}))

	// Every child of a transparent group casts, so Exprs drops only trivia.
	body, _ := syntax.Cast(n.Child(1))
	inner := p.reset()
	for _, expr := range body.(syntax.Math).Exprs() {
		o.add(w.dispatch(expr, inner))
	}
	return o.result()
}

// transparentGroup reports whether n is ( operand ) where operand is a
// text or string, a resolvable identifier, or either one after a shorthand
// sign such as -x.
func (w *walker) transparentGroup(n *syntax.Node) bool {
	if n.Len() != 3 ||
		n.Child(0).Kind() != syntax.KindLeftParen ||
		n.Child(1).Kind() != syntax.KindMath ||
		n.Child(2).Kind() != syntax.KindRightParen {
		return false
	}

	inner := n.Child(1).Children()
	switch len(inner) {
	case 1:
		return w.simpleOperand(inner[0])
	case 2:
		if inner[0].Kind() != syntax.KindShorthand {
			return false
		}
		_, err := syntax.Cast(inner[0])
		return err == nil && w.simpleOperand(inner[1])
	}
	return false
}

func (w *walker) simpleOperand(n *syntax.Node) bool {
	switch n.Kind() {
	case syntax.KindText, syntax.KindStr:
		return true
	case syntax.KindMathIdent:
		_, ok := w.resolver.Resolve(n.Text())
		return ok
	}
	return false
}
