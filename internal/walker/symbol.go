package walker

import (
	"strings"

	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/syntax"
)

// sigilPrefix marks a reference into the sym module, as in #sym.alpha.
const sigilPrefix = "sym."

// wrapping surrounds a resolved glyph with literal characters.
type wrapping struct {
	prefix, suffix string
}

// symbol resolves name and, when found, decorates span with the glyph.
func (w *walker) symbol(span syntax.Span, name string, key decoration.Key, style string, off decoration.Offset, wrap wrapping) (*decoration.Set, error) {
	set := decoration.NewSet(w.limit)
	g, ok := w.resolver.Resolve(name)
	if !ok {
		return set, nil
	}
	content := wrap.prefix + g.Content + wrap.suffix
	return set, set.Style(span, key, content, g.Color, style, off)
}

func (w *walker) ident(e syntax.MathIdent, p params) (*decoration.Set, error) {
	return w.symbol(e.Node().Span(), e.Name(), p.key(e.Name()), p.style, p.off, wrapping{})
}

// fieldAccess decorates a dotted symbol path such as arrow.r.double. A
// path through the sym. module (sym.alpha, #sym.alpha) is only decorated
// when outside-math rendering is on; a '#' right before it is then covered
// too.
func (w *walker) fieldAccess(e syntax.FieldAccess, p params) (*decoration.Set, error) {
	name, ok := flatten(e)
	if !ok {
		return decoration.NewSet(w.limit), nil
	}

	off := p.off
	if strings.Contains(name, sigilPrefix) {
		if !w.opts.RenderOutsideMath {
			return decoration.NewSet(w.limit), nil
		}
		if hashed(e.Node()) {
			off.Leading++
		}
		name = strings.ReplaceAll(name, sigilPrefix, "")
	}

	return w.symbol(e.Node().Span(), name, p.key(name), p.style, off, wrapping{})
}

func hashed(n *syntax.Node) bool {
	prev := n.PrevSibling()
	return prev != nil && prev.Kind() == syntax.KindHash
}

// flatten joins a field access chain into one dotted name. Only chains
// rooted at an identifier flatten.
func flatten(e syntax.FieldAccess) (string, bool) {
	var target string
	switch expr, _ := syntax.Cast(e.Target()); t := expr.(type) {
	case syntax.FieldAccess:
		inner, ok := flatten(t)
		if !ok {
			return "", false
		}
		target = inner
	case syntax.MathIdent:
		target = t.Name()
	case syntax.Ident:
		target = t.Name()
	default:
		return "", false
	}
	return target + "." + e.Field(), true
}

// calleeName returns the name of a call's callee when it is an identifier
// or a flattenable field access.
func calleeName(callee *syntax.Node) (string, bool) {
	switch expr, _ := syntax.Cast(callee); c := expr.(type) {
	case syntax.MathIdent:
		return c.Name(), true
	case syntax.FieldAccess:
		return flatten(c)
	}
	return "", false
}
