package walker

import (
	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/syntax"
)

const (
	topNamespace    = "top-"
	bottomNamespace = "bottom-"

	topStyle    = "font-size: 0.8em; transform: translateY(-30%); display: inline-block;"
	bottomStyle = "font-size: 0.8em; transform: translateY(20%); display: inline-block;"
)

// attach decorates an attachment. Only the outermost attachment of a chain
// renders its base in the caller's context; nested bases start plain. Top
// and bottom get their own namespaces and, when stacking, are lifted with a
// vertical style and widened by one byte to cover the ^ or _ marker.
func (w *walker) attach(e syntax.MathAttach, p params) (*decoration.Set, error) {
	o := w.newOut()

	if parent, _ := e.Node().ParentKind(); parent != syntax.KindMathAttach {
		o.add(w.visit(e.Base(), params{
			state: State{IsBase: true},
			ns:    p.ns,
			style: p.style,
			off:   p.off,
		}))
	} else {
		o.add(w.visit(e.Base(), params{}))
	}

	off, top, bottom := p.off, "", ""
	stacking := w.opts.stacking()
	if stacking {
		off, top, bottom = decoration.Offset{Leading: 1}, topStyle, bottomStyle
	}

	if n := e.Top(); n != nil {
		o.add(w.visit(n, params{
			state: State{IsAttachment: stacking},
			ns:    topNamespace,
			style: top,
			off:   off,
		}))
	}
	if n := e.Bottom(); n != nil {
		o.add(w.visit(n, params{
			state: State{IsAttachment: stacking},
			ns:    bottomNamespace,
			style: bottom,
			off:   off,
		}))
	}
	return o.result()
}
