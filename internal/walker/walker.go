// Package walker turns a syntax tree into decorations. It dispatches every
// node on its shape, threading a small traversal context (state, key
// namespace, inherited style, span offset) down the recursion. Each handler
// builds and returns its own partial decoration set; callers merge them.
package walker

import (
	"errors"

	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/syntax"
)

// Rendering tiers, from least to most aggressive substitution.
const (
	// TierSymbols decorates symbols, shorthands and operators only.
	TierSymbols = 0
	// TierStacking also lifts attachments above/below the baseline.
	TierStacking = 1
	// TierRewrites also rewrites calls: alphabets, accents, abs/norm, sqrt.
	TierRewrites = 2
	// MaxRenderingMode is the highest accepted tier; it behaves like TierRewrites.
	MaxRenderingMode = 3
)

// Options control what the walker decorates.
type Options struct {
	// RenderingMode is the rendering tier, 0 through MaxRenderingMode.
	RenderingMode int
	// RenderOutsideMath decorates #sym.* references outside math.
	RenderOutsideMath bool
}

func (o Options) stacking() bool { return o.RenderingMode >= TierStacking }
func (o Options) rewrites() bool { return o.RenderingMode >= TierRewrites }

// State is the traversal position passed by value to every handler.
type State struct {
	// IsBase marks the primary operand of the outermost attachment.
	IsBase bool
	// IsAttachment marks nodes inside a lifted top or bottom attachment.
	IsAttachment bool
}

// params is everything a handler inherits from its caller.
type params struct {
	state State
	ns    string
	style string
	off   decoration.Offset
}

// reset returns p with offset cleared, as used when dispatching children.
func (p params) reset() params {
	p.off = decoration.Offset{}
	return p
}

// plain returns the context for subtrees that must not inherit styling.
func (p params) plain() params {
	return params{state: p.state}
}

func (p params) key(name string) decoration.Key {
	return decoration.Key{Namespace: p.ns, Name: name}
}

type walker struct {
	opts     Options
	resolver *symbols.Resolver
	limit    int

	// observe, when set, sees every dispatched expression and its state.
	observe func(*syntax.Node, State)
}

// Walk decorates the tree rooted at root. The returned set is never nil.
// Malformed nodes (*syntax.ShapeError) and key conflicts
// (*decoration.ConflictError) abort only the subtree or span concerned;
// they are returned joined while the rest of the tree is still decorated.
func Walk(root *syntax.Node, opts Options, resolver *symbols.Resolver) (*decoration.Set, error) {
	if resolver == nil {
		resolver = symbols.Default()
	}
	w := &walker{opts: opts, resolver: resolver, limit: root.Span().End}
	set, err := w.walkChildren(root, params{})
	if err != nil {
		log.Warn(log.CatWalk, "walk finished with errors", "error", err)
	}
	return set, err
}

// walkChildren visits every child of n: expressions are dispatched with a
// cleared offset, anything else is treated as a wrapper and descended into.
func (w *walker) walkChildren(n *syntax.Node, p params) (*decoration.Set, error) {
	o := w.newOut()
	for _, child := range n.Children() {
		o.add(w.visit(child, p.reset()))
	}
	return o.result()
}

// visit dispatches n when it is an expression and descends otherwise.
func (w *walker) visit(n *syntax.Node, p params) (*decoration.Set, error) {
	expr, err := syntax.Cast(n)
	switch {
	case errors.Is(err, syntax.ErrNotExpr):
		return w.walkChildren(n, p)
	case err != nil:
		log.Debug(log.CatWalk, "skipping malformed subtree", "kind", n.Kind(), "span", n.Span(), "error", err)
		return nil, err
	}
	return w.dispatch(expr, p)
}

func (w *walker) dispatch(expr syntax.Expr, p params) (*decoration.Set, error) {
	if w.observe != nil {
		w.observe(expr.Node(), p.state)
	}
	switch e := expr.(type) {
	case syntax.MathIdent:
		return w.ident(e, p)
	case syntax.FieldAccess:
		return w.fieldAccess(e, p)
	case syntax.Linebreak:
		return w.linebreak(e, p)
	case syntax.MathAttach:
		return w.attach(e, p)
	case syntax.Math:
		return w.math(e, p)
	case syntax.Shorthand:
		return w.shorthand(e, p)
	case syntax.Text:
		return w.text(e, p)
	case syntax.Str:
		return w.str(e, p)
	case syntax.FuncCall:
		return w.funcCall(e, p)
	}
	return w.walkChildren(expr.Node(), p)
}

// out gathers a handler's own decorations plus the partial results of the
// sub-walks it starts.
type out struct {
	set  *decoration.Set
	errs []error
}

func (w *walker) newOut() *out {
	return &out{set: decoration.NewSet(w.limit)}
}

// add merges a partial result.
func (o *out) add(set *decoration.Set, err error) {
	if err != nil {
		o.errs = append(o.errs, err)
	}
	if set != nil {
		if mergeErr := o.set.Merge(set); mergeErr != nil {
			o.errs = append(o.errs, mergeErr)
		}
	}
}

// check records the error of a direct store write.
func (o *out) check(err error) {
	if err != nil {
		o.errs = append(o.errs, err)
	}
}

func (o *out) result() (*decoration.Set, error) {
	return o.set, errors.Join(o.errs...)
}
