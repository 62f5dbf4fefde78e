package syntax

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNotExpr is returned by Cast for nodes that are not expressions (trivia,
// delimiters, markers) or that have no typed view.
var ErrNotExpr = errors.New("node is not an expression")

// ShapeError reports a node whose kind promises a structure its children do
// not have, e.g. an attachment with no base or a call without arguments.
type ShapeError struct {
	Kind   Kind
	Span   Span
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed %s at %s: %s", e.Kind, e.Span, e.Reason)
}

func shapeErr(n *Node, reason string) *ShapeError {
	return &ShapeError{Kind: n.kind, Span: n.span, Reason: reason}
}

// Expr is a typed view over a node of a known expression kind.
type Expr interface {
	Node() *Node
	expr()
}

type exprNode struct{ n *Node }

func (e exprNode) Node() *Node { return e.n }
func (exprNode) expr()         {}

// MathIdent is an identifier inside math (two or more letters).
type MathIdent struct{ exprNode }

// Name returns the identifier.
func (m MathIdent) Name() string { return m.n.text }

// Ident is an identifier in code mode.
type Ident struct{ exprNode }

// Name returns the identifier.
func (i Ident) Name() string { return i.n.text }

// FieldAccess is a dotted access `target.field`.
type FieldAccess struct{ exprNode }

// Target returns the accessed expression node.
func (f FieldAccess) Target() *Node { return f.n.children[0] }

// Field returns the accessed field name.
func (f FieldAccess) Field() string { return f.n.children[2].text }

// Linebreak is a backslash line break.
type Linebreak struct{ exprNode }

// MathAttach is a base with optional primes, top and bottom attachments.
type MathAttach struct{ exprNode }

// Base returns the attachment's base.
func (a MathAttach) Base() *Node { return a.n.children[0] }

// Primes returns the primes directly after the base, or nil.
func (a MathAttach) Primes() *Node {
	if c := a.n.Child(1); c != nil && c.kind == KindMathPrimes {
		return c
	}
	return nil
}

// Top returns the superscript operand, or nil.
func (a MathAttach) Top() *Node { return a.after(KindHat) }

// Bottom returns the subscript operand, or nil.
func (a MathAttach) Bottom() *Node { return a.after(KindUnderscore) }

func (a MathAttach) after(marker Kind) *Node {
	for i, c := range a.n.children {
		if c.kind == marker {
			return a.n.Child(i + 1)
		}
	}
	return nil
}

// Math is a sequence of math expressions, including parenthesized groups.
type Math struct{ exprNode }

// Exprs returns the children that cast to expressions.
func (m Math) Exprs() []Expr {
	var out []Expr
	for _, c := range m.n.children {
		if e, err := Cast(c); err == nil {
			out = append(out, e)
		}
	}
	return out
}

// Shorthand is a math shorthand such as `->` or `!=`.
type Shorthand struct{ exprNode }

// Get returns the glyph the shorthand stands for.
func (s Shorthand) Get() rune {
	r, _ := ShorthandGlyph(s.n.text)
	return r
}

// Text is a run of literal text.
type Text struct{ exprNode }

// Get returns the text.
func (t Text) Get() string { return t.n.text }

// Str is a double-quoted string literal.
type Str struct{ exprNode }

// Get returns the string with quotes removed and escapes resolved.
func (s Str) Get() string { return unquote(s.n.text) }

// FuncCall is a call `callee(args)`.
type FuncCall struct{ exprNode }

// Callee returns the called expression node.
func (f FuncCall) Callee() *Node { return f.n.children[0] }

// Args returns the argument list.
func (f FuncCall) Args() Args { return Args{exprNode{f.n.children[1]}} }

// Args is an argument list including its delimiters.
type Args struct{ exprNode }

// Cast returns the typed view of n. It returns ErrNotExpr when n has no
// view and a *ShapeError when n's children break the contract of its kind.
func Cast(n *Node) (Expr, error) {
	if n == nil {
		return nil, ErrNotExpr
	}
	base := exprNode{n}
	switch n.kind {
	case KindMathIdent:
		return MathIdent{base}, nil
	case KindIdent:
		return Ident{base}, nil
	case KindLinebreak:
		return Linebreak{base}, nil
	case KindText:
		return Text{base}, nil
	case KindStr:
		return Str{base}, nil
	case KindMath:
		return Math{base}, nil
	case KindShorthand:
		if _, ok := ShorthandGlyph(n.text); !ok {
			return nil, shapeErr(n, fmt.Sprintf("unknown shorthand %q", n.text))
		}
		return Shorthand{base}, nil
	case KindFieldAccess:
		if n.Len() != 3 || n.children[1].kind != KindDot || n.children[2].kind != KindIdent {
			return nil, shapeErr(n, "expected target, dot and field")
		}
		return FieldAccess{base}, nil
	case KindMathAttach:
		if err := checkAttach(n); err != nil {
			return nil, err
		}
		return MathAttach{base}, nil
	case KindFuncCall:
		if n.Len() != 2 || n.children[1].kind != KindArgs {
			return nil, shapeErr(n, "expected callee and arguments")
		}
		return FuncCall{base}, nil
	}
	return nil, ErrNotExpr
}

func checkAttach(n *Node) error {
	if n.Len() < 2 {
		return shapeErr(n, "attachment without parts")
	}
	if n.children[0].kind.IsTrivia() {
		return shapeErr(n, "attachment without base")
	}
	for i, c := range n.children[1:] {
		if c.kind != KindHat && c.kind != KindUnderscore {
			continue
		}
		if i+2 >= n.Len() {
			return shapeErr(n, fmt.Sprintf("%s without operand", c.kind))
		}
	}
	return nil
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	if strings.HasSuffix(s, `"`) && !strings.HasSuffix(s, `\"`) {
		s = s[:len(s)-1]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r != '\\' || i >= len(s) {
			sb.WriteRune(r)
			continue
		}
		next, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch next {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteRune(next)
		}
	}
	return sb.String()
}
