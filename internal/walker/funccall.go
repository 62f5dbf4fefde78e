package walker

import (
	"fmt"

	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/syntax"
)

// accent is the glyph and positioning hint that replaces an accent call.
type accent struct {
	glyph rune
	style string
}

var accents = map[string]accent{
	"arrow":      {'→', `font-family: "NewComputerModernMath"; transform: translate(-0.1em, -0.9em); font-size: 0.8em; display: inline-block; position: absolute;`},
	"dot":        {'⋅', `font-family: "Fira Math"; transform: translate(0.15em, -0.52em); display: inline-block; position: absolute;`},
	"dot.double": {'¨', "font-family: JuliaMono; transform: translate(0, -0.25em); display: inline-block; position: absolute;"},
	"diaer":      {'¨', "font-family: JuliaMono; transform: translate(0, -0.25em); display: inline-block; position: absolute;"},
	"dot.triple": {'\u20DB', "font-family: JuliaMono; font-size: 1.4em; transform: translate(-0.1em); display: inline-block;"},
	"dot.quad":   {'\u20DC', "font-family: JuliaMono; font-size: 1.4em; transform: translate(-0.1em); display: inline-block;"},
	"hat":        {'^', "font-family: Fira math; transform: translate(0.03em, -0.3em); font-size: 0.9em; display: inline-block; position: absolute;"},
	"tilde":      {'~', "font-family: JuliaMono; transform: translate(0.05em, -0.7em); font-size: 0.9em; display: inline-block; position: absolute;"},
	"overline":   {'\u0305', "font-family: JuliaMono; transform: translate(0em, -0.2em); display: inline-block;"},
}

// delimiters are the calls rendered as a pair of fences around their
// arguments.
var delimiters = map[string]string{
	"abs":  "|",
	"norm": "‖",
}

// alphabetStyles holds the extra style hint per stylized alphabet.
var alphabetStyles = map[string]string{
	"cal":  `font-family: "NewComputerModernMath";`,
	"frak": `font-family: "NewComputerModernMath";`,
	"bb":   "",
}

const (
	alphabetKeyPrefix = "alphabet-"
	radicalGlyph      = "√"
	radicalStyle      = "font-family: JuliaMono; display: inline-block; transform: translate(0.1em, -0.1em);"
	overlineGlyph     = '\u0305'
	radicalBarStyle   = "font-family: JuliaMono; transform: scaleX(%.1f) translate(-0.01em, -0.25em); display: inline-block;"
)

// funcCall tries the call rewrites in order (alphabet, accent, fences,
// radical). A rewrite that fires owns the whole call. Otherwise the callee
// is walked in the caller's context and the arguments too, except after an
// accent or radical that matched the callee name but not the argument
// shape: then the arguments are walked plain.
func (w *walker) funcCall(e syntax.FuncCall, p params) (*decoration.Set, error) {
	args := e.Args().Node()
	attempted := false

	if name, ok := calleeName(e.Callee()); ok && w.opts.rewrites() {
		if alphabet, ok := symbols.LetterMap(name); ok {
			if set, ok, err := w.alphabetCall(e, alphabet, p); ok {
				return set, err
			}
		}
		if acc, ok := accents[name]; ok {
			attempted = true
			if set, ok, err := w.accentCall(e, acc, p); ok {
				return set, err
			}
		}
		if fence, ok := delimiters[name]; ok {
			if set, ok, err := w.fenceCall(e, fence, p); ok {
				return set, err
			}
		}
		if name == "sqrt" {
			attempted = true
			if set, ok, err := w.radicalCall(e, p); ok {
				return set, err
			}
		}
	}

	o := w.newOut()
	o.add(w.visit(e.Callee(), p))
	argParams := p.reset()
	if attempted {
		argParams = p.plain()
	}
	o.add(w.walkChildren(args, argParams))
	return o.result()
}

// singleArg returns the operand of an argument list shaped exactly
// ( operand ).
func singleArg(args *syntax.Node) (*syntax.Node, bool) {
	if args.Len() != 3 ||
		args.Child(0).Kind() != syntax.KindLeftParen ||
		args.Child(2).Kind() != syntax.KindRightParen {
		return nil, false
	}
	return args.Child(1), true
}

// alphabetCall rewrites cal(A), frak("g"), bb(R) into the stylized letters,
// one decoration spanning the whole call. Its key carries its own prefix:
// characters without a stylized form pass through unchanged and would
// otherwise share the key of the bare operator.
func (w *walker) alphabetCall(e syntax.FuncCall, alphabet symbols.Alphabet, p params) (*decoration.Set, bool, error) {
	operand, ok := singleArg(e.Args().Node())
	if !ok {
		return nil, false, nil
	}
	var text string
	switch expr, _ := syntax.Cast(operand); v := expr.(type) {
	case syntax.Text:
		text = v.Get()
	case syntax.Str:
		text = v.Get()
	default:
		return nil, false, nil
	}

	content := alphabet.Remap(text)
	callee := e.Callee().Span()
	off := decoration.Offset{
		Leading:  callee.Len() + 1 + p.off.Leading,
		Trailing: 1 + p.off.Trailing,
	}
	set := decoration.NewSet(w.limit)
	err := set.Style(operand.Span(), p.key(alphabetKeyPrefix+content), content, symbols.Number, p.style+alphabetStyles[alphabet.Name()], off)
	return set, true, err
}

// accentCall rewrites hat(x), arrow(v), dot.double(y_1) and friends: the
// accent glyph covers the callee and '(' and the ')' is hidden. The
// operand is left undecorated.
func (w *walker) accentCall(e syntax.FuncCall, acc accent, p params) (*decoration.Set, bool, error) {
	args := e.Args().Node()
	operand, ok := singleArg(args)
	if !ok {
		return nil, false, nil
	}
	switch operand.Kind() {
	case syntax.KindMathIdent, syntax.KindText:
	case syntax.KindMathAttach:
		if operand.Len() != 3 {
			return nil, false, nil
		}
	default:
		return nil, false, nil
	}

	o := w.newOut()
	glyph := string(acc.glyph)
	o.check(o.set.Style(e.Callee().Span(), p.key("func-"+glyph), glyph, symbols.Number, acc.style,
		decoration.Offset{Leading: p.off.Leading, Trailing: 1}))
	o.check(o.set.Hide(args.Child(2).Span(), decoration.Offset{Trailing: p.off.Trailing}))
	set, err := o.result()
	return set, true, err
}

// fenceCall rewrites abs(x) and norm(x): the callee is hidden and both
// parens become the fence glyph, stored as one key with two spans. The
// arguments are walked in the caller's context.
func (w *walker) fenceCall(e syntax.FuncCall, fence string, p params) (*decoration.Set, bool, error) {
	args := e.Args().Node()
	if args.Len() < 2 {
		return nil, false, nil
	}
	last := args.Child(args.Len() - 1)
	if args.Child(0).Kind() != syntax.KindLeftParen || last.Kind() != syntax.KindRightParen {
		return nil, false, nil
	}

	o := w.newOut()
	key := p.key("func-" + fence)
	o.check(o.set.Hide(e.Callee().Span(), decoration.Offset{Leading: p.off.Leading}))
	o.check(o.set.Style(args.Child(0).Span(), key, fence, symbols.Operator, p.style, decoration.Offset{}))
	o.check(o.set.Style(last.Span(), key, fence, symbols.Operator, p.style, decoration.Offset{Trailing: p.off.Trailing}))
	o.add(w.walkChildren(args, p.reset()))
	set, err := o.result()
	return set, true, err
}

// radicalCall rewrites sqrt(x) and sqrt(x^2): a root glyph over the callee
// and an overline over '(' scaled to the operand, with ')' hidden. Deeper
// operands are not rewritten.
func (w *walker) radicalCall(e syntax.FuncCall, p params) (*decoration.Set, bool, error) {
	args := e.Args().Node()
	operand, ok := singleArg(args)
	if !ok {
		return nil, false, nil
	}
	scale, ok := radicalScale(operand)
	if !ok {
		return nil, false, nil
	}

	o := w.newOut()
	bar := string(overlineGlyph)
	o.check(o.set.Style(args.Child(0).Span(), p.key(fmt.Sprintf("func-%s-size-%.1f", bar, scale)), bar,
		symbols.Operator, fmt.Sprintf(radicalBarStyle, scale), decoration.Offset{}))
	o.check(o.set.Style(e.Callee().Span(), p.key("func-"+radicalGlyph), radicalGlyph, symbols.Operator, radicalStyle,
		decoration.Offset{Leading: p.off.Leading}))
	o.check(o.set.Hide(args.Child(2).Span(), decoration.Offset{Trailing: p.off.Trailing}))
	set, err := o.result()
	return set, true, err
}

// radicalScale sizes the overline: 1.2 for a plain operand, 1.8 for an
// attachment whose first attached part is plain.
func radicalScale(operand *syntax.Node) (float64, bool) {
	switch operand.Kind() {
	case syntax.KindMathIdent, syntax.KindText:
		return 1.2, true
	case syntax.KindMathAttach:
		if operand.Len() == 3 {
			switch operand.Child(2).Kind() {
			case syntax.KindMathIdent, syntax.KindText:
				return 1.8, true
			}
		}
	}
	return 0, false
}
