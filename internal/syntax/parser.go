package syntax

// parser builds the syntax tree with recursive descent over the mode-aware
// lexer. It never fails: anything it does not understand becomes a Text or
// Error leaf so every byte of the input is owned by exactly one leaf.
type parser struct {
	lex *lexer
}

func newParser(text string) *parser {
	return &parser{lex: newLexer(text)}
}

func (p *parser) leaf(tok token) *Node {
	return newLeaf(tok.kind, Span{Start: tok.start, End: tok.end}, p.lex.src[tok.start:tok.end])
}

// leafAs builds a leaf for tok but with a different kind.
func (p *parser) leafAs(kind Kind, tok token) *Node {
	tok.kind = kind
	return p.leaf(tok)
}

// peekMath returns the next math token without consuming it.
func (p *parser) peekMath() token {
	save := p.lex.pos
	tok := p.lex.math()
	p.lex.pos = save
	return tok
}

// peekCode returns the next code token without consuming it.
func (p *parser) peekCode() token {
	save := p.lex.pos
	tok := p.lex.code()
	p.lex.pos = save
	return tok
}

// parseMarkup parses markup until the end of input, or until an unmatched
// ']' when inBlock is set (the bracket is left for the caller).
func (p *parser) parseMarkup(inBlock bool) *Node {
	start := p.lex.pos
	var children []*Node
	for {
		save := p.lex.pos
		tok := p.lex.markup(inBlock)
		switch tok.kind {
		case kindEOF:
			return newInner(KindMarkup, children, start)
		case KindRightBracket:
			p.lex.pos = save
			return newInner(KindMarkup, children, start)
		case KindDollar:
			children = append(children, p.parseEquation(tok))
		case KindHash:
			children = append(children, p.leaf(tok), p.parseCodeExpr())
		default:
			children = append(children, p.leaf(tok))
		}
	}
}

// parseEquation parses the body of $...$ after the opening dollar.
func (p *parser) parseEquation(open token) *Node {
	children := []*Node{p.leaf(open)}
	pos := p.lex.pos
	body := p.mathSeq(func(k Kind) bool { return k == KindDollar })
	children = append(children, newInner(KindMath, body, pos))
	if tok := p.peekMath(); tok.kind == KindDollar {
		p.lex.math()
		children = append(children, p.leaf(tok))
	}
	return newInner(KindEquation, children, open.start)
}

// mathSeq parses a sequence of math expressions until a token for which
// stop returns true, or the end of input. The stop token is not consumed.
func (p *parser) mathSeq(stop func(Kind) bool) []*Node {
	var nodes []*Node
	for {
		tok := p.peekMath()
		if tok.kind == kindEOF || stop(tok.kind) {
			return nodes
		}

		switch {
		case tok.kind.IsTrivia():
			p.lex.math()
			nodes = append(nodes, p.leaf(tok))
		case tok.kind == KindHash:
			p.lex.math()
			nodes = append(nodes, p.leaf(tok), p.parseCodeExpr())
		case tok.kind == KindSlash && hasOperand(nodes):
			nodes = p.parseFrac(nodes)
		default:
			nodes = append(nodes, p.parseAttached())
		}
	}
}

func hasOperand(nodes []*Node) bool {
	for i := len(nodes) - 1; i >= 0; i-- {
		if !nodes[i].kind.IsTrivia() {
			return nodes[i].kind != KindHash
		}
	}
	return false
}

// parseFrac turns the last operand in nodes plus the upcoming slash and
// denominator into a MathFrac.
func (p *parser) parseFrac(nodes []*Node) []*Node {
	i := len(nodes) - 1
	for nodes[i].kind.IsTrivia() {
		i--
	}
	children := append([]*Node{}, nodes[i:]...)
	nodes = nodes[:i]

	children = append(children, p.leaf(p.lex.math()))
	for {
		tok := p.peekMath()
		if !tok.kind.IsTrivia() {
			break
		}
		p.lex.math()
		children = append(children, p.leaf(tok))
	}
	children = append(children, p.parseAttachOperand())
	return append(nodes, newInner(KindMathFrac, children, children[0].span.Start))
}

// parseAttached parses a primary followed by any number of primes, top and
// bottom attachments. A second top (or bottom) nests the attachment built so
// far as the base of a new one.
func (p *parser) parseAttached() *Node {
	parts := []*Node{p.parsePrimary()}
	var hasTop, hasBottom bool
	for {
		tok := p.peekMath()
		switch tok.kind {
		case KindMathPrimes:
			if len(parts) != 1 {
				return newInner(KindMathAttach, parts, parts[0].span.Start)
			}
			p.lex.math()
			parts = append(parts, p.leaf(tok))
			continue
		case KindHat, KindUnderscore:
		default:
			if len(parts) == 1 {
				return parts[0]
			}
			return newInner(KindMathAttach, parts, parts[0].span.Start)
		}

		top := tok.kind == KindHat
		if (top && hasTop) || (!top && hasBottom) {
			parts = []*Node{newInner(KindMathAttach, parts, parts[0].span.Start)}
			hasTop, hasBottom = false, false
		}
		if top {
			hasTop = true
		} else {
			hasBottom = true
		}
		p.lex.math()
		parts = append(parts, p.leaf(tok), p.parseAttachOperand())
	}
}

// parseAttachOperand parses the operand of ^, _ or /. A missing operand
// becomes an empty Math node.
func (p *parser) parseAttachOperand() *Node {
	tok := p.peekMath()
	switch tok.kind {
	case kindEOF, KindSpace, KindParbreak, KindLineComment, KindBlockComment,
		KindDollar, KindRightParen, KindComma, KindHat, KindUnderscore, KindSlash:
		return newInner(KindMath, nil, tok.start)
	case KindHash:
		p.lex.math()
		return newInner(KindMath, []*Node{p.leaf(tok), p.parseCodeExpr()}, tok.start)
	}
	return p.parsePrimary()
}

// parsePrimary parses one math expression without attachments.
func (p *parser) parsePrimary() *Node {
	tok := p.lex.math()
	switch tok.kind {
	case KindLeftParen:
		return p.parseGroup(tok)
	case KindMathIdent:
		return p.parseMathIdent(tok)
	case KindRightParen, KindComma:
		return p.leafAs(KindText, tok)
	}
	return p.leaf(tok)
}

// parseGroup parses a parenthesized group into Math[LeftParen, Math, RightParen].
func (p *parser) parseGroup(open token) *Node {
	children := []*Node{p.leaf(open)}
	pos := p.lex.pos
	body := p.mathSeq(func(k Kind) bool { return k == KindRightParen || k == KindDollar })
	children = append(children, newInner(KindMath, body, pos))
	if tok := p.peekMath(); tok.kind == KindRightParen {
		p.lex.math()
		children = append(children, p.leaf(tok))
	}
	return newInner(KindMath, children, open.start)
}

// parseMathIdent parses an identifier with its field accesses and an
// optional directly adjacent argument list.
func (p *parser) parseMathIdent(tok token) *Node {
	expr := p.leaf(tok)
	for p.lex.peek() == '.' && isMathIdentStart(p.lex.runeAfter()) {
		dotStart := p.lex.pos
		p.lex.bump()
		dot := p.leaf(token{kind: KindDot, start: dotStart, end: p.lex.pos})
		field := p.leaf(p.lex.field(true))
		expr = newInner(KindFieldAccess, []*Node{expr, dot, field}, expr.span.Start)
	}
	if p.lex.peek() == '(' {
		args := p.parseMathArgs()
		expr = newInner(KindFuncCall, []*Node{expr, args}, expr.span.Start)
	}
	return expr
}

// parseMathArgs parses a math argument list. Items made of a single node are
// kept as is, longer items are wrapped in a Math node.
func (p *parser) parseMathArgs() *Node {
	open := p.lex.math()
	children := []*Node{p.leaf(open)}
	for {
		item := p.mathSeq(func(k Kind) bool {
			return k == KindComma || k == KindRightParen || k == KindDollar
		})
		children = appendItem(children, item)

		tok := p.peekMath()
		switch tok.kind {
		case KindComma:
			p.lex.math()
			children = append(children, p.leaf(tok))
		case KindRightParen:
			p.lex.math()
			children = append(children, p.leaf(tok))
			return newInner(KindArgs, children, open.start)
		default:
			return newInner(KindArgs, children, open.start)
		}
	}
}

// appendItem appends one argument, keeping surrounding trivia as direct
// children of the argument list.
func appendItem(children, item []*Node) []*Node {
	lo, hi := 0, len(item)
	for lo < hi && item[lo].kind.IsTrivia() {
		lo++
	}
	for hi > lo && item[hi-1].kind.IsTrivia() {
		hi--
	}
	children = append(children, item[:lo]...)
	switch hi - lo {
	case 0:
	case 1:
		children = append(children, item[lo])
	default:
		children = append(children, newInner(KindMath, item[lo:hi], item[lo].span.Start))
	}
	return append(children, item[hi:]...)
}

// parseCodeExpr parses the embedded code expression after a '#': a primary
// followed by directly adjacent field accesses and calls.
func (p *parser) parseCodeExpr() *Node {
	expr := p.parseCodePrimary()
	for {
		switch c := p.lex.peek(); {
		case c == '.' && isIdentStart(p.lex.runeAfter()):
			dot := p.leaf(p.lex.code())
			field := p.leaf(p.lex.field(false))
			expr = newInner(KindFieldAccess, []*Node{expr, dot, field}, expr.span.Start)
		case c == '(' || c == '[':
			args := p.parseCodeArgs()
			expr = newInner(KindFuncCall, []*Node{expr, args}, expr.span.Start)
		default:
			return expr
		}
	}
}

func (p *parser) parseCodePrimary() *Node {
	tok := p.lex.code()
	switch tok.kind {
	case KindDollar:
		return p.parseEquation(tok)
	case KindLeftBracket:
		return p.parseContentBlock(tok)
	case KindLeftParen:
		p.lex.pos = tok.start
		return p.parseCodeArgs()
	case kindEOF:
		return newLeaf(KindError, Span{Start: tok.start, End: tok.start}, "")
	}
	return p.leaf(tok)
}

// parseCodeArgs parses (a, b: c) followed by optional trailing content
// blocks, or content blocks alone.
func (p *parser) parseCodeArgs() *Node {
	start := p.lex.pos
	var children []*Node
	if p.lex.peek() == '(' {
		children = append(children, p.leaf(p.lex.code()))
	loop:
		for {
			tok := p.peekCode()
			switch tok.kind {
			case kindEOF:
				break loop
			case KindRightParen:
				p.lex.code()
				children = append(children, p.leaf(tok))
				break loop
			case KindComma, KindColon, KindSpace, KindParbreak, KindLineComment, KindBlockComment:
				p.lex.code()
				children = append(children, p.leaf(tok))
			default:
				children = append(children, p.parseCodeExpr())
			}
		}
	}
	for p.lex.peek() == '[' {
		children = append(children, p.parseContentBlock(p.lex.code()))
	}
	return newInner(KindArgs, children, start)
}

// parseContentBlock parses [markup] after the opening bracket.
func (p *parser) parseContentBlock(open token) *Node {
	children := []*Node{p.leaf(open), p.parseMarkup(true)}
	if p.lex.peek() == ']' {
		children = append(children, p.leaf(p.lex.code()))
	}
	return newInner(KindContentBlock, children, open.start)
}
