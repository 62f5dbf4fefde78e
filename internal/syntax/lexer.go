package syntax

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is a single lexeme: a leaf kind plus its byte range.
type token struct {
	kind  Kind
	start int
	end   int
}

// lexer splits Typst source into tokens. Tokenization depends on the mode the
// parser is in, so instead of a single NextToken there is one entry point per
// mode (markup, math, code). The lexer holds no state besides its position,
// which lets the parser peek by saving and restoring pos.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) done() bool {
	return l.pos >= len(l.src)
}

// peek returns the rune at the current position without advancing.
func (l *lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune starting off bytes after the current position.
func (l *lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos+off:])
	return r
}

// runeAfter returns the rune directly after the one at the current position.
func (l *lexer) runeAfter() rune {
	if l.done() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	return l.peekAt(size)
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.src[l.pos:], s)
}

// bump consumes one rune.
func (l *lexer) bump() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	return r
}

func (l *lexer) eatWhile(pred func(rune) bool) {
	for !l.done() && pred(l.peek()) {
		l.bump()
	}
}

func (l *lexer) token(kind Kind, start int) token {
	return token{kind: kind, start: start, end: l.pos}
}

// markup lexes one token in markup mode. Text runs include spaces within a
// line so prose never produces single-character text tokens.
func (l *lexer) markup(inBlock bool) token {
	start := l.pos
	if l.done() {
		return l.token(kindEOF, start)
	}

	if tok, ok := l.comment(); ok {
		return tok
	}

	switch c := l.peek(); {
	case c == '\n' || c == '\r' || (isBlank(c) && l.blankRunHasNewline()):
		return l.whitespace(start)
	case c == '$':
		l.bump()
		return l.token(KindDollar, start)
	case c == '#' && isIdentStart(l.runeAfter()):
		l.bump()
		return l.token(KindHash, start)
	case c == '\\':
		return l.backslash(start)
	case c == ']' && inBlock:
		l.bump()
		return l.token(KindRightBracket, start)
	}

	for !l.done() {
		c := l.peek()
		if c == '\n' || c == '\r' || c == '$' || c == '\\' ||
			(c == '#' && isIdentStart(l.runeAfter())) ||
			(c == ']' && inBlock) ||
			l.hasPrefix("//") || l.hasPrefix("/*") {
			break
		}
		l.bump()
	}
	return l.token(KindText, start)
}

// math lexes one token in math mode.
func (l *lexer) math() token {
	start := l.pos
	if l.done() {
		return l.token(kindEOF, start)
	}

	if tok, ok := l.comment(); ok {
		return tok
	}

	c := l.peek()
	switch {
	case unicode.IsSpace(c):
		return l.whitespace(start)
	case c == '$':
		l.bump()
		return l.token(KindDollar, start)
	case c == '\\':
		return l.backslash(start)
	case c == '#' && isIdentStart(l.runeAfter()):
		l.bump()
		return l.token(KindHash, start)
	case c == '"':
		return l.str(start)
	}

	for _, spelling := range shorthandOrder {
		if l.hasPrefix(spelling) {
			l.pos += len(spelling)
			return l.token(KindShorthand, start)
		}
	}

	switch {
	case c == '^':
		l.bump()
		return l.token(KindHat, start)
	case c == '_':
		l.bump()
		return l.token(KindUnderscore, start)
	case c == '/':
		l.bump()
		return l.token(KindSlash, start)
	case c == '&':
		l.bump()
		return l.token(KindMathAlignPoint, start)
	case c == '(':
		l.bump()
		return l.token(KindLeftParen, start)
	case c == ')':
		l.bump()
		return l.token(KindRightParen, start)
	case c == ',':
		l.bump()
		return l.token(KindComma, start)
	case c == '\'':
		l.eatWhile(func(r rune) bool { return r == '\'' })
		return l.token(KindMathPrimes, start)
	case isMathIdentStart(c):
		l.bump()
		l.eatWhile(isMathIdentContinue)
		if utf8.RuneCountInString(l.src[start:l.pos]) == 1 {
			return l.token(KindText, start)
		}
		return l.token(KindMathIdent, start)
	case isDigit(c):
		l.eatWhile(isDigit)
		if l.peek() == '.' && isDigit(l.runeAfter()) {
			l.bump()
			l.eatWhile(isDigit)
		}
		return l.token(KindText, start)
	}

	l.bump()
	return l.token(KindText, start)
}

// code lexes one token in code mode (after a '#').
func (l *lexer) code() token {
	start := l.pos
	if l.done() {
		return l.token(kindEOF, start)
	}

	if tok, ok := l.comment(); ok {
		return tok
	}

	c := l.peek()
	switch {
	case unicode.IsSpace(c):
		return l.whitespace(start)
	case isIdentStart(c):
		l.bump()
		l.eatWhile(isIdentContinue)
		return l.token(KindIdent, start)
	case isDigit(c):
		l.eatWhile(isDigit)
		if l.peek() == '.' && isDigit(l.runeAfter()) {
			l.bump()
			l.eatWhile(isDigit)
			return l.token(KindFloat, start)
		}
		return l.token(KindInt, start)
	case c == '"':
		return l.str(start)
	}

	l.bump()
	switch c {
	case '.':
		return l.token(KindDot, start)
	case '(':
		return l.token(KindLeftParen, start)
	case ')':
		return l.token(KindRightParen, start)
	case '[':
		return l.token(KindLeftBracket, start)
	case ']':
		return l.token(KindRightBracket, start)
	case ',':
		return l.token(KindComma, start)
	case ':':
		return l.token(KindColon, start)
	case '$':
		return l.token(KindDollar, start)
	}
	return l.token(KindError, start)
}

// field lexes the identifier after a '.' of a field access.
func (l *lexer) field(math bool) token {
	start := l.pos
	if math {
		l.eatWhile(isMathIdentContinue)
	} else {
		l.eatWhile(isIdentContinue)
	}
	return l.token(KindIdent, start)
}

func (l *lexer) comment() (token, bool) {
	start := l.pos
	switch {
	case l.hasPrefix("//"):
		l.eatWhile(func(r rune) bool { return r != '\n' && r != '\r' })
		return l.token(KindLineComment, start), true
	case l.hasPrefix("/*"):
		l.pos += 2
		for !l.done() && !l.hasPrefix("*/") {
			l.bump()
		}
		if l.hasPrefix("*/") {
			l.pos += 2
		}
		return l.token(KindBlockComment, start), true
	}
	return token{}, false
}

// whitespace consumes a whitespace run; two or more newlines make a
// paragraph break.
func (l *lexer) whitespace(start int) token {
	newlines := 0
	for !l.done() && unicode.IsSpace(l.peek()) {
		if l.bump() == '\n' {
			newlines++
		}
	}
	if newlines >= 2 {
		return l.token(KindParbreak, start)
	}
	return l.token(KindSpace, start)
}

func (l *lexer) blankRunHasNewline() bool {
	for i := l.pos; i < len(l.src); i++ {
		switch l.src[i] {
		case ' ', '\t':
			continue
		case '\n', '\r':
			return true
		}
		return false
	}
	return false
}

// backslash lexes a line break (backslash before whitespace or the end of
// input) or an escape sequence.
func (l *lexer) backslash(start int) token {
	l.bump()
	next := l.peek()
	if l.done() || unicode.IsSpace(next) {
		return l.token(KindLinebreak, start)
	}
	if next == 'u' && l.peekAt(1) == '{' {
		if end := strings.IndexByte(l.src[l.pos:], '}'); end >= 0 {
			l.pos += end + 1
			return l.token(KindEscape, start)
		}
	}
	l.bump()
	return l.token(KindEscape, start)
}

// str lexes a double-quoted string with backslash escapes. An unterminated
// string runs to the end of input.
func (l *lexer) str(start int) token {
	l.bump()
	for !l.done() {
		c := l.bump()
		if c == '\\' && !l.done() {
			l.bump()
			continue
		}
		if c == '"' {
			break
		}
	}
	return l.token(KindStr, start)
}

func isBlank(c rune) bool {
	return c == ' ' || c == '\t'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isIdentContinue(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-'
}

func isMathIdentStart(c rune) bool {
	return unicode.IsLetter(c)
}

func isMathIdentContinue(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}
