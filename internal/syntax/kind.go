// Package syntax implements the Typst syntax tree consumed by the decoration
// walker: node kinds, byte spans, typed expression views and a parser for the
// markup/math/code subset the walker understands.
package syntax

// Kind identifies the syntactic category of a node.
type Kind int

const (
	KindError Kind = iota

	// Markup
	KindMarkup
	KindText
	KindSpace
	KindParbreak
	KindLinebreak
	KindEscape
	KindLineComment
	KindBlockComment

	// Math
	KindEquation
	KindDollar
	KindMath
	KindMathIdent
	KindMathAttach
	KindMathFrac
	KindMathPrimes
	KindMathAlignPoint
	KindHat
	KindUnderscore
	KindSlash
	KindShorthand

	// Code
	KindHash
	KindIdent
	KindStr
	KindInt
	KindFloat
	KindFieldAccess
	KindDot
	KindFuncCall
	KindArgs
	KindContentBlock

	// Delimiters
	KindLeftParen
	KindRightParen
	KindLeftBracket
	KindRightBracket
	KindComma
	KindColon
)

// kindEOF marks the end of input inside the lexer. It never appears in a tree.
const kindEOF Kind = -1

var kindNames = map[Kind]string{
	KindError:          "Error",
	KindMarkup:         "Markup",
	KindText:           "Text",
	KindSpace:          "Space",
	KindParbreak:       "Parbreak",
	KindLinebreak:      "Linebreak",
	KindEscape:         "Escape",
	KindLineComment:    "LineComment",
	KindBlockComment:   "BlockComment",
	KindEquation:       "Equation",
	KindDollar:         "Dollar",
	KindMath:           "Math",
	KindMathIdent:      "MathIdent",
	KindMathAttach:     "MathAttach",
	KindMathFrac:       "MathFrac",
	KindMathPrimes:     "MathPrimes",
	KindMathAlignPoint: "MathAlignPoint",
	KindHat:            "Hat",
	KindUnderscore:     "Underscore",
	KindSlash:          "Slash",
	KindShorthand:      "Shorthand",
	KindHash:           "Hash",
	KindIdent:          "Ident",
	KindStr:            "Str",
	KindInt:            "Int",
	KindFloat:          "Float",
	KindFieldAccess:    "FieldAccess",
	KindDot:            "Dot",
	KindFuncCall:       "FuncCall",
	KindArgs:           "Args",
	KindContentBlock:   "ContentBlock",
	KindLeftParen:      "LeftParen",
	KindRightParen:     "RightParen",
	KindLeftBracket:    "LeftBracket",
	KindRightBracket:   "RightBracket",
	KindComma:          "Comma",
	KindColon:          "Colon",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k == kindEOF {
		return "EOF"
	}
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTrivia reports whether nodes of this kind carry no meaning of their own
// (whitespace and comments).
func (k Kind) IsTrivia() bool {
	switch k {
	case KindSpace, KindParbreak, KindLineComment, KindBlockComment:
		return true
	}
	return false
}
