// Package symbols holds the static symbol and letter tables used to decorate
// math: symbol names map to a display glyph and a semantic color category.
package symbols

import (
	"fmt"
	"strings"
)

// Color is the semantic category of a decoration. The presentation layer
// maps each category to an actual color.
type Color int

const (
	Number Color = iota
	Letter
	BigLetter
	Operator
	Comparison
	Set
	Keyword
	// Noop marks hidden ranges; it is never drawn.
	Noop
)

var colorNames = []string{
	Number:     "number",
	Letter:     "letter",
	BigLetter:  "bigletter",
	Operator:   "operator",
	Comparison: "comparison",
	Set:        "set",
	Keyword:    "keyword",
	Noop:       "noop",
}

// Colors returns every category in declaration order.
func Colors() []Color {
	return []Color{Number, Letter, BigLetter, Operator, Comparison, Set, Keyword, Noop}
}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// ParseColor parses a category name as written in configuration files.
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(colorNames) {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(colorNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
