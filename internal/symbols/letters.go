package symbols

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Alphabet is a read-only letter substitution table for one stylized
// alphabet (calligraphic, fraktur, blackboard bold).
type Alphabet struct {
	name    string
	letters map[rune]rune
}

// Name returns the function name that selects the alphabet.
func (a Alphabet) Name() string { return a.name }

// Map returns the stylized form of r.
func (a Alphabet) Map(r rune) (rune, bool) {
	s, ok := a.letters[r]
	return s, ok
}

// Len returns the number of mapped characters.
func (a Alphabet) Len() int { return len(a.letters) }

// Remap substitutes every mappable character of s. Only grapheme clusters
// made of a single rune are candidates, so combining sequences such as
// "é" pass through intact.
func (a Alphabet) Remap(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		if utf8.RuneCountInString(cluster) == 1 {
			r, _ := utf8.DecodeRuneInString(cluster)
			if mapped, ok := a.Map(r); ok {
				sb.WriteRune(mapped)
				continue
			}
		}
		sb.WriteString(cluster)
	}
	return sb.String()
}

// buildAlphabet lays out the Mathematical Alphanumeric Symbols block for
// A-Z and a-z starting at upper and lower, then applies holes: letters
// that Unicode encodes in the Letterlike Symbols block instead.
func buildAlphabet(name string, upper, lower rune, holes map[rune]rune) Alphabet {
	letters := make(map[rune]rune, 62)
	for i := rune(0); i < 26; i++ {
		letters['A'+i] = upper + i
		letters['a'+i] = lower + i
	}
	for r, glyph := range holes {
		letters[r] = glyph
	}
	return Alphabet{name: name, letters: letters}
}

var alphabets = func() map[string]Alphabet {
	cal := buildAlphabet("cal", 0x1D49C, 0x1D4B6, map[rune]rune{
		'B': 'ℬ', 'E': 'ℰ', 'F': 'ℱ', 'H': 'ℋ', 'I': 'ℐ', 'L': 'ℒ', 'M': 'ℳ', 'R': 'ℛ',
		'e': 'ℯ', 'g': 'ℊ', 'o': 'ℴ',
	})
	frak := buildAlphabet("frak", 0x1D504, 0x1D51E, map[rune]rune{
		'C': 'ℭ', 'H': 'ℌ', 'I': 'ℑ', 'R': 'ℜ', 'Z': 'ℨ',
	})
	bb := buildAlphabet("bb", 0x1D538, 0x1D552, map[rune]rune{
		'C': 'ℂ', 'H': 'ℍ', 'N': 'ℕ', 'P': 'ℙ', 'Q': 'ℚ', 'R': 'ℝ', 'Z': 'ℤ',
	})
	for i := rune(0); i < 10; i++ {
		bb.letters['0'+i] = 0x1D7D8 + i
	}
	return map[string]Alphabet{"cal": cal, "frak": frak, "bb": bb}
}()

// LetterMap returns the alphabet selected by a style function name
// ("cal", "frak" or "bb").
func LetterMap(style string) (Alphabet, bool) {
	a, ok := alphabets[style]
	return a, ok
}
