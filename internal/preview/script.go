package preview

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'i': 'ⁱ', 'n': 'ⁿ', 'T': 'ᵀ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
	'a': 'ₐ', 'e': 'ₑ', 'i': 'ᵢ', 'j': 'ⱼ', 'k': 'ₖ',
	'n': 'ₙ', 'o': 'ₒ', 'x': 'ₓ',
}

// script maps every rune of s through table, or returns s unchanged when
// any rune has no counterpart.
func script(s string, table map[rune]rune) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		mapped, ok := table[r]
		if !ok {
			return s
		}
		out = append(out, mapped)
	}
	return string(out)
}
