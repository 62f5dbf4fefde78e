package syntax

import "sort"

// mathShorthands maps math-mode shorthand spellings to the glyph they stand for.
var mathShorthands = map[string]rune{
	"...":  '…',
	"-":    '−',
	"*":    '∗',
	"~":    '∼',
	"!=":   '≠',
	"<=":   '≤',
	">=":   '≥',
	"<<":   '≪',
	">>":   '≫',
	"<<<":  '⋘',
	">>>":  '⋙',
	":=":   '≔',
	"::=":  '⩴',
	"=:":   '≕',
	"->":   '→',
	"->>":  '↠',
	"-->":  '⟶',
	"<-":   '←',
	"<<-":  '↞',
	"<--":  '⟵',
	"<->":  '↔',
	"<-->": '⟷',
	"=>":   '⇒',
	"==>":  '⟹',
	"<==":  '⟸',
	"<=>":  '⇔',
	"<==>": '⟺',
	"|->":  '↦',
	"|=>":  '⤇',
	">->":  '↣',
	"<-<":  '↢',
	"~>":   '⇝',
	"<~":   '⇜',
	"~~>":  '⟿',
	"<~~":  '⬳',
	"[|":   '⟦',
	"|]":   '⟧',
	"||":   '‖',
}

// shorthandOrder lists the spellings longest first so the lexer always takes
// the longest match.
var shorthandOrder = func() []string {
	keys := make([]string, 0, len(mathShorthands))
	for k := range mathShorthands {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ShorthandGlyph returns the glyph a math shorthand spelling stands for.
func ShorthandGlyph(spelling string) (rune, bool) {
	r, ok := mathShorthands[spelling]
	return r, ok
}
