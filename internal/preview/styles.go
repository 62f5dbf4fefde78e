package preview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/typstmath/internal/symbols"
)

// Category colors (Catppuccin Latte / Mocha).
var (
	NumberColor     = lipgloss.AdaptiveColor{Light: "#FE640B", Dark: "#FAB387"} // peach
	LetterColor     = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"} // teal
	BigLetterColor  = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"} // blue
	OperatorColor   = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"} // red
	ComparisonColor = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"} // yellow
	SetColor        = lipgloss.AdaptiveColor{Light: "#40A02B", Dark: "#A6E3A1"} // green
	KeywordColor    = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"} // mauve
	MutedColor      = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"} // overlay0
)

var mutedStyle = lipgloss.NewStyle().Foreground(MutedColor)

// Theme maps color categories to terminal styles.
type Theme struct {
	styles map[symbols.Color]lipgloss.Style
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{styles: map[symbols.Color]lipgloss.Style{
		symbols.Number:     lipgloss.NewStyle().Foreground(NumberColor),
		symbols.Letter:     lipgloss.NewStyle().Foreground(LetterColor),
		symbols.BigLetter:  lipgloss.NewStyle().Foreground(BigLetterColor),
		symbols.Operator:   lipgloss.NewStyle().Foreground(OperatorColor),
		symbols.Comparison: lipgloss.NewStyle().Foreground(ComparisonColor),
		symbols.Set:        lipgloss.NewStyle().Foreground(SetColor),
		symbols.Keyword:    lipgloss.NewStyle().Foreground(KeywordColor).Bold(true),
		symbols.Noop:       lipgloss.NewStyle().Foreground(MutedColor),
	}}
}

// WithPalette returns a copy of t with the given categories recolored.
// Values are hex colors as accepted by lipgloss.
func (t Theme) WithPalette(palette map[symbols.Color]string) Theme {
	styles := make(map[symbols.Color]lipgloss.Style, len(t.styles))
	for c, s := range t.styles {
		styles[c] = s
	}
	for c, hex := range palette {
		styles[c] = styles[c].Foreground(lipgloss.Color(hex))
	}
	return Theme{styles: styles}
}

// Style returns the style for a category. Unknown categories are unstyled.
func (t Theme) Style(c symbols.Color) lipgloss.Style {
	if s, ok := t.styles[c]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
