package preview

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/syntax"
	"github.com/zjrosen/typstmath/internal/walker"
)

func init() {
	// Force ANSI color output in tests (lipgloss disables colors when no TTY)
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func decorate(t *testing.T, text string, mode int) *decoration.Set {
	t.Helper()
	set, err := walker.Walk(syntax.Parse(text).Root(), walker.Options{RenderingMode: mode}, nil)
	require.NoError(t, err)
	return set
}

func TestPlain(t *testing.T) {
	tests := []struct {
		name string
		text string
		mode int
		want string
	}{
		{"symbols", "$alpha + beta$", walker.TierSymbols, "$α + β$"},
		{"shorthand", "$a -> b$", walker.TierSymbols, "$a → b$"},
		{"superscript", "$alpha^2$", walker.TierStacking, "$α²$"},
		{"limits", "$sum_(i)^n$", walker.TierStacking, "$∑ᵢⁿ$"},
		{"no script form", "$x^(alpha)$", walker.TierStacking, "$xα$"},
		{"fences", "$abs(alpha)$", walker.TierRewrites, "$|α|$"},
		{"undecorated", "plain text", walker.TierRewrites, "plain text"},
		{"empty", "", walker.TierRewrites, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Plain(tt.text, decorate(t, tt.text, tt.mode)))
		})
	}
}

func TestPlain_Document(t *testing.T) {
	text := "Let $alpha + beta$ be given.\nThen $x^2 -> y_1$ holds.\n$sum_(i)^n$\n"
	teatest.RequireEqualOutput(t, []byte(Plain(text, decorate(t, text, walker.TierStacking))))
}

func TestPlain_NilSet(t *testing.T) {
	require.Equal(t, "$alpha$", Plain("$alpha$", nil))
}

func TestSegments_CoverText(t *testing.T) {
	text := "$x^(alpha) + beta$"
	segs := Segments(text, decorate(t, text, walker.TierStacking))

	cursor := 0
	for _, seg := range segs {
		require.Equal(t, cursor, seg.Span.Start)
		require.Greater(t, seg.Span.End, seg.Span.Start)
		if !seg.Decorated {
			require.Equal(t, text[seg.Span.Start:seg.Span.End], seg.Text)
		}
		cursor = seg.Span.End
	}
	require.Equal(t, len(text), cursor)

	var hidden int
	for _, seg := range segs {
		if seg.Hidden() {
			hidden++
			require.Empty(t, seg.Text)
			require.Equal(t, symbols.Noop, seg.Color)
		}
	}
	require.Equal(t, 2, hidden)
}

func TestSegments_OverlapKeepsEarlier(t *testing.T) {
	set := decoration.NewSet(8)
	require.NoError(t, set.Style(syntax.Span{Start: 0, End: 4}, decoration.Key{Name: "a"}, "A", symbols.Letter, "", decoration.Offset{}))
	require.NoError(t, set.Style(syntax.Span{Start: 2, End: 6}, decoration.Key{Name: "b"}, "B", symbols.Letter, "", decoration.Offset{}))
	require.NoError(t, set.Style(syntax.Span{Start: 6, End: 6}, decoration.Key{Name: "c"}, "C", symbols.Letter, "", decoration.Offset{}))

	require.Equal(t, "Aefgh", Plain("abcdefgh", set))
}

func TestSegments_Bold(t *testing.T) {
	text := "$a -> b$"
	for _, seg := range Segments(text, decorate(t, text, walker.TierSymbols)) {
		if seg.Text == "→" {
			require.True(t, seg.Bold)
			return
		}
	}
	require.Fail(t, "arrow segment not found")
}

func TestRender(t *testing.T) {
	text := "$alpha + x^2$"
	set := decorate(t, text, walker.TierStacking)

	out := Render(text, set, DefaultTheme())
	require.Contains(t, out, "\x1b[")
	require.Equal(t, Plain(text, set), ansi.Strip(out))
}

func TestTheme_WithPalette(t *testing.T) {
	base := DefaultTheme()
	theme := base.WithPalette(map[symbols.Color]string{symbols.Number: "#ff0000"})

	require.Equal(t, lipgloss.Color("#ff0000"), theme.Style(symbols.Number).GetForeground())
	require.Equal(t, NumberColor, base.Style(symbols.Number).GetForeground(), "base theme is unchanged")
	require.True(t, theme.Style(symbols.Keyword).GetBold())
	require.Equal(t, lipgloss.NewStyle().GetForeground(), theme.Style(symbols.Color(99)).GetForeground())
}

func TestChanges(t *testing.T) {
	tests := []string{"$alpha$", "$x^(alpha) + sum_(i)^n$", "no math", ""}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			set := decorate(t, text, walker.TierRewrites)

			var before, after strings.Builder
			for _, c := range Changes(text, set) {
				if c.Kind != Added {
					before.WriteString(c.Text)
				}
				if c.Kind != Removed {
					after.WriteString(c.Text)
				}
			}
			require.Equal(t, text, before.String())
			require.Equal(t, Plain(text, set), after.String())
		})
	}
}

func TestChanges_Alpha(t *testing.T) {
	require.Equal(t, []Change{
		{Kind: Unchanged, Text: "$"},
		{Kind: Removed, Text: "alpha"},
		{Kind: Added, Text: "α"},
		{Kind: Unchanged, Text: "$"},
	}, Changes("$alpha$", decorate(t, "$alpha$", walker.TierSymbols)))
}

func TestDiff(t *testing.T) {
	out := Diff("$alpha$", decorate(t, "$alpha$", walker.TierSymbols))
	require.Equal(t, "$alphaα$", ansi.Strip(out))
	require.Contains(t, out, "\x1b[")
}

func TestLegend(t *testing.T) {
	text := "$sqrt(x) + alpha$"
	set := decorate(t, text, walker.TierRewrites)

	lines := strings.Split(ansi.Strip(Legend(set, DefaultTheme())), "\n")
	require.Len(t, lines, set.Len()+1)
	require.True(t, strings.HasPrefix(lines[0], "glyph"))

	joined := strings.Join(lines, "\n")
	require.Contains(t, joined, "hide")
	require.Contains(t, joined, "letter")
	require.Contains(t, joined, "∅")
	require.Contains(t, joined, "◌\u0305")
}

func TestLegend_Empty(t *testing.T) {
	require.Empty(t, Legend(nil, DefaultTheme()))
	require.Empty(t, Legend(decoration.NewSet(0), DefaultTheme()))
}

func TestSymbolTable(t *testing.T) {
	resolver := symbols.NewResolver(map[string]symbols.Glyph{
		"divides": {Content: "|", Color: symbols.Operator},
	}, nil)

	md := SymbolTable(resolver, []string{"alpha", "nope", "divides"})
	assert.Contains(t, md, "| `alpha` | α | letter |")
	assert.Contains(t, md, "| `divides` | \\| | operator |")
	assert.NotContains(t, md, "nope")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown(SymbolTable(symbols.Default(), []string{"alpha", "beta"}), 80, "")
	require.NoError(t, err)

	plain := ansi.Strip(out)
	assert.Contains(t, plain, "alpha")
	assert.Contains(t, plain, "β")
}
