package preview

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/typstmath/internal/decoration"
)

// Legend lists every decoration of set, one per line: the glyph, its key,
// its color category and how many ranges it covers. Columns are aligned by
// display width so wide and combining glyphs line up.
func Legend(set *decoration.Set, theme Theme) string {
	if set == nil || set.Len() == 0 {
		return ""
	}

	type row struct {
		glyph, key, color string
		d                 decoration.Decoration
	}
	var rows []row
	glyphWidth, keyWidth, colorWidth := len("glyph"), len("key"), len("color")
	for _, key := range set.Keys() {
		d, _ := set.Get(key)
		glyph := d.Content
		if key == decoration.HideKey {
			glyph = "∅"
		} else if runewidth.StringWidth(glyph) == 0 {
			// Combining marks render on a dotted circle.
			glyph = "◌" + glyph
		}
		rows = append(rows, row{glyph: glyph, key: key.String(), color: d.Color.String(), d: d})
		glyphWidth = max(glyphWidth, runewidth.StringWidth(glyph))
		keyWidth = max(keyWidth, runewidth.StringWidth(key.String()))
		colorWidth = max(colorWidth, len(d.Color.String()))
	}

	var b strings.Builder
	header := fmt.Sprintf("%s  %s  %s  spans",
		runewidth.FillRight("glyph", glyphWidth),
		runewidth.FillRight("key", keyWidth),
		runewidth.FillRight("color", colorWidth))
	b.WriteString(mutedStyle.Render(header))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(theme.Style(r.d.Color).Render(runewidth.FillRight(r.glyph, glyphWidth)))
		fmt.Fprintf(&b, "  %s  %s  %d",
			runewidth.FillRight(r.key, keyWidth),
			runewidth.FillRight(r.color, colorWidth),
			len(r.d.Spans))
	}
	return b.String()
}
