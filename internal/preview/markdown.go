package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/typstmath/internal/symbols"
)

// noMarginStyle is a glamour JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// SymbolTable returns a markdown table of the named symbols as resolved by
// resolver. Names the resolver does not know are skipped.
func SymbolTable(resolver *symbols.Resolver, names []string) string {
	var b strings.Builder
	b.WriteString("| Name | Glyph | Color |\n")
	b.WriteString("|------|-------|-------|\n")
	for _, name := range names {
		glyph, ok := resolver.Resolve(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", name, escapeCell(glyph.Content), glyph.Color)
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders markdown for the terminal, wrapped at width.
// style is a glamour style name such as "dark" or "light"; empty means
// "dark". The fixed style avoids glamour's terminal background query.
func RenderMarkdown(markdown string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	return r.Render(markdown)
}
