package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/typstmath/internal/decoration"
)

// ChangeKind classifies a run of a Diff.
type ChangeKind int

const (
	Unchanged ChangeKind = iota
	Removed
	Added
)

// Change is a run of text that decorating keeps, removes or adds.
type Change struct {
	Kind ChangeKind
	Text string
}

// Changes diffs the source text against its plain decorated rendition.
func Changes(text string, set *decoration.Set) []Change {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(text, Plain(text, set), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	changes := make([]Change, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			changes = append(changes, Change{Kind: Unchanged, Text: d.Text})
		case diffmatchpatch.DiffDelete:
			changes = append(changes, Change{Kind: Removed, Text: d.Text})
		case diffmatchpatch.DiffInsert:
			changes = append(changes, Change{Kind: Added, Text: d.Text})
		}
	}
	return changes
}

var (
	removedStyle = lipgloss.NewStyle().Foreground(OperatorColor).Strikethrough(true)
	addedStyle   = lipgloss.NewStyle().Foreground(SetColor).Bold(true)
)

// Diff renders Changes inline: removed source struck through, added glyphs
// highlighted.
func Diff(text string, set *decoration.Set) string {
	var b strings.Builder
	for _, c := range Changes(text, set) {
		switch c.Kind {
		case Removed:
			b.WriteString(removedStyle.Render(c.Text))
		case Added:
			b.WriteString(addedStyle.Render(c.Text))
		default:
			b.WriteString(c.Text)
		}
	}
	return b.String()
}
