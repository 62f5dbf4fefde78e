// Package preview applies decorations to source text for the terminal: the
// decorated ranges are replaced by their glyphs, colored by category, and
// hidden ranges disappear. It also renders a before/after diff and a color
// legend.
package preview

import (
	"sort"
	"strings"

	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/syntax"
)

// Segment is one run of the output. Undecorated runs carry the source text
// unchanged; decorated runs carry the replacement, which is empty for
// hidden ranges.
type Segment struct {
	Span      syntax.Span
	Text      string
	Decorated bool
	Key       decoration.Key
	Color     symbols.Color
	Bold      bool
}

// Hidden reports whether the segment removes its range.
func (s Segment) Hidden() bool {
	return s.Decorated && s.Key == decoration.HideKey
}

type placed struct {
	span syntax.Span
	key  decoration.Key
	dec  decoration.Decoration
}

// Segments splits text into decorated and undecorated runs covering the
// whole text in order. When two recorded spans overlap the earlier (and,
// at equal starts, the longer) one wins. Empty spans are ignored.
func Segments(text string, set *decoration.Set) []Segment {
	var all []placed
	if set != nil {
		for _, key := range set.Keys() {
			d, _ := set.Get(key)
			for _, span := range d.Spans {
				if span.Start >= span.End || span.End > len(text) {
					continue
				}
				all = append(all, placed{span: span, key: key, dec: d})
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].span.Start != all[j].span.Start {
			return all[i].span.Start < all[j].span.Start
		}
		return all[i].span.End > all[j].span.End
	})

	var segs []Segment
	cursor := 0
	for _, p := range all {
		if p.span.Start < cursor {
			log.Debug(log.CatPreview, "skipping overlapping decoration", "key", p.key.String(), "start", p.span.Start)
			continue
		}
		if p.span.Start > cursor {
			segs = append(segs, plainSegment(text, cursor, p.span.Start))
		}
		segs = append(segs, Segment{
			Span:      p.span,
			Text:      replacement(p.key, p.dec.Content),
			Decorated: true,
			Key:       p.key,
			Color:     p.dec.Color,
			Bold:      strings.Contains(p.dec.Style, "font-weight: bold"),
		})
		cursor = p.span.End
	}
	if cursor < len(text) {
		segs = append(segs, plainSegment(text, cursor, len(text)))
	}
	return segs
}

func plainSegment(text string, start, end int) Segment {
	return Segment{Span: syntax.Span{Start: start, End: end}, Text: text[start:end]}
}

// replacement is the terminal rendition of a decoration's content. Lifted
// attachments become Unicode super- or subscripts when every rune has one.
func replacement(key decoration.Key, content string) string {
	switch key.Namespace {
	case "top-":
		return script(content, superscripts)
	case "bottom-":
		return script(content, subscripts)
	}
	return content
}

// Plain returns text with every decoration applied and no styling.
func Plain(text string, set *decoration.Set) string {
	var b strings.Builder
	for _, seg := range Segments(text, set) {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Render returns text with every decoration applied and replacements
// styled by theme.
func Render(text string, set *decoration.Set, theme Theme) string {
	var b strings.Builder
	for _, seg := range Segments(text, set) {
		if !seg.Decorated || seg.Text == "" {
			b.WriteString(seg.Text)
			continue
		}
		style := theme.Style(seg.Color)
		if seg.Bold {
			style = style.Bold(true)
		}
		b.WriteString(style.Render(seg.Text))
	}
	return b.String()
}
