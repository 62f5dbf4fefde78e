// Package decoration implements the decoration store: styled replacements
// for byte ranges of a source document, keyed so that identical
// replacements share one entry with several spans.
package decoration

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/syntax"
)

// Key identifies a decoration. Namespace separates renderings of the same
// content in different positions ("", "top-", "bottom-"); Name is derived
// from the content.
type Key struct {
	Namespace string
	Name      string
}

// HideKey is the reserved key for ranges that are hidden without replacement.
var HideKey = Key{Name: "hide"}

func (k Key) String() string {
	return k.Namespace + k.Name
}

func (k Key) less(other Key) bool {
	if k.Namespace != other.Namespace {
		return k.Namespace < other.Namespace
	}
	return k.Name < other.Name
}

// Offset widens a span before it is recorded: the stored range is
// [Start-Leading, End+Trailing).
type Offset struct {
	Leading  int
	Trailing int
}

// Apply returns span widened by the offset and clamped to [0, limit].
func (o Offset) Apply(span syntax.Span, limit int) syntax.Span {
	start := max(0, span.Start-o.Leading)
	end := min(limit, span.End+o.Trailing)
	if start > limit {
		start = limit
	}
	if end < start {
		end = start
	}
	return syntax.Span{Start: start, End: end}
}

// Decoration is one styled replacement applied over one or more spans.
// Content is empty for hidden ranges.
type Decoration struct {
	Key     Key
	Content string
	Color   symbols.Color
	Style   string
	Spans   []syntax.Span
}

type decorationJSON struct {
	Key     string        `json:"key"`
	Content string        `json:"content"`
	Color   symbols.Color `json:"color"`
	Style   string        `json:"style"`
	Spans   [][2]int      `json:"spans"`
}

// MarshalJSON encodes the decoration in the shape editors consume.
func (d Decoration) MarshalJSON() ([]byte, error) {
	spans := make([][2]int, len(d.Spans))
	for i, s := range d.Spans {
		spans[i] = [2]int{s.Start, s.End}
	}
	return json.Marshal(decorationJSON{
		Key:     d.Key.String(),
		Content: d.Content,
		Color:   d.Color,
		Style:   d.Style,
		Spans:   spans,
	})
}

// ConflictError is returned when a key is reused for a decoration whose
// content, color or style differs from the one already stored.
type ConflictError struct {
	Key      Key
	Field    string
	Existing string
	Incoming string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("decoration %q: conflicting %s (%q, then %q)", e.Key, e.Field, e.Existing, e.Incoming)
}

// Set accumulates decorations for one source document. A Set is owned by a
// single walk; it is not safe for concurrent mutation.
type Set struct {
	limit   int
	entries map[Key]*Decoration
}

// NewSet returns an empty set for a source of sourceLen bytes. Recorded
// spans are clamped to the source.
func NewSet(sourceLen int) *Set {
	return &Set{limit: sourceLen, entries: make(map[Key]*Decoration)}
}

// Style records content over span widened by off. Reusing a key appends the
// span; content, color and style must match the existing entry.
func (s *Set) Style(span syntax.Span, key Key, content string, color symbols.Color, style string, off Offset) error {
	return s.add(key, content, color, style, off.Apply(span, s.limit))
}

// Hide records span widened by off as hidden.
func (s *Set) Hide(span syntax.Span, off Offset) error {
	return s.Style(span, HideKey, "", symbols.Noop, "", off)
}

func (s *Set) add(key Key, content string, color symbols.Color, style string, span syntax.Span) error {
	d, ok := s.entries[key]
	if !ok {
		s.entries[key] = &Decoration{
			Key:     key,
			Content: content,
			Color:   color,
			Style:   style,
			Spans:   []syntax.Span{span},
		}
		return nil
	}

	switch {
	case d.Content != content:
		return &ConflictError{Key: key, Field: "content", Existing: d.Content, Incoming: content}
	case d.Color != color:
		return &ConflictError{Key: key, Field: "color", Existing: d.Color.String(), Incoming: color.String()}
	case d.Style != style:
		return &ConflictError{Key: key, Field: "style", Existing: d.Style, Incoming: style}
	}
	for _, existing := range d.Spans {
		if existing == span {
			return nil
		}
	}
	d.Spans = append(d.Spans, span)
	return nil
}

// Merge adds every decoration of other into s under the same rules as
// Style. Conflicting entries are skipped; their errors are returned joined.
func (s *Set) Merge(other *Set) error {
	if other == nil {
		return nil
	}
	var errs []error
	for _, key := range other.Keys() {
		d := other.entries[key]
		if err := s.add(key, d.Content, d.Color, d.Style, d.Spans[0]); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, span := range d.Spans[1:] {
			_ = s.add(key, d.Content, d.Color, d.Style, span)
		}
	}
	return errors.Join(errs...)
}

// Within returns the decorations that touch span, each keeping only its
// spans that overlap span.
func (s *Set) Within(span syntax.Span) *Set {
	out := NewSet(s.limit)
	for key, d := range s.entries {
		for _, sp := range d.Spans {
			if sp.Overlaps(span) {
				_ = out.add(key, d.Content, d.Color, d.Style, sp)
			}
		}
	}
	return out
}

// Get returns a copy of the decoration stored under key.
func (s *Set) Get(key Key) (Decoration, bool) {
	d, ok := s.entries[key]
	if !ok {
		return Decoration{}, false
	}
	return d.clone(), true
}

// Keys returns all keys ordered by namespace, then name.
func (s *Set) Keys() []Key {
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

// Entries returns copies of all decorations in key order.
func (s *Set) Entries() []Decoration {
	keys := s.Keys()
	out := make([]Decoration, len(keys))
	for i, k := range keys {
		out[i] = s.entries[k].clone()
	}
	return out
}

// Len returns the number of distinct keys.
func (s *Set) Len() int {
	return len(s.entries)
}

// SpanCount returns the number of recorded spans across all keys.
func (s *Set) SpanCount() int {
	n := 0
	for _, d := range s.entries {
		n += len(d.Spans)
	}
	return n
}

// Covered returns every recorded span ordered by start, then end.
func (s *Set) Covered() []syntax.Span {
	var spans []syntax.Span
	for _, d := range s.entries {
		spans = append(spans, d.Spans...)
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
	return spans
}

// MarshalJSON encodes the set as an array of decorations in key order.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entries())
}

func (d *Decoration) clone() Decoration {
	c := *d
	c.Spans = append([]syntax.Span(nil), d.Spans...)
	return c
}
