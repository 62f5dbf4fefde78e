package symbols

import (
	"sort"
	"strings"
)

// Resolver resolves symbol names against user-defined symbols layered over
// the static table, minus blacklisted names. A Resolver is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	custom    map[string]Glyph
	blacklist map[string]struct{}
}

// NewResolver builds a resolver. custom entries shadow static ones; names in
// blacklist never resolve, whichever table they come from.
func NewResolver(custom map[string]Glyph, blacklist []string) *Resolver {
	r := &Resolver{
		custom:    make(map[string]Glyph, len(custom)),
		blacklist: make(map[string]struct{}, len(blacklist)),
	}
	for name, g := range custom {
		r.custom[name] = g
	}
	for _, name := range blacklist {
		r.blacklist[name] = struct{}{}
	}
	return r
}

// Default returns a resolver over the static table alone.
func Default() *Resolver {
	return NewResolver(nil, nil)
}

// Resolve returns the glyph for a plain or dotted name. A leading "sym."
// is ignored.
func (r *Resolver) Resolve(name string) (Glyph, bool) {
	name = strings.TrimPrefix(name, "sym.")
	if _, blocked := r.blacklist[name]; blocked {
		return Glyph{}, false
	}
	if g, ok := r.custom[name]; ok {
		return g, true
	}
	return Lookup(name)
}

// Names returns every resolvable name, sorted.
func (r *Resolver) Names() []string {
	seen := make(map[string]struct{}, len(table)+len(r.custom))
	for name := range table {
		seen[name] = struct{}{}
	}
	for name := range r.custom {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		if _, blocked := r.blacklist[name]; !blocked {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Blacklisted reports whether name is blacklisted.
func (r *Resolver) Blacklisted(name string) bool {
	_, ok := r.blacklist[name]
	return ok
}
