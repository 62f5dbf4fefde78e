package syntax

// Source is a parsed document: the original text plus its syntax tree.
type Source struct {
	text  string
	root  *Node
	count int
}

// Parse parses Typst markup into a Source. Parsing never fails; input the
// parser does not understand ends up in Error or Text leaves.
func Parse(text string) *Source {
	p := newParser(text)
	root := p.parseMarkup(false)
	return &Source{text: text, root: root, count: root.Count()}
}

// Text returns the original source text.
func (s *Source) Text() string {
	return s.text
}

// Root returns the root Markup node.
func (s *Source) Root() *Node {
	return s.root
}

// NodeCount returns the total number of nodes in the tree.
func (s *Source) NodeCount() int {
	return s.count
}

// Range returns the source text covered by span, clamped to the text.
func (s *Source) Range(span Span) string {
	start := max(0, min(span.Start, len(s.text)))
	end := max(start, min(span.End, len(s.text)))
	return s.text[start:end]
}

// Enclosing returns the deepest node whose span contains span, or nil when
// span lies outside the document.
func (s *Source) Enclosing(span Span) *Node {
	return enclosing(s.root, span)
}

func enclosing(n *Node, span Span) *Node {
	if !n.span.Contains(span) {
		return nil
	}
	for _, c := range n.children {
		if found := enclosing(c, span); found != nil {
			return found
		}
	}
	return n
}
