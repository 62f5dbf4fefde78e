package syntax

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Node is one node of the syntax tree. Leaves carry their source text,
// inner nodes carry ordered children. Nodes are immutable once parsed.
type Node struct {
	kind     Kind
	span     Span
	text     string
	children []*Node
	parent   *Node
}

// Kind returns the node's syntactic kind.
func (n *Node) Kind() Kind {
	return n.kind
}

// Span returns the node's byte range in the source.
func (n *Node) Span() Span {
	return n.span
}

// Text returns the source text of the node. For inner nodes this is the
// concatenation of all leaf texts below it.
func (n *Node) Text() string {
	if len(n.children) == 0 {
		return n.text
	}
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if len(n.children) == 0 {
		sb.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.writeText(sb)
	}
}

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the i-th child, or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// ParentKind returns the kind of the enclosing node.
func (n *Node) ParentKind() (Kind, bool) {
	if n.parent == nil {
		return KindError, false
	}
	return n.parent.kind, true
}

// PrevSibling returns the child of the parent directly before n.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	for i, c := range n.parent.children {
		if c == n {
			return n.parent.Child(i - 1)
		}
	}
	return nil
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}

// Dump renders the subtree as an indented outline, one node per line.
// Intended for debugging and test failure output.
func (n *Node) Dump() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.kind.String())
	sb.WriteString(" ")
	sb.WriteString(n.span.String())
	if n.IsLeaf() {
		fmt.Fprintf(sb, " %q", n.text)
	}
	sb.WriteString("\n")
	for _, c := range n.children {
		c.dump(sb, depth+1)
	}
}

func newLeaf(kind Kind, span Span, text string) *Node {
	return &Node{kind: kind, span: span, text: text}
}

// newInner builds an inner node spanning its children. pos is used as the
// (empty) span when there are no children.
func newInner(kind Kind, children []*Node, pos int) *Node {
	n := &Node{kind: kind, children: children, span: Span{Start: pos, End: pos}}
	if len(children) > 0 {
		n.span = Span{Start: children[0].span.Start, End: children[len(children)-1].span.End}
	}
	for _, c := range children {
		c.parent = n
	}
	return n
}

// NewLeaf builds a detached leaf node. Trees built by hand are meant for
// tests of code that consumes the tree; Parse is the usual entry point.
func NewLeaf(kind Kind, span Span, text string) *Node {
	return newLeaf(kind, span, text)
}

// NewInner builds an inner node spanning its children and adopts them.
func NewInner(kind Kind, children ...*Node) *Node {
	return newInner(kind, children, 0)
}
