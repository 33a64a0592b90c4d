package tree

import "io"

// Node is an opaque backend node. Backends hand out pointers into
// their own document structures, so two Node values reference the same
// node exactly when they compare equal.
type Node any

// Kind classifies a Node for dispatch purposes.
type Kind int

const (
	// KindOther covers node types the engine serializes verbatim
	// (declarations, directives, CDATA wrappers, ...).
	KindOther Kind = iota
	KindDocument
	KindElement
	KindText
	KindComment
	KindProcInst
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindProcInst:
		return "processing-instruction"
	default:
		return "other"
	}
}

// Result is the outcome of a path-expression evaluation.
type Result interface {
	// String is the string view of the result: the literal for scalar
	// results, the text content for a single node, and the
	// concatenated text content for a node collection.
	String() string

	// Nodes returns the matched node collection, or nil when the
	// expression produced a scalar.
	Nodes() []Node
}

// Bridge adapts one tree provider to the engine. Implementations must
// be safe for reuse across render calls; the engine itself performs no
// locking.
type Bridge interface {
	// Name identifies the backend ("xmlquery", "etree").
	Name() string

	// Parse reads a document and returns its document node.
	Parse(r io.Reader) (Node, error)

	Kind(n Node) Kind

	// TagName returns the element tag (qualified form when the node
	// carries a prefix). Empty for non-elements and anonymous nodes.
	TagName(n Node) string

	// Content returns the character data of a text or comment node.
	Content(n Node) string

	Children(n Node) []Node

	// Parent returns nil for the document node.
	Parent(n Node) Node

	// Root returns the root element of a document node.
	Root(doc Node) Node

	// AttrValue looks up an attribute literally named name on an
	// element node.
	AttrValue(n Node, name string) (string, bool)

	// SerializeAttrs renders the node's attributes in markup form,
	// with a leading space per attribute (` a="b" c="d"`), or "".
	SerializeAttrs(n Node) string

	// SerializeNamespaces renders namespace declarations that are not
	// already part of the attribute list. Backends whose attribute
	// enumeration includes xmlns declarations return "".
	SerializeNamespaces(n Node) string

	// Serialize renders the node verbatim, markup included.
	Serialize(n Node) string

	// Evaluate runs a path expression with n as the context node.
	Evaluate(n Node, expr string) (Result, error)

	// Same reports node identity. Identity, not structural equality:
	// distinct siblings can be byte-identical.
	Same(a, b Node) bool
}
