// Package etree adapts github.com/beevik/etree to the tree bridge
// contract. It evaluates etree path queries, which always produce node
// collections; scalar-producing expressions are not available on this
// backend.
package etree

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/goliatone/go-pathscript/pkg/tree"
)

// BackendName is the registry key for this bridge.
const BackendName = "etree"

// Bridge implements tree.Bridge over etree documents. The zero value
// is ready to use.
type Bridge struct{}

// New returns a Bridge instance.
func New() *Bridge {
	return &Bridge{}
}

func (b *Bridge) Name() string { return BackendName }

func (b *Bridge) Parse(r io.Reader) (tree.Node, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("etree: parse document: %w", err)
	}
	return doc, nil
}

func (b *Bridge) Kind(n tree.Node) tree.Kind {
	switch v := n.(type) {
	case *etree.Document:
		return tree.KindDocument
	case *etree.Element:
		// Walking upward from the root element lands on the
		// document's embedded element rather than the *Document the
		// parse call returned. Treat it as the document node.
		if isDocElement(v) {
			return tree.KindDocument
		}
		return tree.KindElement
	case *etree.CharData:
		return tree.KindText
	case *etree.Comment:
		return tree.KindComment
	case *etree.ProcInst:
		return tree.KindProcInst
	default:
		return tree.KindOther
	}
}

func (b *Bridge) TagName(n tree.Node) string {
	el, ok := n.(*etree.Element)
	if !ok || el == nil || isDocElement(el) {
		return ""
	}
	return el.FullTag()
}

func (b *Bridge) Content(n tree.Node) string {
	switch v := n.(type) {
	case *etree.CharData:
		return v.Data
	case *etree.Comment:
		return v.Data
	default:
		return ""
	}
}

func (b *Bridge) Children(n tree.Node) []tree.Node {
	var tokens []etree.Token
	switch v := n.(type) {
	case *etree.Document:
		tokens = v.Child
	case *etree.Element:
		tokens = v.Child
	default:
		return nil
	}
	out := make([]tree.Node, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tree.Node(tok))
	}
	return out
}

func (b *Bridge) Parent(n tree.Node) tree.Node {
	switch v := n.(type) {
	case *etree.Document:
		return nil
	case *etree.Element:
		if parent := v.Parent(); parent != nil {
			return parent
		}
		return nil
	case etree.Token:
		if parent := v.Parent(); parent != nil {
			return parent
		}
		return nil
	default:
		return nil
	}
}

func (b *Bridge) Root(doc tree.Node) tree.Node {
	switch v := doc.(type) {
	case *etree.Document:
		if root := v.Root(); root != nil {
			return root
		}
		return nil
	case *etree.Element:
		for _, child := range v.ChildElements() {
			return child
		}
		return nil
	default:
		return nil
	}
}

func (b *Bridge) AttrValue(n tree.Node, name string) (string, bool) {
	el, ok := n.(*etree.Element)
	if !ok || el == nil {
		return "", false
	}
	attr := el.SelectAttr(name)
	if attr == nil {
		return "", false
	}
	return attr.Value, true
}

func (b *Bridge) SerializeAttrs(n tree.Node) string {
	el, ok := n.(*etree.Element)
	if !ok || el == nil {
		return ""
	}
	var sb strings.Builder
	for _, attr := range el.Attr {
		sb.WriteString(" ")
		sb.WriteString(attr.FullKey())
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(attr.Value))
		sb.WriteString(`"`)
	}
	return sb.String()
}

// SerializeNamespaces returns "" for this backend: etree keeps xmlns
// declarations in the attribute list, so SerializeAttrs already emits
// them.
func (b *Bridge) SerializeNamespaces(n tree.Node) string { return "" }

func (b *Bridge) Serialize(n tree.Node) string {
	if doc, ok := n.(*etree.Document); ok {
		out, err := doc.WriteToString()
		if err != nil {
			return ""
		}
		return out
	}
	tok, ok := n.(etree.Token)
	if !ok {
		return ""
	}
	var sb strings.Builder
	w := bufio.NewWriter(&sb)
	tok.WriteTo(w, &etree.WriteSettings{})
	w.Flush()
	return sb.String()
}

func (b *Bridge) Evaluate(n tree.Node, expr string) (tree.Result, error) {
	var ctx *etree.Element
	switch v := n.(type) {
	case *etree.Document:
		ctx = &v.Element
	case *etree.Element:
		ctx = v
	default:
		return nil, fmt.Errorf("etree: evaluate %q: context node is not an element", expr)
	}

	path, err := etree.CompilePath(expr)
	if err != nil {
		return nil, fmt.Errorf("etree: compile %q: %w", expr, err)
	}

	matched := ctx.FindElementsPath(path)
	nodes := make([]tree.Node, 0, len(matched))
	for _, el := range matched {
		nodes = append(nodes, el)
	}
	return &result{nodes: nodes}, nil
}

func (b *Bridge) Same(a, c tree.Node) bool { return a == c }

type result struct {
	nodes []tree.Node
}

func (r *result) Nodes() []tree.Node { return r.nodes }

func (r *result) String() string {
	var sb strings.Builder
	for _, n := range r.nodes {
		if el, ok := n.(*etree.Element); ok {
			deepText(el, &sb)
		}
	}
	return sb.String()
}

// deepText collects character data across the whole subtree;
// etree's own Text() only returns the leading chardata token.
func deepText(el *etree.Element, sb *strings.Builder) {
	for _, tok := range el.Child {
		switch v := tok.(type) {
		case *etree.CharData:
			sb.WriteString(v.Data)
		case *etree.Element:
			deepText(v, sb)
		}
	}
}

func isDocElement(el *etree.Element) bool {
	return el.Tag == "" && el.Parent() == nil
}

func escapeAttr(value string) string {
	return attrEscaper.Replace(value)
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)
