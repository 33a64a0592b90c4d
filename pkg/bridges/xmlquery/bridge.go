// Package xmlquery adapts github.com/antchfx/xmlquery to the tree
// bridge contract. It is the default backend: full XPath 1.0 support,
// scalar results included.
package xmlquery

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/goliatone/go-pathscript/pkg/tree"
)

// BackendName is the registry key for this bridge.
const BackendName = "xmlquery"

// Bridge implements tree.Bridge over *xmlquery.Node documents. The
// zero value is ready to use.
type Bridge struct{}

// New returns a Bridge instance.
func New() *Bridge {
	return &Bridge{}
}

func (b *Bridge) Name() string { return BackendName }

func (b *Bridge) Parse(r io.Reader) (tree.Node, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("xmlquery: parse document: %w", err)
	}
	return doc, nil
}

func (b *Bridge) Kind(n tree.Node) tree.Kind {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil {
		return tree.KindOther
	}
	switch node.Type {
	case xmlquery.DocumentNode:
		return tree.KindDocument
	case xmlquery.ElementNode:
		return tree.KindElement
	case xmlquery.TextNode, xmlquery.CharDataNode:
		return tree.KindText
	case xmlquery.CommentNode:
		return tree.KindComment
	case xmlquery.DeclarationNode:
		// xmlquery parses every processing instruction into a
		// declaration node carrying the target in Data. The document
		// declaration keeps its reserved target.
		if node.Data == "xml" {
			return tree.KindOther
		}
		return tree.KindProcInst
	default:
		return tree.KindOther
	}
}

func (b *Bridge) TagName(n tree.Node) string {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil || node.Type != xmlquery.ElementNode {
		return ""
	}
	if node.Prefix != "" {
		return node.Prefix + ":" + node.Data
	}
	return node.Data
}

func (b *Bridge) Content(n tree.Node) string {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil {
		return ""
	}
	return node.Data
}

func (b *Bridge) Children(n tree.Node) []tree.Node {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil {
		return nil
	}
	var out []tree.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		out = append(out, child)
	}
	return out
}

func (b *Bridge) Parent(n tree.Node) tree.Node {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil || node.Parent == nil {
		return nil
	}
	return node.Parent
}

func (b *Bridge) Root(doc tree.Node) tree.Node {
	node, ok := doc.(*xmlquery.Node)
	if !ok || node == nil {
		return nil
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

func (b *Bridge) AttrValue(n tree.Node, name string) (string, bool) {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil {
		return "", false
	}
	for _, attr := range node.Attr {
		if attrName(attr) == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (b *Bridge) SerializeAttrs(n tree.Node) string {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil {
		return ""
	}
	var sb strings.Builder
	for _, attr := range node.Attr {
		sb.WriteString(" ")
		sb.WriteString(attrName(attr))
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(attr.Value))
		sb.WriteString(`"`)
	}
	return sb.String()
}

// SerializeNamespaces returns "" for this backend: xmlquery keeps
// xmlns declarations in the attribute list, so SerializeAttrs already
// emits them.
func (b *Bridge) SerializeNamespaces(n tree.Node) string { return "" }

func (b *Bridge) Serialize(n tree.Node) string {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil {
		return ""
	}
	return node.OutputXML(true)
}

func (b *Bridge) Evaluate(n tree.Node, expr string) (tree.Result, error) {
	node, ok := n.(*xmlquery.Node)
	if !ok || node == nil {
		return nil, fmt.Errorf("xmlquery: evaluate %q: nil context node", expr)
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("xmlquery: compile %q: %w", expr, err)
	}

	value := compiled.Evaluate(xmlquery.CreateXPathNavigator(node))
	iter, ok := value.(*xpath.NodeIterator)
	if !ok {
		return &result{scalar: formatScalar(value)}, nil
	}

	var nodes []tree.Node
	for iter.MoveNext() {
		nav, ok := iter.Current().(*xmlquery.NodeNavigator)
		if !ok {
			return nil, fmt.Errorf("xmlquery: evaluate %q: unexpected navigator %T", expr, iter.Current())
		}
		nodes = append(nodes, nav.Current())
	}
	return &result{nodes: nodes}, nil
}

func (b *Bridge) Same(a, c tree.Node) bool { return a == c }

type result struct {
	scalar string
	nodes  []tree.Node
}

func (r *result) Nodes() []tree.Node { return r.nodes }

func (r *result) String() string {
	if r.nodes == nil {
		return r.scalar
	}
	var sb strings.Builder
	for _, n := range r.nodes {
		if node, ok := n.(*xmlquery.Node); ok {
			sb.WriteString(node.InnerText())
		}
	}
	return sb.String()
}

func formatScalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func attrName(attr xmlquery.Attr) string {
	if attr.Name.Space != "" {
		return attr.Name.Space + ":" + attr.Name.Local
	}
	return attr.Name.Local
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
