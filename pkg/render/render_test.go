package render

import (
	"strings"
	"testing"

	bridgexmlquery "github.com/goliatone/go-pathscript/pkg/bridges/xmlquery"
	"github.com/goliatone/go-pathscript/pkg/tree"
)

// parseDoc parses an XML fragment with the xmlquery backend and
// returns the document node.
func parseDoc(t *testing.T, src string) (tree.Bridge, tree.Node) {
	t.Helper()
	bridge := bridgexmlquery.New()
	doc, err := bridge.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return bridge, doc
}

// findElement walks the tree depth-first for the first element with
// the given tag.
func findElement(t *testing.T, bridge tree.Bridge, node tree.Node, tag string) tree.Node {
	t.Helper()
	if found := findElementIn(bridge, node, tag); found != nil {
		return found
	}
	t.Fatalf("no element %q in document", tag)
	return nil
}

func findElementIn(bridge tree.Bridge, node tree.Node, tag string) tree.Node {
	if bridge.Kind(node) == tree.KindElement && bridge.TagName(node) == tag {
		return node
	}
	for _, child := range bridge.Children(node) {
		if found := findElementIn(bridge, child, tag); found != nil {
			return found
		}
	}
	return nil
}
