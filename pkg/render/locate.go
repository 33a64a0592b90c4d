package render

import (
	"fmt"

	"github.com/goliatone/go-pathscript/pkg/tree"
)

// Locate computes a diagnostic path identifying a node, for error
// messages only. It never fails: unrecognized node kinds degrade to a
// valid-but-generic step, and the root yields the empty string.
//
// Elements carrying an attribute literally named "id" shortcut to
// name[@id="value"]; everything else gets a 1-based ordinal among
// same-name siblings, found by identity comparison. Identity, not
// structural equality: path-query matching of structurally equal
// siblings is unreliable on one backend.
func (e *Engine) Locate(node tree.Node) string {
	parent := e.bridge.Parent(node)
	if parent == nil {
		return ""
	}

	name := e.stepName(node)

	if e.bridge.Kind(node) == tree.KindElement {
		if id, ok := e.bridge.AttrValue(node, "id"); ok {
			return fmt.Sprintf("%s/%s[@id=%q]", e.Locate(parent), name, id)
		}
	}

	ordinal := 0
	for _, sibling := range e.bridge.Children(parent) {
		if e.stepName(sibling) != name {
			continue
		}
		ordinal++
		if e.bridge.Same(sibling, node) {
			return fmt.Sprintf("%s/%s[%d]", e.Locate(parent), name, ordinal)
		}
	}

	// No identity match under the parent. Should not normally occur.
	return fmt.Sprintf("%s/%s[?]", e.Locate(parent), name)
}

func (e *Engine) stepName(node tree.Node) string {
	switch e.bridge.Kind(node) {
	case tree.KindElement:
		return e.bridge.TagName(node)
	case tree.KindText:
		return "text()"
	case tree.KindComment:
		return "comment()"
	case tree.KindProcInst:
		return "processing-instruction()"
	default:
		return "strange-node()"
	}
}
