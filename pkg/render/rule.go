package render

import (
	"fmt"

	"github.com/goliatone/go-pathscript/pkg/tree"
)

// CallbackFunc inspects the node about to be rendered and may adjust
// the rendering parameters by writing to ov. The returned Control
// decides whether and how the node's children are rendered. A non-nil
// error aborts the whole render call.
type CallbackFunc func(node tree.Node, ov Overrides) (Control, error)

// Rule is the set of literal fragments, flags, and optional callback
// governing how a selector's nodes render. All fragment fields are
// eligible for path-expression interpolation unless noted otherwise.
type Rule struct {
	// Pre and Post wrap the node's entire output.
	Pre  string
	Post string

	// Intro and Extro sit inside the tag wrappers. They are emitted
	// verbatim, without interpolation.
	Intro string
	Extro string

	// PreChild and PostChild wrap each rendered element child.
	PreChild  string
	PostChild string

	// PreChildren and PostChildren wrap the whole child block, and
	// only appear when the node has children.
	PreChildren  string
	PostChildren string

	// ShowTag re-emits the node's own open and close tags.
	ShowTag bool

	Callback CallbackFunc

	// Extra holds override fields the engine does not recognize.
	// They are carried unvalidated so callbacks can pass hints to
	// each other.
	Extra map[string]string
}

// Clone returns a copy of the rule suitable for scoped mutation.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return &Rule{}
	}
	dup := *r
	if len(r.Extra) > 0 {
		dup.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			dup.Extra[k] = v
		}
	}
	return &dup
}

// Overrides is the mutable record a callback writes rendering
// parameters into. Recognized keys map onto Rule fields; anything
// else is merged into Rule.Extra as-is.
type Overrides map[string]any

// Recognized override keys.
const (
	OverridePre          = "pre"
	OverridePost         = "post"
	OverrideIntro        = "intro"
	OverrideExtro        = "extro"
	OverridePreChild     = "prechild"
	OverridePostChild    = "postchild"
	OverridePreChildren  = "prechildren"
	OverridePostChildren = "postchildren"
	OverrideShowTag      = "showtag"
)

// apply merges the override record into the rule. Unrecognized keys
// are accepted without validation.
func (r *Rule) apply(ov Overrides) {
	for key, value := range ov {
		switch key {
		case OverridePre:
			r.Pre = stringValue(value)
		case OverridePost:
			r.Post = stringValue(value)
		case OverrideIntro:
			r.Intro = stringValue(value)
		case OverrideExtro:
			r.Extro = stringValue(value)
		case OverridePreChild:
			r.PreChild = stringValue(value)
		case OverridePostChild:
			r.PostChild = stringValue(value)
		case OverridePreChildren:
			r.PreChildren = stringValue(value)
		case OverridePostChildren:
			r.PostChildren = stringValue(value)
		case OverrideShowTag:
			r.ShowTag = boolValue(value)
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[key] = stringValue(value)
		}
	}
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1" || t == "yes"
	case int:
		return t != 0
	default:
		return false
	}
}

// ControlKind enumerates the control-flow decisions a callback can
// return.
type ControlKind int

const (
	// KindSelfAndKids renders the node's wrappers and recurses into
	// all children. It is also the lenient fallback for control codes
	// outside the documented set.
	KindSelfAndKids ControlKind = iota

	// KindSelfOnly renders the wrappers without any child content.
	KindSelfOnly

	// KindSkip produces the empty string regardless of any fragments
	// already set.
	KindSkip

	// KindTextAsChild frames a text node's own content with Pre/Post
	// instead of replacing it. Meaningful for text nodes only.
	KindTextAsChild

	// KindSelectChildren recurses only into the nodes matched by the
	// attached path expression.
	KindSelectChildren
)

func (k ControlKind) String() string {
	switch k {
	case KindSelfAndKids:
		return "self-and-kids"
	case KindSelfOnly:
		return "self-only"
	case KindSkip:
		return "skip"
	case KindTextAsChild:
		return "text-as-child"
	case KindSelectChildren:
		return "select-children"
	default:
		return "unknown"
	}
}

// Control is the decision a callback returns: a kind, plus the path
// expression when children are selected explicitly.
type Control struct {
	Kind ControlKind
	Path string
}

// Descend renders the node and recurses into all children.
func Descend() Control { return Control{Kind: KindSelfAndKids} }

// SelfOnly renders the node's wrappers only.
func SelfOnly() Control { return Control{Kind: KindSelfOnly} }

// Skip produces no output for the node.
func Skip() Control { return Control{Kind: KindSkip} }

// AsChild frames a text node's content instead of replacing it.
func AsChild() Control { return Control{Kind: KindTextAsChild} }

// Select recurses only into the nodes matched by expr, evaluated
// against the current node.
func Select(expr string) Control {
	return Control{Kind: KindSelectChildren, Path: expr}
}

// ControlFromCode translates the numeric control codes of the original
// stylesheet language. 1, -1, 0 and 2 map to descend, self-only, skip
// and text-as-child; any other value falls back to descend. The
// leniency is documented behavior, and this is the single conversion
// point for it.
func ControlFromCode(code int) Control {
	switch code {
	case 1:
		return Descend()
	case -1:
		return SelfOnly()
	case 0:
		return Skip()
	case 2:
		return AsChild()
	default:
		return Descend()
	}
}
