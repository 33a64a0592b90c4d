package render

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/goliatone/go-pathscript/pkg/tree"
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithInterpolation toggles path-expression interpolation inside
// fragment strings. Enabled by default.
func WithInterpolation(enabled bool) Option {
	return func(e *Engine) {
		e.interpolation = enabled
	}
}

// WithDelimiterPattern overrides the interpolation delimiter. The
// pattern must expose one capture group holding the path expression.
func WithDelimiterPattern(pattern *regexp.Regexp) Option {
	return func(e *Engine) {
		if pattern != nil {
			e.delimiter = pattern
		}
	}
}

// WithStrictTaint enables the encoding-mixing guard: any node whose
// assembled output carries multi-byte decoded characters fails the
// render call with a *TaintError.
func WithStrictTaint(enabled bool) Option {
	return func(e *Engine) {
		e.strictTaint = enabled
	}
}

// WithLogger injects a structured logger for the engine's warning
// paths. Nil restores the default discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = discardLogger()
		}
		e.logger = logger
	}
}

// Engine drives one rendering pass: rule resolution, callback
// dispatch, fragment assembly, and recursion into children. An Engine
// is single-threaded; build one per pass or serialise callers.
type Engine struct {
	bridge        tree.Bridge
	registry      *Registry
	interpolation bool
	delimiter     *regexp.Regexp
	strictTaint   bool
	logger        *slog.Logger
}

// New constructs an Engine over a tree bridge and a populated rule
// registry, applying any options on top of the defaults.
func New(bridge tree.Bridge, registry *Registry, options ...Option) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	e := &Engine{
		bridge:        bridge,
		registry:      registry,
		interpolation: true,
		delimiter:     DefaultDelimiterPattern,
		logger:        discardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Registry exposes the engine's live rule registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Render renders the nodes in order and concatenates their output.
// Errors abort the whole call; there is no partial result.
func (e *Engine) Render(nodes ...tree.Node) (string, error) {
	var sb strings.Builder
	for _, node := range nodes {
		out, err := e.renderOne(node)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func (e *Engine) renderOne(node tree.Node) (string, error) {
	var (
		out string
		err error
	)
	switch e.bridge.Kind(node) {
	case tree.KindDocument:
		root := e.bridge.Root(node)
		if root == nil {
			return "", nil
		}
		return e.renderOne(root)
	case tree.KindElement:
		out, err = e.renderElement(node)
	case tree.KindText:
		out, err = e.renderText(node)
	case tree.KindComment:
		out, err = e.renderComment(node)
	case tree.KindProcInst:
		// Instructions directly under the document root belong to the
		// document envelope, not the rendered content.
		if parent := e.bridge.Parent(node); parent != nil && e.bridge.Kind(parent) == tree.KindDocument {
			return "", nil
		}
		out = e.bridge.Serialize(node)
	default:
		out = e.bridge.Serialize(node)
	}
	if err != nil {
		return "", err
	}
	if err := e.checkTaint(node, out); err != nil {
		return "", err
	}
	return out, nil
}

func (e *Engine) renderElement(node tree.Node) (string, error) {
	rule, selector, ok := e.registry.Resolve(e.bridge.TagName(node))
	if !ok {
		return e.passThrough(node)
	}

	ov := Overrides{}
	ctl := Descend()
	if rule.Callback != nil {
		var err error
		ctl, err = rule.Callback(node, ov)
		if err != nil {
			// Callback failures propagate unchanged.
			return "", err
		}
	}

	// The clone carries the callback's overrides for this node and its
	// whole subtree; the registry restores the original on every exit
	// path.
	effective := rule.Clone()
	effective.apply(ov)

	return e.registry.WithScopedOverride(selector, effective, func() (string, error) {
		return e.assembleElement(node, effective, ctl)
	})
}

func (e *Engine) assembleElement(node tree.Node, rule *Rule, ctl Control) (string, error) {
	if ctl.Kind == KindSkip {
		return "", nil
	}

	kids := e.bridge.Children(node)
	hasKids := len(kids) > 0

	var sb strings.Builder

	pre, err := e.interpolate(node, rule.Pre)
	if err != nil {
		return "", err
	}
	sb.WriteString(pre)
	if rule.ShowTag {
		sb.WriteString(e.openTag(node))
	}
	sb.WriteString(rule.Intro)
	if hasKids {
		preChildren, err := e.interpolate(node, rule.PreChildren)
		if err != nil {
			return "", err
		}
		sb.WriteString(preChildren)
	}

	switch ctl.Kind {
	case KindSelfAndKids:
		if err := e.renderChildren(&sb, rule, kids); err != nil {
			return "", err
		}
	case KindSelectChildren:
		selected, err := e.bridge.Evaluate(node, ctl.Path)
		if err != nil {
			return "", fmt.Errorf("render: select children %q: %w", ctl.Path, err)
		}
		if err := e.renderChildren(&sb, rule, selected.Nodes()); err != nil {
			return "", err
		}
	}

	if hasKids {
		postChildren, err := e.interpolate(node, rule.PostChildren)
		if err != nil {
			return "", err
		}
		sb.WriteString(postChildren)
	}
	sb.WriteString(rule.Extro)
	if rule.ShowTag {
		sb.WriteString(e.closeTag(node))
	}
	post, err := e.interpolate(node, rule.Post)
	if err != nil {
		return "", err
	}
	sb.WriteString(post)

	return sb.String(), nil
}

// renderChildren concatenates rendered children, wrapping element
// children with the rule's per-child fragments. Text, comment, and
// instruction children are not wrapped.
func (e *Engine) renderChildren(sb *strings.Builder, rule *Rule, kids []tree.Node) error {
	for _, kid := range kids {
		wrap := e.bridge.Kind(kid) == tree.KindElement
		if wrap {
			preChild, err := e.interpolate(kid, rule.PreChild)
			if err != nil {
				return err
			}
			sb.WriteString(preChild)
		}
		out, err := e.renderOne(kid)
		if err != nil {
			return err
		}
		sb.WriteString(out)
		if wrap {
			postChild, err := e.interpolate(kid, rule.PostChild)
			if err != nil {
				return err
			}
			sb.WriteString(postChild)
		}
	}
	return nil
}

// passThrough is the built-in rendition for elements with no matching
// rule and no wildcard: open tag, rendered children, close tag. No
// fragments, no interpolation.
func (e *Engine) passThrough(node tree.Node) (string, error) {
	var sb strings.Builder
	sb.WriteString(e.openTag(node))
	for _, kid := range e.bridge.Children(node) {
		out, err := e.renderOne(kid)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	sb.WriteString(e.closeTag(node))
	return sb.String(), nil
}

func (e *Engine) renderText(node tree.Node) (string, error) {
	rule, _, ok := e.registry.ResolveText()
	if !ok {
		return e.bridge.Content(node), nil
	}

	ov := Overrides{}
	ctl := Descend()
	if rule.Callback != nil {
		var err error
		ctl, err = rule.Callback(node, ov)
		if err != nil {
			return "", err
		}
	}
	if ctl.Kind == KindSkip {
		return "", nil
	}

	// Text nodes have no subtree to scope an override to: the merge
	// lands on the live registry entry and persists for later nodes
	// matching the same selector within this pass.
	if len(ov) > 0 {
		rule.apply(ov)
	}

	middle := ""
	if ctl.Kind == KindTextAsChild {
		middle = e.bridge.Content(node)
	}
	return e.frame(node, rule, middle)
}

func (e *Engine) renderComment(node tree.Node) (string, error) {
	rule, _, ok := e.registry.ResolveComment()
	if !ok {
		return e.bridge.Serialize(node), nil
	}

	ov := Overrides{}
	ctl := Descend()
	if rule.Callback != nil {
		var err error
		ctl, err = rule.Callback(node, ov)
		if err != nil {
			return "", err
		}
	}
	if ctl.Kind == KindSkip {
		return "", nil
	}

	// Same live-entry merge as text rules.
	if len(ov) > 0 {
		rule.apply(ov)
	}

	middle := e.bridge.Content(node)
	if ctl.Kind == KindSelfOnly {
		middle = ""
	}
	return e.frame(node, rule, middle)
}

// frame assembles pre + middle + post for nodes without child
// recursion.
func (e *Engine) frame(node tree.Node, rule *Rule, middle string) (string, error) {
	pre, err := e.interpolate(node, rule.Pre)
	if err != nil {
		return "", err
	}
	post, err := e.interpolate(node, rule.Post)
	if err != nil {
		return "", err
	}
	return pre + middle + post, nil
}

// Invoke renders a node under an explicitly named rule, bypassing
// selector resolution and the rule's callback. Callbacks use this to
// re-enter the engine with a different rule. This path cannot honor
// child-wrapping fragments; rules that declare them are degraded to
// empty wrappers with a warning.
func (e *Engine) Invoke(node tree.Node, selector string) (string, error) {
	rule, ok := e.registry.Lookup(selector)
	if !ok {
		return "", fmt.Errorf("render: invoke: no rule for selector %q", selector)
	}

	effective := rule.Clone()
	if effective.PreChild != "" || effective.PostChild != "" ||
		effective.PreChildren != "" || effective.PostChildren != "" {
		e.logger.Warn("rule declares child wrappers; direct invocation cannot honor them",
			"selector", selector)
		effective.PreChild, effective.PostChild = "", ""
		effective.PreChildren, effective.PostChildren = "", ""
	}

	out, err := e.assembleElement(node, effective, Descend())
	if err != nil {
		return "", err
	}
	if err := e.checkTaint(node, out); err != nil {
		return "", err
	}
	return out, nil
}

func (e *Engine) openTag(node tree.Node) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(e.bridge.TagName(node))
	sb.WriteString(e.bridge.SerializeNamespaces(node))
	sb.WriteString(e.bridge.SerializeAttrs(node))
	sb.WriteString(">")
	return sb.String()
}

func (e *Engine) closeTag(node tree.Node) string {
	name := e.bridge.TagName(node)
	if name == "" {
		// Anonymous node; nothing sensible to close.
		return ""
	}
	return "</" + name + ">"
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
