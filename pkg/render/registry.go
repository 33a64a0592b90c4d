package render

import "sort"

// Registry maps selectors to rules. Selectors are plain strings: an
// exact tag name, the "*" wildcard, or one of the reserved text and
// comment tokens. No normalization is applied beyond exact match.
//
// Registries are populated before rendering starts and then mutated
// only through WithScopedOverride during a pass, so no locking is
// needed: rendering is single-threaded by design.
type Registry struct {
	rules map[string]*Rule
}

// Reserved selectors, tried in declaration order for non-element
// nodes.
const (
	SelectorWildcard = "*"

	SelectorText       = "#text"
	SelectorTextAlt    = "text()"
	SelectorComment    = "#comment"
	SelectorCommentAlt = "comment()"
)

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*Rule)}
}

// Set installs the rule for a selector, replacing any previous value.
func (r *Registry) Set(selector string, rule *Rule) {
	r.rules[selector] = rule
}

// Lookup returns the rule for an exact selector.
func (r *Registry) Lookup(selector string) (*Rule, bool) {
	rule, ok := r.rules[selector]
	return rule, ok
}

// Resolve returns the rule for a tag name, falling back to the "*"
// wildcard. The returned selector names the entry that matched, so a
// scoped override lands on the right key.
func (r *Registry) Resolve(tagName string) (*Rule, string, bool) {
	if rule, ok := r.rules[tagName]; ok {
		return rule, tagName, true
	}
	if rule, ok := r.rules[SelectorWildcard]; ok {
		return rule, SelectorWildcard, true
	}
	return nil, "", false
}

// ResolveText returns the rule for text nodes, trying "#text" then
// "text()".
func (r *Registry) ResolveText() (*Rule, string, bool) {
	return r.resolveReserved(SelectorText, SelectorTextAlt)
}

// ResolveComment returns the rule for comment nodes, trying "#comment"
// then "comment()".
func (r *Registry) ResolveComment() (*Rule, string, bool) {
	return r.resolveReserved(SelectorComment, SelectorCommentAlt)
}

func (r *Registry) resolveReserved(selectors ...string) (*Rule, string, bool) {
	for _, selector := range selectors {
		if rule, ok := r.rules[selector]; ok {
			return rule, selector, true
		}
	}
	return nil, "", false
}

// Selectors returns the registered selector set, sorted. Intended for
// diagnostics and tests.
func (r *Registry) Selectors() []string {
	out := make([]string, 0, len(r.rules))
	for selector := range r.rules {
		out = append(out, selector)
	}
	sort.Strings(out)
	return out
}

// WithScopedOverride installs override as the live rule for selector,
// runs body, and restores the prior value no matter how body exits.
// Overrides nest strictly last-in-first-out, matching the render call
// stack.
func (r *Registry) WithScopedOverride(selector string, override *Rule, body func() (string, error)) (string, error) {
	saved, existed := r.rules[selector]
	r.rules[selector] = override
	defer func() {
		if existed {
			r.rules[selector] = saved
		} else {
			delete(r.rules, selector)
		}
	}()
	return body()
}
