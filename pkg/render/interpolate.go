package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-pathscript/pkg/tree"
)

// DefaultDelimiterPattern matches {expr} with a lazy body, one capture
// group holding the path expression.
var DefaultDelimiterPattern = regexp.MustCompile(`\{(.*?)\}`)

// interpolate substitutes embedded path expressions inside a literal
// fragment, evaluating each against node. Empty templates pass
// through, as does everything when interpolation is disabled. The scan
// is a single pass: substituted text is never re-scanned.
func (e *Engine) interpolate(node tree.Node, template string) (string, error) {
	if template == "" {
		return "", nil
	}
	if !e.interpolation {
		return template, nil
	}

	matches := e.delimiter.FindAllStringSubmatchIndex(template, -1)
	if matches == nil {
		return template, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(template[last:m[0]])
		expr := template[m[2]:m[3]]
		value, err := e.bridge.Evaluate(node, expr)
		if err != nil {
			return "", fmt.Errorf("render: interpolate %q: %w", expr, err)
		}
		sb.WriteString(value.String())
		last = m[1]
	}
	sb.WriteString(template[last:])
	return sb.String(), nil
}
