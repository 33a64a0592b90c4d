package render

import (
	"unicode/utf8"

	"github.com/goliatone/go-pathscript/pkg/tree"
)

// IsTainted reports whether s carries characters that require a
// multi-byte encoded representation. Concatenating such decoded text
// with byte-oriented output silently reinterprets the whole result,
// which corrupts downstream encoders in locale-dependent ways; strict
// mode turns the hazard into an error instead.
func IsTainted(s string) bool {
	return len(s) != utf8.RuneCountInString(s)
}

// checkTaint validates a node's assembled output under strict mode.
func (e *Engine) checkTaint(node tree.Node, rendered string) error {
	if !e.strictTaint || !IsTainted(rendered) {
		return nil
	}
	return &TaintError{
		Location: e.Locate(node),
		Text:     rendered,
	}
}
