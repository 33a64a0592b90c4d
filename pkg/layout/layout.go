// Package layout defines the seam for wrapping a rendered document
// fragment into a page template. The orchestrator feeds the fragment
// to a Renderer under the "content" variable; adapters live in
// subpackages.
package layout

import "io"

// Renderer mirrors the github.com/goliatone/go-template engine
// contract, trimmed to the calls the pipeline needs.
type Renderer interface {
	// Render resolves name as a template path, or as inline template
	// content when it looks like markup.
	Render(name string, data any, out ...io.Writer) (string, error)

	// RenderString treats content as inline template source.
	RenderString(content string, data any, out ...io.Writer) (string, error)
}

// ContentVar is the variable the rendered fragment is exposed as.
const ContentVar = "content"
