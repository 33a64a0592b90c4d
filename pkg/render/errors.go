package render

import "fmt"

// TaintError reports character/byte representation mixing detected in
// a node's rendered output while strict mode is active. It is fatal to
// the whole render call.
type TaintError struct {
	// Location is the diagnostic path of the node whose output was
	// flagged.
	Location string
	// Text is the offending rendered fragment.
	Text string
}

func (e *TaintError) Error() string {
	return fmt.Sprintf("render: tainted output at %s: %q", e.Location, e.Text)
}
