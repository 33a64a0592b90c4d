// Package render is the recursive rendering core: it resolves a rule
// for every node of a document tree, lets the rule's callback steer
// control flow, and splices literal fragments, interpolated path
// expressions, and recursively rendered children into a single output
// string.
//
// The engine is backend-agnostic; all tree and path-query access goes
// through a tree.Bridge. Rendering is synchronous and depth-first,
// with recursion depth proportional to document nesting.
package render
