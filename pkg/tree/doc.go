// Package tree defines the capability contract the rendering engine
// needs from a document tree provider: node classification, child and
// parent traversal, markup serialization of attributes and namespace
// declarations, and path-expression evaluation.
//
// The engine never owns nodes; it borrows them from a Bridge for the
// duration of a render call and compares them by identity. Backends
// live under pkg/bridges and register themselves by name so callers
// can pick a provider at runtime.
package tree
