// Package pathscript renders parsed document trees into text by
// matching each node against a registry of per-tag rules. Rules carry
// literal fragments, path-expression interpolation, and optional
// callbacks that steer control flow per node.
//
// The root package re-exports the pieces most callers need; the
// engine lives in pkg/render, tree backends in pkg/bridges, and the
// end-to-end pipeline in pkg/orchestrator.
package pathscript

import (
	"context"
	"strings"

	"github.com/goliatone/go-pathscript/pkg/orchestrator"
	"github.com/goliatone/go-pathscript/pkg/render"
	"github.com/goliatone/go-pathscript/pkg/tree"
)

// Rule is the per-selector rendering rule.
type Rule = render.Rule

// Control is the decision a rule callback returns.
type Control = render.Control

// Overrides is the mutable record callbacks write rule overrides into.
type Overrides = render.Overrides

// CallbackFunc is the per-node rule callback signature.
type CallbackFunc = render.CallbackFunc

// Engine is the recursive rendering core.
type Engine = render.Engine

// Registry maps selectors to rules.
type Registry = render.Registry

// Node is an opaque backend tree node.
type Node = tree.Node

// Bridge is the tree-provider capability contract.
type Bridge = tree.Bridge

// Request describes one orchestrator rendering request.
type Request = orchestrator.Request

// NewEngine exposes the engine constructor from the root package.
func NewEngine(bridge tree.Bridge, registry *render.Registry, options ...render.Option) *render.Engine {
	return render.New(bridge, registry, options...)
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *render.Registry {
	return render.NewRegistry()
}

// NewOrchestrator exposes the pipeline constructor from the root
// package.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Generate runs the full pipeline for one request. It is the simplest
// entry point for callers that just want output bytes.
func Generate(ctx context.Context, req Request, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, req)
}

// RenderString renders an XML document against a YAML stylesheet,
// both given inline. Convenience wrapper for tests and small tools.
func RenderString(ctx context.Context, document, sheet string, options ...orchestrator.Option) (string, error) {
	req := Request{
		Source: strings.NewReader(document),
	}
	if sheet != "" {
		req.Stylesheet = strings.NewReader(sheet)
	}
	out, err := Generate(ctx, req, options...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
