// Package orchestrator coordinates the full pipeline from source
// document to rendered output: backend selection, document parsing,
// stylesheet loading, rendering, and the optional sanitize and layout
// stages. It applies sensible defaults (xmlquery backend, empty rule
// registry) while remaining open to dependency injection.
package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/microcosm-cc/bluemonday"

	bridgeetree "github.com/goliatone/go-pathscript/pkg/bridges/etree"
	bridgexmlquery "github.com/goliatone/go-pathscript/pkg/bridges/xmlquery"
	"github.com/goliatone/go-pathscript/pkg/layout"
	"github.com/goliatone/go-pathscript/pkg/render"
	"github.com/goliatone/go-pathscript/pkg/stylesheet"
	"github.com/goliatone/go-pathscript/pkg/tree"
)

const defaultBackendName = bridgexmlquery.BackendName

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithBackends injects a custom bridge registry. The built-in
// backends are not registered when this option is used.
func WithBackends(backends *tree.Registry) Option {
	return func(o *Orchestrator) {
		o.backends = backends
	}
}

// WithDefaultBackend overrides the backend used when a request omits
// an explicit Backend field.
func WithDefaultBackend(name string) Option {
	return func(o *Orchestrator) {
		o.defaultBackend = name
	}
}

// WithRegistry supplies a pre-built rule registry, bypassing the
// stylesheet loader for every request.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithCallbacks registers named Go callbacks stylesheets can
// reference.
func WithCallbacks(callbacks map[string]render.CallbackFunc) Option {
	return func(o *Orchestrator) {
		if o.callbacks == nil {
			o.callbacks = make(map[string]render.CallbackFunc, len(callbacks))
		}
		for name, fn := range callbacks {
			o.callbacks[name] = fn
		}
	}
}

// WithEngineOptions appends engine options applied after the ones the
// stylesheet requests, so callers win ties.
func WithEngineOptions(options ...render.Option) Option {
	return func(o *Orchestrator) {
		o.engineOptions = append(o.engineOptions, options...)
	}
}

// WithSanitizer overrides the bluemonday policy used when a request
// asks for sanitized output. Defaults to the UGC policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(o *Orchestrator) {
		if policy != nil {
			o.sanitizer = policy
		}
	}
}

// WithLayoutRenderer injects the template engine used for the layout
// stage. Requests naming a layout fail without one.
func WithLayoutRenderer(renderer layout.Renderer) Option {
	return func(o *Orchestrator) {
		o.layoutRenderer = renderer
	}
}

// WithLogger injects a structured logger shared with the stylesheet
// loader and the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator drives document-to-output generation.
type Orchestrator struct {
	backends       *tree.Registry
	defaultBackend string
	registry       *render.Registry
	callbacks      map[string]render.CallbackFunc
	engineOptions  []render.Option
	sanitizer      *bluemonday.Policy
	layoutRenderer layout.Renderer
	logger         *slog.Logger
}

// New constructs an Orchestrator applying any provided options.
// Missing dependencies are initialised with the built-in
// implementations so callers can start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultBackend: defaultBackendName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.backends == nil {
		o.backends = tree.NewRegistry()
		o.backends.MustRegister(bridgexmlquery.New())
		o.backends.MustRegister(bridgeetree.New())
	}
	if o.sanitizer == nil {
		o.sanitizer = bluemonday.UGCPolicy()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Request describes the inputs required to render one document.
type Request struct {
	// SourcePath locates the document on disk. Optional when Source
	// is supplied.
	SourcePath string

	// Source allows callers to stream the document directly.
	Source io.Reader

	// Backend names the tree provider. Falls back to the configured
	// default.
	Backend string

	// StylesheetPath locates the YAML rule file. Optional when
	// Stylesheet is supplied or the orchestrator carries a registry.
	StylesheetPath string

	// Stylesheet streams the rule file directly.
	Stylesheet io.Reader

	// Sanitize runs the rendered output through the bluemonday
	// policy.
	Sanitize bool

	// Layout names a template (or inline template content) the
	// rendered fragment is wrapped into.
	Layout string
}

// Generate runs the pipeline for one request.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	backendName := req.Backend
	if backendName == "" {
		backendName = o.defaultBackend
	}
	bridge, err := o.backends.Get(backendName)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	doc, err := o.parseDocument(bridge, req)
	if err != nil {
		return nil, err
	}

	registry, engineOptions, err := o.resolveRules(req)
	if err != nil {
		return nil, err
	}
	engineOptions = append(engineOptions, render.WithLogger(o.logger))
	engineOptions = append(engineOptions, o.engineOptions...)

	engine := render.New(bridge, registry, engineOptions...)
	out, err := engine.Render(doc)
	if err != nil {
		return nil, err
	}

	if req.Sanitize {
		out = o.sanitizer.Sanitize(out)
	}

	if req.Layout != "" {
		if o.layoutRenderer == nil {
			return nil, fmt.Errorf("orchestrator: request names layout %q but no layout renderer is configured", req.Layout)
		}
		out, err = o.layoutRenderer.Render(req.Layout, map[string]any{layout.ContentVar: out})
		if err != nil {
			return nil, fmt.Errorf("orchestrator: layout: %w", err)
		}
	}

	return []byte(out), nil
}

func (o *Orchestrator) parseDocument(bridge tree.Bridge, req Request) (tree.Node, error) {
	reader := req.Source
	if reader == nil {
		if req.SourcePath == "" {
			return nil, fmt.Errorf("orchestrator: request needs a source path or reader")
		}
		data, err := os.ReadFile(req.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: read source %s: %w", req.SourcePath, err)
		}
		reader = bytes.NewReader(data)
	}
	doc, err := bridge.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) resolveRules(req Request) (*render.Registry, []render.Option, error) {
	if o.registry != nil {
		return o.registry, nil, nil
	}

	loader := stylesheet.New(
		stylesheet.WithCallbacks(o.callbacks),
		stylesheet.WithLogger(o.logger),
	)
	switch {
	case req.Stylesheet != nil:
		return loader.Load(req.Stylesheet)
	case req.StylesheetPath != "":
		return loader.LoadFile(req.StylesheetPath)
	default:
		// No rules at all: every element takes the bare pass-through.
		return render.NewRegistry(), nil, nil
	}
}
