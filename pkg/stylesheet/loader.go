// Package stylesheet loads declarative YAML rule files into a render
// registry. A stylesheet names selectors and their fragments, picks a
// canned control action or a registered callback per rule, and can set
// the engine's interpolation and strict-mode configuration.
package stylesheet

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pathscript/pkg/render"
	"github.com/goliatone/go-pathscript/pkg/tree"
)

// File is the top-level YAML document shape.
type File struct {
	Interpolation *Interpolation      `yaml:"interpolation"`
	Strict        bool                `yaml:"strict"`
	Rules         map[string]RuleSpec `yaml:"rules"`
}

// Interpolation configures fragment interpolation for the engine.
type Interpolation struct {
	Enabled *bool  `yaml:"enabled"`
	Pattern string `yaml:"pattern"`
}

// RuleSpec is one selector's declarative rule.
type RuleSpec struct {
	Pre          string `yaml:"pre"`
	Post         string `yaml:"post"`
	Intro        string `yaml:"intro"`
	Extro        string `yaml:"extro"`
	PreChild     string `yaml:"prechild"`
	PostChild    string `yaml:"postchild"`
	PreChildren  string `yaml:"prechildren"`
	PostChildren string `yaml:"postchildren"`
	ShowTag      bool   `yaml:"showTag"`

	// Action picks a canned control decision: descend, selfOnly,
	// skip, textAsChild, or selectChildren (which requires Select).
	Action string `yaml:"action"`
	Select string `yaml:"select"`

	// Callback names a Go callback registered with WithCallbacks.
	// Mutually exclusive with Action.
	Callback string `yaml:"callback"`
}

// Option customises the loader.
type Option func(*Loader)

// WithCallbacks registers named Go callbacks that stylesheets can
// reference through the callback field.
func WithCallbacks(callbacks map[string]render.CallbackFunc) Option {
	return func(l *Loader) {
		for name, fn := range callbacks {
			l.callbacks[name] = fn
		}
	}
}

// WithLogger injects a structured logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader turns stylesheet documents into registries plus engine
// options.
type Loader struct {
	callbacks map[string]render.CallbackFunc
	logger    *slog.Logger
}

// New constructs a Loader applying any provided options.
func New(options ...Option) *Loader {
	l := &Loader{
		callbacks: make(map[string]render.CallbackFunc),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// LoadFile reads a stylesheet from disk.
func (l *Loader) LoadFile(path string) (*render.Registry, []render.Option, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stylesheet: open %s: %w", path, err)
	}
	defer f.Close()
	return l.Load(f)
}

// Load decodes a stylesheet and returns the populated registry along
// with the engine options the stylesheet requested.
func (l *Loader) Load(r io.Reader) (*render.Registry, []render.Option, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("stylesheet: decode: %w", err)
	}

	registry := render.NewRegistry()
	for selector, spec := range file.Rules {
		rule, err := l.compileRule(selector, spec)
		if err != nil {
			return nil, nil, err
		}
		registry.Set(selector, rule)
	}

	options, err := engineOptions(file)
	if err != nil {
		return nil, nil, err
	}

	l.logger.Debug("stylesheet loaded",
		"rules", len(file.Rules),
		"strict", file.Strict)
	return registry, options, nil
}

func (l *Loader) compileRule(selector string, spec RuleSpec) (*render.Rule, error) {
	rule := &render.Rule{
		Pre:          spec.Pre,
		Post:         spec.Post,
		Intro:        spec.Intro,
		Extro:        spec.Extro,
		PreChild:     spec.PreChild,
		PostChild:    spec.PostChild,
		PreChildren:  spec.PreChildren,
		PostChildren: spec.PostChildren,
		ShowTag:      spec.ShowTag,
	}

	if spec.Callback != "" && spec.Action != "" {
		return nil, fmt.Errorf("stylesheet: rule %q sets both action and callback", selector)
	}

	if spec.Callback != "" {
		fn, ok := l.callbacks[spec.Callback]
		if !ok {
			return nil, fmt.Errorf("stylesheet: rule %q references unknown callback %q", selector, spec.Callback)
		}
		rule.Callback = fn
		return rule, nil
	}

	ctl, err := controlForAction(selector, spec)
	if err != nil {
		return nil, err
	}
	if ctl != nil {
		decision := *ctl
		rule.Callback = func(tree.Node, render.Overrides) (render.Control, error) {
			return decision, nil
		}
	}
	return rule, nil
}

func controlForAction(selector string, spec RuleSpec) (*render.Control, error) {
	switch spec.Action {
	case "":
		if spec.Select != "" {
			return nil, fmt.Errorf("stylesheet: rule %q sets select without action selectChildren", selector)
		}
		return nil, nil
	case "descend", "selfAndKids":
		ctl := render.Descend()
		return &ctl, nil
	case "selfOnly":
		ctl := render.SelfOnly()
		return &ctl, nil
	case "skip":
		ctl := render.Skip()
		return &ctl, nil
	case "textAsChild":
		ctl := render.AsChild()
		return &ctl, nil
	case "selectChildren":
		if spec.Select == "" {
			return nil, fmt.Errorf("stylesheet: rule %q needs a select expression", selector)
		}
		ctl := render.Select(spec.Select)
		return &ctl, nil
	default:
		return nil, fmt.Errorf("stylesheet: rule %q has unknown action %q", selector, spec.Action)
	}
}

func engineOptions(file File) ([]render.Option, error) {
	var options []render.Option
	if file.Strict {
		options = append(options, render.WithStrictTaint(true))
	}
	if file.Interpolation != nil {
		if file.Interpolation.Enabled != nil {
			options = append(options, render.WithInterpolation(*file.Interpolation.Enabled))
		}
		if file.Interpolation.Pattern != "" {
			pattern, err := regexp.Compile(file.Interpolation.Pattern)
			if err != nil {
				return nil, fmt.Errorf("stylesheet: interpolation pattern: %w", err)
			}
			if pattern.NumSubexp() < 1 {
				return nil, fmt.Errorf("stylesheet: interpolation pattern %q needs a capture group", file.Interpolation.Pattern)
			}
			options = append(options, render.WithDelimiterPattern(pattern))
		}
	}
	return options, nil
}
