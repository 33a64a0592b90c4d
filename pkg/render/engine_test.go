package render

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	bridgeetree "github.com/goliatone/go-pathscript/pkg/bridges/etree"
	"github.com/goliatone/go-pathscript/pkg/tree"
)

func TestRenderPassThroughRoundTrip(t *testing.T) {
	src := `<root a="1"><kid>text</kid><kid>more</kid></root>`
	bridge, doc := parseDoc(t, src)

	engine := New(bridge, NewRegistry())
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != src {
		t.Fatalf("pass-through mismatch:\n got %q\nwant %q", out, src)
	}
}

func TestSkipYieldsEmptyDespiteFragments(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><kid>text</kid></root>`)

	registry := NewRegistry()
	registry.Set("kid", &Rule{
		Pre:  "<would-be>",
		Post: "</would-be>",
		Callback: func(tree.Node, Overrides) (Control, error) {
			return Skip(), nil
		},
	})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<root></root>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSelfOnlyExcludesChildren(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><kid>inner</kid></root>`)

	registry := NewRegistry()
	registry.Set("root", &Rule{
		Pre:          "[",
		Post:         "]",
		PreChildren:  "(",
		PostChildren: ")",
		Callback: func(tree.Node, Overrides) (Control, error) {
			return SelfOnly(), nil
		},
	})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "inner") {
		t.Fatalf("self-only output contains child content: %q", out)
	}
	if want := "[()]"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestScopedOverrideVisibleInSubtreeOnly(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><a><a/></a><a/></root>`)

	registry := NewRegistry()
	registry.Set("a", &Rule{
		Pre: "X",
		Callback: func(node tree.Node, ov Overrides) (Control, error) {
			if len(bridge.Children(node)) > 0 {
				ov[OverridePre] = "Y"
			}
			return Descend(), nil
		},
	})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// Outer <a> takes its own override, the nested <a> inherits it,
	// and the following sibling sees the original rule again.
	if want := `<root>YYX</root>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestWildcardFallbackAndExactPriority(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><a/><b/></root>`)

	registry := NewRegistry()
	registry.Set("a", &Rule{Pre: "exact:"})
	registry.Set("*", &Rule{Pre: "any:", ShowTag: true})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `any:<root>exact:any:<b></b></root>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestTextAsChildFramesContent(t *testing.T) {
	bridge, doc := parseDoc(t, `<x>bar</x>`)

	registry := NewRegistry()
	registry.Set("#text", &Rule{
		Pre:  "<t>",
		Post: "</t>",
		Callback: func(tree.Node, Overrides) (Control, error) {
			return AsChild(), nil
		},
	})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<x><t>bar</t></x>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestTextRuleReplacesWithoutCallback(t *testing.T) {
	bridge, doc := parseDoc(t, `<x>bar</x>`)

	registry := NewRegistry()
	registry.Set("#text", &Rule{Pre: "<text/>"})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<x><text/></x>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestTextOverridesPersistAcrossNodes(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><a>one</a><a>two</a></root>`)

	first := true
	registry := NewRegistry()
	registry.Set("#text", &Rule{
		Callback: func(node tree.Node, ov Overrides) (Control, error) {
			if first {
				first = false
				ov[OverridePre] = "~"
			}
			return AsChild(), nil
		},
	})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// The first text node's override lands on the live rule and stays
	// for the second one.
	if want := `<root><a>~one</a><a>~two</a></root>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestCommentRuleMiddleDefaultsToContent(t *testing.T) {
	bridge, doc := parseDoc(t, `<x><!--note--></x>`)

	registry := NewRegistry()
	registry.Set("#comment", &Rule{Pre: "[", Post: "]"})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<x>[note]</x>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestCommentSelfOnlyDropsContent(t *testing.T) {
	bridge, doc := parseDoc(t, `<x><!--note--></x>`)

	registry := NewRegistry()
	registry.Set("#comment", &Rule{
		Pre:  "[",
		Post: "]",
		Callback: func(tree.Node, Overrides) (Control, error) {
			return SelfOnly(), nil
		},
	})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<x>[]</x>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSelectChildrenRendersMatchedSetOnly(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><keep>a</keep><drop>b</drop><keep>c</keep></root>`)

	registry := NewRegistry()
	registry.Set("root", &Rule{
		Pre:       "(",
		Post:      ")",
		PreChild:  "[",
		PostChild: "]",
		Callback: func(tree.Node, Overrides) (Control, error) {
			return Select("keep"), nil
		},
	})

	engine := New(bridge, registry)
	out, err := engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `([<keep>a</keep>][<keep>c</keep>])`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestCallbackErrorPropagatesUnchanged(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><kid/></root>`)

	sentinel := errors.New("callback exploded")
	registry := NewRegistry()
	registry.Set("kid", &Rule{
		Callback: func(tree.Node, Overrides) (Control, error) {
			return Control{}, sentinel
		},
	})

	engine := New(bridge, registry)
	if _, err := engine.Render(doc); !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want sentinel error", err)
	}
}

func TestScopedOverrideRestoredAfterCallbackError(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><a><b/></a></root>`)

	sentinel := errors.New("inner failure")
	registry := NewRegistry()
	original := &Rule{Pre: "X"}
	registry.Set("a", original)
	registry.Set("b", &Rule{
		Callback: func(tree.Node, Overrides) (Control, error) {
			return Control{}, sentinel
		},
	})
	original.Callback = func(node tree.Node, ov Overrides) (Control, error) {
		ov[OverridePre] = "Y"
		return Descend(), nil
	}

	engine := New(bridge, registry)
	if _, err := engine.Render(doc); !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want sentinel error", err)
	}
	restored, ok := registry.Lookup("a")
	if !ok || restored != original {
		t.Fatalf("rule %q not restored after error propagation", "a")
	}
}

func TestStrictTaintFailsOnMultibyteOutput(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><kid>héllo</kid></root>`)

	engine := New(bridge, NewRegistry(), WithStrictTaint(true))
	_, err := engine.Render(doc)

	var taintErr *TaintError
	if !errors.As(err, &taintErr) {
		t.Fatalf("got %v, want *TaintError", err)
	}
	if taintErr.Location == "" {
		t.Fatalf("taint error carries no location")
	}
	if !strings.Contains(taintErr.Text, "héllo") {
		t.Fatalf("taint error text %q misses offending fragment", taintErr.Text)
	}
}

func TestStrictTaintPassesOnSingleByteOutput(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><kid>hello</kid></root>`)

	engine := New(bridge, NewRegistry(), WithStrictTaint(true))
	if _, err := engine.Render(doc); err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestProcInstSuppressedUnderDocumentRoot(t *testing.T) {
	bridge := bridgeetree.New()
	doc, err := bridge.Parse(strings.NewReader(`<?keep me?><root><?inner one?></root>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var docPI tree.Node
	for _, child := range bridge.Children(doc) {
		if bridge.Kind(child) == tree.KindProcInst {
			docPI = child
		}
	}
	if docPI == nil {
		t.Fatalf("no document-level processing instruction found")
	}

	engine := New(bridge, NewRegistry())
	out, err := engine.Render(docPI)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("document-level instruction rendered %q, want empty", out)
	}

	out, err = engine.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<?inner one?>") {
		t.Fatalf("nested instruction missing from %q", out)
	}
	if strings.Contains(out, "keep me") {
		t.Fatalf("document-level instruction leaked into %q", out)
	}
}

func TestInvokeDegradesChildWrappersWithWarning(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><kid>text</kid></root>`)

	registry := NewRegistry()
	registry.Set("boxed", &Rule{
		Pre:      "(",
		Post:     ")",
		PreChild: "[",
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	engine := New(bridge, registry, WithLogger(logger))

	root := findElement(t, bridge, doc, "root")
	out, err := engine.Invoke(root, "boxed")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if want := `(<kid>text</kid>)`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
	if !strings.Contains(buf.String(), "child wrappers") {
		t.Fatalf("expected degradation warning, log was %q", buf.String())
	}
}

func TestInvokeUnknownSelectorFails(t *testing.T) {
	bridge, doc := parseDoc(t, `<root/>`)

	engine := New(bridge, NewRegistry())
	root := findElement(t, bridge, doc, "root")
	if _, err := engine.Invoke(root, "missing"); err == nil {
		t.Fatalf("expected error for unknown selector")
	}
}

func TestRenderConcatenatesInputSequence(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><a>1</a><b>2</b></root>`)

	a := findElement(t, bridge, doc, "a")
	b := findElement(t, bridge, doc, "b")

	engine := New(bridge, NewRegistry())
	out, err := engine.Render(a, b)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<a>1</a><b>2</b>`; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}
