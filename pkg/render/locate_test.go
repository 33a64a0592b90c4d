package render

import (
	"strings"
	"testing"

	bridgeetree "github.com/goliatone/go-pathscript/pkg/bridges/etree"
	"github.com/goliatone/go-pathscript/pkg/tree"
)

func TestLocateIDShortcut(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><a/><a/><a id="x"/></root>`)
	engine := New(bridge, NewRegistry())

	root := findElement(t, bridge, doc, "root")
	var third tree.Node
	for _, child := range bridge.Children(root) {
		third = child
	}

	got := engine.Locate(third)
	if want := `/root[1]/a[@id="x"]`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLocateOrdinalAmongSameNameSiblings(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><b/><b/></root>`)
	engine := New(bridge, NewRegistry())

	root := findElement(t, bridge, doc, "root")
	kids := bridge.Children(root)
	secondB := kids[len(kids)-1]

	if got, want := engine.Locate(secondB), engine.Locate(root)+"/b[2]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLocateSkipsDifferentlyNamedSiblings(t *testing.T) {
	bridge, doc := parseDoc(t, `<root><a/><b/><a/></root>`)
	engine := New(bridge, NewRegistry())

	root := findElement(t, bridge, doc, "root")
	kids := bridge.Children(root)
	lastA := kids[len(kids)-1]

	// The <b/> between them does not count toward the ordinal.
	if got, want := engine.Locate(lastA), "/root[1]/a[2]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLocateTextNodeStep(t *testing.T) {
	bridge, doc := parseDoc(t, `<root>first<x/>second</root>`)
	engine := New(bridge, NewRegistry())

	root := findElement(t, bridge, doc, "root")
	kids := bridge.Children(root)
	secondText := kids[len(kids)-1]
	if bridge.Kind(secondText) != tree.KindText {
		t.Fatalf("expected trailing text node, got %v", bridge.Kind(secondText))
	}

	if got, want := engine.Locate(secondText), "/root[1]/text()[2]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLocateRootIsEmpty(t *testing.T) {
	bridge, doc := parseDoc(t, `<root/>`)
	engine := New(bridge, NewRegistry())

	if got := engine.Locate(doc); got != "" {
		t.Fatalf("got %q for document node, want empty", got)
	}
}

func TestLocateWorksAcrossBackends(t *testing.T) {
	bridge := bridgeetree.New()
	doc, err := bridge.Parse(strings.NewReader(`<root><b/><b/></root>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	engine := New(bridge, NewRegistry())

	var root tree.Node
	for _, child := range bridge.Children(doc) {
		if bridge.Kind(child) == tree.KindElement {
			root = child
		}
	}
	kids := bridge.Children(root)
	secondB := kids[len(kids)-1]

	if got, want := engine.Locate(secondB), engine.Locate(root)+"/b[2]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
