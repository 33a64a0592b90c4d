package tree

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// stubBridge provides just enough of the Bridge surface for registry
// tests.
type stubBridge struct {
	name string
}

func (s *stubBridge) Name() string                          { return s.name }
func (s *stubBridge) Parse(io.Reader) (Node, error)         { return nil, nil }
func (s *stubBridge) Kind(Node) Kind                        { return KindOther }
func (s *stubBridge) TagName(Node) string                   { return "" }
func (s *stubBridge) Content(Node) string                   { return "" }
func (s *stubBridge) Children(Node) []Node                  { return nil }
func (s *stubBridge) Parent(Node) Node                      { return nil }
func (s *stubBridge) Root(Node) Node                        { return nil }
func (s *stubBridge) AttrValue(Node, string) (string, bool) { return "", false }
func (s *stubBridge) SerializeAttrs(Node) string            { return "" }
func (s *stubBridge) SerializeNamespaces(Node) string       { return "" }
func (s *stubBridge) Serialize(Node) string                 { return "" }
func (s *stubBridge) Evaluate(Node, string) (Result, error) { return nil, nil }
func (s *stubBridge) Same(a, b Node) bool                   { return a == b }

func TestRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	bridge := &stubBridge{name: "stub"}

	if err := registry.Register(bridge); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := registry.Get("stub")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != Bridge(bridge) {
		t.Fatalf("got a different bridge back")
	}
	if !registry.Has("stub") {
		t.Fatalf("Has(stub) = false")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&stubBridge{name: "stub"})

	err := registry.Register(&stubBridge{name: "stub"})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("got %v, want duplicate error", err)
	}
}

func TestRegisterRejectsNilAndUnnamed(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected error for nil bridge")
	}
	if err := registry.Register(&stubBridge{}); err == nil {
		t.Fatalf("expected error for unnamed bridge")
	}
}

func TestGetMissing(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Get("nope"); err == nil {
		t.Fatalf("expected error for missing bridge")
	}
}

func TestListIsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&stubBridge{name: "zeta"})
	registry.MustRegister(&stubBridge{name: "alpha"})
	registry.MustRegister(&stubBridge{name: "mid"})

	want := []string{"alpha", "mid", "zeta"}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestMustGetPanicsOnMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewRegistry().MustGet("nope")
}
