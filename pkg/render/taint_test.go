package render

import (
	"strings"
	"testing"
)

func TestIsTainted(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", false},
		{"ascii", "plain ascii text <tag/>", false},
		{"ascii punctuation", "a&b\"c'd", false},
		{"latin accent", "café", true},
		{"cjk", "文書", true},
		{"emoji", "ok \U0001f600", true},
		{"mixed", "mostly ascii but é", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTainted(tc.in); got != tc.want {
				t.Fatalf("IsTainted(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTaintErrorMessage(t *testing.T) {
	err := &TaintError{Location: "/root[1]/a[1]", Text: "café"}
	if msg := err.Error(); !strings.Contains(msg, "/root[1]/a[1]") {
		t.Fatalf("error %q misses location", msg)
	}
}
