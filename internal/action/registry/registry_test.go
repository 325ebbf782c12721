package registry

import (
	"context"
	"testing"
)

func TestStaticKnown(t *testing.T) {
	registry := NewStatic([]string{"billing", " shipping ", "", "   "})

	tests := []struct {
		name    string
		service string
		want    bool
	}{
		{name: "known", service: "billing", want: true},
		{name: "trimmed on construction", service: "shipping", want: true},
		{name: "trimmed on lookup", service: "  billing  ", want: true},
		{name: "unknown", service: "payments", want: false},
		{name: "blank", service: "", want: false},
		{name: "case sensitive", service: "Billing", want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			known, err := registry.Known(context.Background(), tc.service)
			if err != nil {
				t.Fatalf("Known(%q): %v", tc.service, err)
			}
			if known != tc.want {
				t.Fatalf("Known(%q) = %v, want %v", tc.service, known, tc.want)
			}
		})
	}
}

func TestStaticNil(t *testing.T) {
	var registry *Static
	known, err := registry.Known(context.Background(), "billing")
	if err != nil {
		t.Fatalf("Known: %v", err)
	}
	if known {
		t.Fatal("nil registry reported a known service")
	}
}
