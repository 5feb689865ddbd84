package tokens

import (
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	t.Parallel()
	if got := Estimate(""); got != 0 {
		t.Errorf("Estimate(\"\") = %d, want 0", got)
	}
	text := strings.Repeat("package main\nfunc main() {}\n", 100)
	got := Estimate(text)
	if got <= 0 {
		t.Fatalf("Estimate = %d, want positive", got)
	}
	// Both the exact encoder and the heuristic land well under one token
	// per byte and above one per 10 bytes for source text.
	if got > len(text) || got < len(text)/10 {
		t.Errorf("Estimate = %d for %d bytes; implausible", got, len(text))
	}
}

func TestContextSize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		prompt, reserve, max, want int
	}{
		{100, 50, 1000, 150},
		{900, 200, 1000, 1000},
		{900, 200, 0, 1100}, // no cap
	}
	for _, tt := range tests {
		if got := ContextSize(tt.prompt, tt.reserve, tt.max); got != tt.want {
			t.Errorf("ContextSize(%d, %d, %d) = %d, want %d", tt.prompt, tt.reserve, tt.max, got, tt.want)
		}
	}
}

func TestWarnIfOver(t *testing.T) {
	t.Parallel()
	if warn := WarnIfOver(100, 100, 1000, 0.9); warn != "" {
		t.Errorf("unexpected warning: %q", warn)
	}
	if warn := WarnIfOver(850, 100, 1000, 0.9); warn == "" {
		t.Error("expected a warning at 95% of the limit")
	}
	if warn := WarnIfOver(10000, 2048, 0, 0.9); warn != "" {
		t.Errorf("contextLimit 0 must disable the check, got %q", warn)
	}
}
