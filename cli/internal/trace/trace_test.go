package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestTracer_writes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	tr := New(&buf)
	if !tr.Enabled() {
		t.Fatal("Enabled = false with a writer")
	}
	tr.Section("diff")
	tr.Printf("parsed %d hunks\n", 4)
	out := buf.String()
	if !strings.Contains(out, "[smartsquash:trace] === diff ===") {
		t.Errorf("missing section header: %q", out)
	}
	if !strings.Contains(out, "parsed 4 hunks") {
		t.Errorf("missing printf output: %q", out)
	}
}

func TestTracer_nilWriterNoops(t *testing.T) {
	t.Parallel()
	tr := New(nil)
	if tr.Enabled() {
		t.Fatal("Enabled = true with nil writer")
	}
	tr.Section("x")
	tr.Printf("y")

	var nilTracer *Tracer
	if nilTracer.Enabled() {
		t.Error("nil tracer must report disabled")
	}
	nilTracer.Section("x")
	nilTracer.Printf("y")
}
