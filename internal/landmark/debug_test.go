package landmark

import (
	"bytes"
	"strings"
	"testing"

	"github.com/banshee-data/shapereg/internal/array"
	"github.com/banshee-data/shapereg/internal/testutil"
)

func TestLogStreams(t *testing.T) {
	defer SetLogWriters(LogWriters{})

	var ops, diag, trace bytes.Buffer
	SetLogWriters(LogWriters{Ops: &ops, Diag: &diag, Trace: &trace})

	Opsf("ops %d", 1)
	Diagf("diag %d", 2)
	Tracef("trace %d", 3)

	if !strings.Contains(ops.String(), "[landmark] ") || !strings.Contains(ops.String(), "ops 1") {
		t.Errorf("ops output = %q", ops.String())
	}
	if !strings.Contains(diag.String(), "diag 2") {
		t.Errorf("diag output = %q", diag.String())
	}
	if !strings.Contains(trace.String(), "trace 3") {
		t.Errorf("trace output = %q", trace.String())
	}
	if strings.Contains(ops.String(), "diag") {
		t.Errorf("streams leaked into each other: %q", ops.String())
	}
}

func TestLogStreamsDisabled(t *testing.T) {
	defer SetLogWriters(LogWriters{})

	var diag bytes.Buffer
	SetLogWriters(LogWriters{Diag: &diag})

	// Disabled streams must not panic.
	Opsf("dropped")
	Tracef("dropped")

	if diag.Len() != 0 {
		t.Errorf("diag output = %q, want empty", diag.String())
	}
}

func TestNewLogsConstruction(t *testing.T) {
	defer SetLogWriters(LogWriters{})

	var diag bytes.Buffer
	SetLogWriters(LogWriters{Diag: &diag})

	tgt, err := New(testutil.Points([]float64{0, 0}, []float64{1, 1}), array.Topology{}, array.Topology{}, DefaultConfig())
	testutil.AssertNoError(t, err)
	defer tgt.Close()

	out := diag.String()
	if !strings.Contains(out, "created target id="+tgt.ID().String()) {
		t.Errorf("diag output = %q, want construction line", out)
	}
	if !strings.Contains(out, "dim=2 points=2") {
		t.Errorf("diag output = %q, want shape", out)
	}
}
