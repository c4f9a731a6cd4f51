package testutil

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/calvinalkan/memdir/pkg/memdir"
)

// RunConfig configures a behavior test run.
type RunConfig struct {
	// MaxOps is the maximum number of operations to execute.
	MaxOps int

	// CompareStateEveryN runs full state comparison every N operations.
	// Set to 0 to disable periodic checks (only check at end).
	CompareStateEveryN int

	// Store configures the store under test.
	Store memdir.Options

	// Gen configures the operation mix.
	Gen OpGenConfig
}

// DefaultRunConfig returns a balanced configuration for behavior tests.
// A small chunk size makes growth happen on most writes.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxOps:             200,
		CompareStateEveryN: 10,
		Store:              memdir.Options{ChunkSize: 16},
		Gen:                DefaultOpGenConfig(),
	}
}

// RunBehavior executes the operation stream derived from seed against the
// model and a real store and fails tb on the first divergence.
func RunBehavior(tb testing.TB, seed []byte, cfg RunConfig) {
	tb.Helper()

	if cfg.MaxOps <= 0 {
		tb.Fatalf("RunBehavior requires MaxOps > 0")
	}

	h := NewHarness(tb, cfg.Store)
	gen := NewOpGenerator(seed, h.Model, cfg.Gen)
	history := make([]string, 0, cfg.MaxOps)

	for opIndex := 1; opIndex <= cfg.MaxOps && gen.HasMore(); opIndex++ {
		op := gen.NextOp()
		history = append(history, op.String())

		realRes := op.ApplyReal(h)
		modelRes := op.ApplyModel(h)

		if !reflect.DeepEqual(modelRes, realRes) {
			tb.Fatalf("result mismatch: %s\nmodel: %+v\nreal:  %+v\n%s",
				op.String(), modelRes, realRes, FormatOps(history))
		}

		if cfg.CompareStateEveryN > 0 && opIndex%cfg.CompareStateEveryN == 0 {
			err := CompareState(h)
			if err != nil {
				tb.Fatalf("%v\n%s", err, FormatOps(history))
			}
		}
	}

	err := CompareState(h)
	if err != nil {
		tb.Fatalf("%v\n%s", err, FormatOps(history))
	}
}

// CompareState checks that the store binds exactly the model's names to
// the model's contents.
func CompareState(h *Harness) error {
	want := h.Model.Names()

	got, err := h.Store.List()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("names mismatch\nmodel: %v\nreal:  %v", want, got)
	}

	for _, name := range want {
		wantData, _ := h.Model.Content(name)

		in, err := h.Store.Open(name)
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}

		gotData, err := io.ReadAll(in)
		_ = in.Close()

		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		if !bytes.Equal(wantData, gotData) {
			return fmt.Errorf("content mismatch for %s: model len=%d real len=%d", name, len(wantData), len(gotData))
		}
	}

	return nil
}

// FormatOps renders an operation history for failure messages.
func FormatOps(history []string) string {
	var b strings.Builder

	b.WriteString("ops:\n")

	for i, op := range history {
		fmt.Fprintf(&b, "  %3d. %s\n", i+1, op)
	}

	return b.String()
}
