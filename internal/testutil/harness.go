package testutil

import (
	"testing"

	"github.com/calvinalkan/memdir/pkg/memdir"
)

// Harness wires together a real store and the reference model.
type Harness struct {
	TB    testing.TB
	Store *memdir.Store
	Model *Model
}

// NewHarness creates a harness over a fresh store built from opts.
func NewHarness(tb testing.TB, opts memdir.Options) *Harness {
	tb.Helper()

	store, err := memdir.New(opts)
	if err != nil {
		tb.Fatalf("memdir.New: %v", err)
	}

	tb.Cleanup(func() { _ = store.Close() })

	ext := opts.TempExt
	if ext == "" {
		ext = memdir.DefaultTempExt
	}

	return &Harness{TB: tb, Store: store, Model: NewModel(ext)}
}
