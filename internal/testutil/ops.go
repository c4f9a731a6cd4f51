// Package testutil provides a model-vs-store behavior harness for memdir.
package testutil

import (
	"errors"
	"fmt"
	"io"

	"github.com/calvinalkan/memdir/pkg/memdir"
)

// Result is a generic operation result used by behavior tests.
//
// Kind is the error class (see errKind). Value is an optional canonical
// payload such as read bytes or a generated name.
type Result struct {
	Kind  string
	Value any
}

func resultOf(value any, err error) Result {
	if err != nil {
		return Result{Kind: errKind(err)}
	}

	return Result{Kind: "ok", Value: value}
}

// Op is a behavior test operation executed against model and real store.
type Op interface {
	ApplyModel(h *Harness) Result
	ApplyReal(h *Harness) Result
	String() string
}

// OpCreate creates name and writes Data in Chunks pieces.
type OpCreate struct {
	Name   string
	Data   []byte
	Chunks int
}

func (o *OpCreate) String() string {
	return fmt.Sprintf("create %s len=%d chunks=%d", o.Name, len(o.Data), o.Chunks)
}

func (o *OpCreate) ApplyModel(h *Harness) Result {
	return resultOf(nil, h.Model.create(o.Name, o.Data))
}

func (o *OpCreate) ApplyReal(h *Harness) Result {
	out, err := h.Store.Create(o.Name)
	if err != nil {
		return resultOf(nil, err)
	}

	return resultOf(nil, writeChunked(out, o.Data, o.Chunks))
}

// OpCreateTemp creates a temp file from Prefix and Suffix.
type OpCreateTemp struct {
	Prefix, Suffix string
	Data           []byte
}

func (o *OpCreateTemp) String() string {
	return fmt.Sprintf("create-temp %s %s len=%d", o.Prefix, o.Suffix, len(o.Data))
}

func (o *OpCreateTemp) ApplyModel(h *Harness) Result {
	return resultOf(h.Model.createTemp(o.Prefix, o.Suffix, o.Data), nil)
}

func (o *OpCreateTemp) ApplyReal(h *Harness) Result {
	name, out, err := h.Store.CreateTemp(o.Prefix, o.Suffix)
	if err != nil {
		return resultOf(nil, err)
	}

	return resultOf(name, writeChunked(out, o.Data, 1))
}

// OpRead opens Name and reads N bytes at Off through a slice view.
type OpRead struct {
	Name   string
	Off, N int64
}

func (o *OpRead) String() string { return fmt.Sprintf("read %s off=%d n=%d", o.Name, o.Off, o.N) }

func (o *OpRead) ApplyModel(h *Harness) Result {
	b, err := h.Model.read(o.Name, o.Off, o.N)

	return resultOf(string(b), err)
}

func (o *OpRead) ApplyReal(h *Harness) Result {
	in, err := h.Store.Open(o.Name)
	if err != nil {
		return resultOf(nil, err)
	}

	defer func() { _ = in.Close() }()

	view, err := in.Slice("view", o.Off, o.N)
	if err != nil {
		return resultOf(nil, err)
	}

	b, err := io.ReadAll(view)

	return resultOf(string(b), err)
}

// OpRemove removes Name.
type OpRemove struct{ Name string }

func (o *OpRemove) String() string { return "remove " + o.Name }

func (o *OpRemove) ApplyModel(h *Harness) Result {
	return resultOf(nil, h.Model.remove(o.Name))
}

func (o *OpRemove) ApplyReal(h *Harness) Result {
	return resultOf(nil, h.Store.Remove(o.Name))
}

// OpRename moves Src to Dst.
type OpRename struct{ Src, Dst string }

func (o *OpRename) String() string { return "rename " + o.Src + " " + o.Dst }

func (o *OpRename) ApplyModel(h *Harness) Result {
	return resultOf(nil, h.Model.rename(o.Src, o.Dst))
}

func (o *OpRename) ApplyReal(h *Harness) Result {
	return resultOf(nil, h.Store.Rename(o.Src, o.Dst))
}

// OpCopy copies Src into a new file Dst through [memdir.Output.CopyFrom].
type OpCopy struct{ Src, Dst string }

func (o *OpCopy) String() string { return "copy " + o.Src + " " + o.Dst }

func (o *OpCopy) ApplyModel(h *Harness) Result {
	return resultOf(nil, h.Model.copy(o.Src, o.Dst))
}

func (o *OpCopy) ApplyReal(h *Harness) Result {
	in, err := h.Store.Open(o.Src)
	if err != nil {
		return resultOf(nil, err)
	}

	defer func() { _ = in.Close() }()

	out, err := h.Store.Create(o.Dst)
	if err != nil {
		return resultOf(nil, err)
	}

	defer func() { _ = out.Close() }()

	return resultOf(nil, out.CopyFrom(in, in.Len()))
}

// OpList lists all names.
type OpList struct{}

func (*OpList) String() string { return "list" }

func (*OpList) ApplyModel(h *Harness) Result { return resultOf(h.Model.Names(), nil) }

func (*OpList) ApplyReal(h *Harness) Result {
	names, err := h.Store.List()

	return resultOf(names, err)
}

// OpFileLen reports the length of Name.
type OpFileLen struct{ Name string }

func (o *OpFileLen) String() string { return "len " + o.Name }

func (o *OpFileLen) ApplyModel(h *Harness) Result {
	b, ok := h.Model.Content(o.Name)
	if !ok {
		return resultOf(nil, memdir.ErrNotFound)
	}

	return resultOf(int64(len(b)), nil)
}

func (o *OpFileLen) ApplyReal(h *Harness) Result {
	n, err := h.Store.FileLen(o.Name)

	return resultOf(n, err)
}

func writeChunked(out *memdir.Output, data []byte, chunks int) error {
	defer func() { _ = out.Close() }()

	if chunks < 1 {
		chunks = 1
	}

	step := max(1, len(data)/chunks)

	for len(data) > 0 {
		n := min(step, len(data))

		if n == 1 {
			err := out.WriteByte(data[0])
			if err != nil {
				return err
			}
		} else {
			written, err := out.Write(data[:n])
			if err != nil {
				return err
			}

			if written != n {
				return errors.New("short write")
			}
		}

		data = data[n:]
	}

	return nil
}
