package memdir

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// copyBufSize bounds the scratch buffer used by [Output.CopyFrom].
const copyBufSize = 16 * 1024

// Output is a sequential write handle over a [File].
//
// Writes start at position 0 and only the handle advances the position; no
// seek is exposed. Every byte written is fed into a CRC-32 (IEEE) checksum,
// so splitting a write into chunks never changes [Output.Checksum].
//
// Output is not safe for concurrent use.
type Output struct {
	name   string
	file   *File
	pos    int64
	crc    hash.Hash32
	closed bool
}

func newOutput(name string, file *File) *Output {
	return &Output{name: name, file: file, crc: crc32.NewIEEE()}
}

// Name returns the name the file was created under.
func (out *Output) Name() string {
	return out.name
}

// Pos returns the number of bytes written so far.
func (out *Output) Pos() int64 {
	return out.pos
}

// Checksum returns the CRC-32 of every byte written through this handle.
func (out *Output) Checksum() uint32 {
	return out.crc.Sum32()
}

// WriteByte writes one byte and advances the position.
func (out *Output) WriteByte(b byte) error {
	_, err := out.Write([]byte{b})

	return err
}

// Write implements [io.Writer].
func (out *Output) Write(p []byte) (int, error) {
	if out.closed {
		return 0, out.err("write", ErrClosed)
	}

	n, err := out.file.WriteAt(p, out.pos)
	if err != nil {
		return n, out.err("write", err)
	}

	_, _ = out.crc.Write(p[:n])
	out.pos += int64(n)

	return n, nil
}

// CopyFrom copies n bytes from in, starting at its current position, and
// advances both handles.
//
// It fails with [ErrOutOfRange] if in holds fewer than n bytes from its
// position; nothing is written in that case.
func (out *Output) CopyFrom(in *Input, n int64) error {
	if out.closed {
		return out.err("copy", ErrClosed)
	}

	if n < 0 {
		return out.err("copy", fmt.Errorf("length %d: %w", n, ErrInvalidInput))
	}

	if n > in.Len()-in.Pos() {
		return out.err("copy", fmt.Errorf("source %s has %d bytes past %d, need %d: %w",
			in.Name(), in.Len()-in.Pos(), in.Pos(), n, ErrOutOfRange))
	}

	buf := make([]byte, min(n, copyBufSize))

	for n > 0 {
		chunk := buf[:min(n, int64(len(buf)))]

		err := in.ReadBytes(chunk)
		if err != nil {
			return out.err("copy", err)
		}

		_, err = out.Write(chunk)
		if err != nil {
			return err
		}

		n -= int64(len(chunk))
	}

	return nil
}

// Close releases the handle. The written content stays in the file.
// Closing twice returns [ErrClosed].
func (out *Output) Close() error {
	if out.closed {
		return out.err("close", ErrClosed)
	}

	out.closed = true

	return nil
}

func (out *Output) err(op string, err error) error {
	var mErr *Error
	if errors.As(err, &mErr) {
		return err
	}

	return opErr(op, out.name, err)
}

var (
	_ io.WriteCloser = (*Output)(nil)
	_ io.ByteWriter  = (*Output)(nil)
)
