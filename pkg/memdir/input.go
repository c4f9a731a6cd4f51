package memdir

import (
	"errors"
	"fmt"
	"io"
)

// Input is a read-only handle over a [File] with its own position.
//
// Handles are independent: seeking or reading through one never moves
// another. Input is not safe for concurrent use; use [Input.Clone] to give
// each goroutine its own handle on the same File.
type Input struct {
	name   string
	file   *File
	pos    int64
	closed bool
}

func newInput(name string, file *File) *Input {
	return &Input{name: name, file: file}
}

// Name returns the name the handle was opened with, or the description given
// to [Input.Slice].
func (in *Input) Name() string {
	return in.name
}

// Pos returns the current position.
func (in *Input) Pos() int64 {
	return in.pos
}

// Len returns the live length of the backing file. It may grow while writers
// are still active.
func (in *Input) Len() int64 {
	return in.file.Len()
}

// Seek sets the position for the next read. No I/O is performed, and seeking
// past the end is allowed; the following read fails instead.
//
// Seeking to a negative position fails with [ErrOutOfRange].
func (in *Input) Seek(offset int64, whence int) (int64, error) {
	if in.closed {
		return 0, in.err("seek", ErrClosed)
	}

	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = in.pos + offset
	case io.SeekEnd:
		abs = in.file.Len() + offset
	default:
		return 0, in.err("seek", fmt.Errorf("whence %d: %w", whence, ErrInvalidInput))
	}

	if abs < 0 {
		return 0, in.err("seek", fmt.Errorf("position %d: %w", abs, ErrOutOfRange))
	}

	in.pos = abs

	return abs, nil
}

// ReadByte reads the byte at the current position and advances by one.
func (in *Input) ReadByte() (byte, error) {
	if in.closed {
		return 0, in.err("read", ErrClosed)
	}

	b, err := in.file.ReadByteAt(in.pos)
	if err != nil {
		return 0, in.err("read", err)
	}

	in.pos++

	return b, nil
}

// ReadBytes fills p from the current position and advances by len(p).
//
// Unlike [Input.Read] it never returns a partial result: if fewer than
// len(p) bytes remain it fails with [ErrOutOfRange] and the position is
// unchanged.
func (in *Input) ReadBytes(p []byte) error {
	if in.closed {
		return in.err("read", ErrClosed)
	}

	_, err := in.file.ReadAt(p, in.pos)
	if err != nil {
		return in.err("read", err)
	}

	in.pos += int64(len(p))

	return nil
}

// Read implements [io.Reader]. It reads up to len(p) bytes and returns
// [io.EOF] once the position reaches the length.
func (in *Input) Read(p []byte) (int, error) {
	if in.closed {
		return 0, in.err("read", ErrClosed)
	}

	if len(p) == 0 {
		return 0, nil
	}

	remaining := in.file.Len() - in.pos
	if remaining <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := in.file.ReadAt(p, in.pos)
	if err != nil {
		return 0, in.err("read", err)
	}

	in.pos += int64(n)

	return n, nil
}

// ReadAt implements [io.ReaderAt]. It does not move the position.
//
// A read that extends past the end returns the available bytes and [io.EOF].
func (in *Input) ReadAt(p []byte, off int64) (int, error) {
	if in.closed {
		return 0, in.err("read", ErrClosed)
	}

	if off < 0 {
		return 0, in.err("read", fmt.Errorf("offset %d: %w", off, ErrOutOfRange))
	}

	avail := in.file.Len() - off
	if avail <= 0 {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.EOF
	}

	short := int64(len(p)) > avail
	if short {
		p = p[:avail]
	}

	n, err := in.file.ReadAt(p, off)
	if err != nil {
		return n, in.err("read", err)
	}

	if short {
		return n, io.EOF
	}

	return n, nil
}

// Slice returns a new handle over a copy of n bytes starting at off. The new
// handle starts at position 0 and reports length n; later writes to the
// original file are not visible through it.
func (in *Input) Slice(desc string, off, n int64) (*Input, error) {
	if in.closed {
		return nil, in.err("slice", ErrClosed)
	}

	f, err := in.file.Slice(off, n)
	if err != nil {
		return nil, in.err("slice", err)
	}

	return newInput(desc, f), nil
}

// Clone returns an independent handle on the same file at the same position.
func (in *Input) Clone() *Input {
	return &Input{name: in.name, file: in.file, pos: in.pos, closed: in.closed}
}

// Close releases the handle. The backing file is unaffected. Closing twice
// returns [ErrClosed].
func (in *Input) Close() error {
	if in.closed {
		return in.err("close", ErrClosed)
	}

	in.closed = true

	return nil
}

func (in *Input) err(op string, err error) error {
	var mErr *Error
	if errors.As(err, &mErr) {
		return err
	}

	return opErr(op, in.name, err)
}

var (
	_ io.ReadSeekCloser = (*Input)(nil)
	_ io.ReaderAt       = (*Input)(nil)
	_ io.ByteReader     = (*Input)(nil)
)
