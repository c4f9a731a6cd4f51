package memdir

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// DefaultChunkSize is the growth increment of a [File] backing buffer.
const DefaultChunkSize = 1024

// File is a growable, randomly addressable byte container.
//
// A File keeps one shared cursor inside its backing buffer. Every transfer
// first makes sure the cursor sits at the requested position:
//   - if it already does, the transfer runs under the shared lock, so
//     readers at a stable position proceed in parallel;
//   - otherwise the exclusive lock is taken, the cursor moved, and the
//     transfer done under that lock.
//
// Writes and buffer growth always hold the exclusive lock, so a reader never
// observes a buffer being replaced.
//
// Length is the high-water mark of all bytes written and never exceeds the
// capacity of the backing buffer. Capacity only grows.
//
// File is safe for concurrent use. Most callers reach it through [Input] and
// [Output] handles obtained from a [Store].
type File struct {
	mu  sync.RWMutex
	buf []byte

	// cursor is written under mu (exclusive) and read lock-free for the
	// optimistic same-position check.
	cursor atomic.Int64
	length atomic.Int64

	chunk  int
	frozen bool
}

func newFile(chunk int) *File {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	return &File{
		buf:   make([]byte, chunk),
		chunk: chunk,
	}
}

// frozenFile wraps b (not copied) in an immutable File.
func frozenFile(b []byte, chunk int) *File {
	f := &File{buf: b, chunk: chunk, frozen: true}
	f.length.Store(int64(len(b)))

	return f
}

// Len returns the logical length.
func (f *File) Len() int64 {
	return f.length.Load()
}

// Cap returns the capacity of the backing buffer.
func (f *File) Cap() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return int64(len(f.buf))
}

// ReadAt reads len(p) bytes starting at off.
//
// It fails with [ErrOutOfRange] if off is negative or off+len(p) exceeds the
// logical length at the time of the call. Length only grows, so a range that
// passed the check stays readable.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	length := f.length.Load()
	if off < 0 || int64(len(p)) > length-off {
		return 0, fmt.Errorf("read %d bytes at %d of %d: %w", len(p), off, length, ErrOutOfRange)
	}

	end := off + int64(len(p))

	if f.cursor.Load() == off {
		f.mu.RLock()

		// Another goroutine may have moved the cursor between the check
		// and the lock; only then fall through to the exclusive path.
		if f.cursor.Load() == off {
			n := copy(p, f.buf[off:end])
			f.mu.RUnlock()

			return n, nil
		}

		f.mu.RUnlock()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.cursor.Store(off)

	return copy(p, f.buf[off:end]), nil
}

// ReadByteAt reads the single byte at off.
func (f *File) ReadByteAt(off int64) (byte, error) {
	var b [1]byte

	_, err := f.ReadAt(b[:], off)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// WriteAt writes p at off, growing the backing buffer when off+len(p)
// exceeds its capacity. The logical length becomes max(length, off+len(p)).
//
// It fails with [ErrOutOfRange] for a negative offset and with
// [ErrReadOnly] on a frozen File.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if f.frozen {
		return 0, ErrReadOnly
	}

	if off < 0 || off > math.MaxInt64-int64(len(p)) {
		return 0, fmt.Errorf("write %d bytes at %d: %w", len(p), off, ErrOutOfRange)
	}

	end := off + int64(len(p))

	f.mu.Lock()
	defer f.mu.Unlock()

	if end > int64(len(f.buf)) {
		f.growLocked(end)
	}

	f.cursor.Store(off)
	n := copy(f.buf[off:end], p)

	if end > f.length.Load() {
		f.length.Store(end)
	}

	return n, nil
}

// growLocked reallocates the buffer to the smallest multiple of the chunk
// size that holds need bytes. Caller holds mu exclusively.
func (f *File) growLocked(need int64) {
	chunk := int64(f.chunk)

	size := need
	if rem := need % chunk; rem != 0 && need <= math.MaxInt64-chunk {
		size += chunk - rem
	}

	next := make([]byte, size)
	copy(next, f.buf[:f.length.Load()])
	f.buf = next
}

// Slice returns a new frozen File holding a copy of n bytes starting at off,
// as they are at the time of the call.
//
// It fails with [ErrOutOfRange] if the range exceeds the logical length.
func (f *File) Slice(off, n int64) (*File, error) {
	length := f.Len()
	if n < 0 || off < 0 || n > length-off {
		return nil, fmt.Errorf("slice %d bytes at %d of %d: %w", n, off, length, ErrOutOfRange)
	}

	b := make([]byte, n)

	_, err := f.ReadAt(b, off)
	if err != nil {
		return nil, err
	}

	return frozenFile(b, f.chunk), nil
}

// Bytes returns a copy of the current content.
func (f *File) Bytes() []byte {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return bytes.Clone(f.buf[:f.length.Load()])
}

// Equal reports whether f and other have the same length and content.
func (f *File) Equal(other *File) bool {
	if f == other {
		return true
	}

	if other == nil {
		return false
	}

	return bytes.Equal(f.Bytes(), other.Bytes())
}

func (f *File) String() string {
	return fmt.Sprintf("File(length=%d)", f.Len())
}
