package memdir

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_NewFile_Starts_Empty_With_One_Chunk_Of_Capacity(t *testing.T) {
	t.Parallel()

	f := newFile(0)

	if f.Len() != 0 {
		t.Fatalf("len=%d, want 0", f.Len())
	}

	if f.Cap() != DefaultChunkSize {
		t.Fatalf("cap=%d, want %d", f.Cap(), DefaultChunkSize)
	}
}

func Test_WriteAt_Grows_To_Smallest_Chunk_Multiple_When_Capacity_Exceeded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		chunk   int
		off     int64
		size    int
		wantCap int64
	}{
		{name: "fits in first chunk", chunk: 16, off: 0, size: 16, wantCap: 16},
		{name: "one byte over", chunk: 16, off: 0, size: 17, wantCap: 32},
		{name: "far past end", chunk: 16, off: 100, size: 1, wantCap: 112},
		{name: "default chunk", chunk: 0, off: 0, size: 2049, wantCap: 3072},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFile(tt.chunk)

			_, err := f.WriteAt(make([]byte, tt.size), tt.off)
			if err != nil {
				t.Fatalf("WriteAt: %v", err)
			}

			if got := f.Cap(); got != tt.wantCap {
				t.Fatalf("cap=%d, want %d", got, tt.wantCap)
			}

			if got, want := f.Len(), tt.off+int64(tt.size); got != want {
				t.Fatalf("len=%d, want %d", got, want)
			}
		})
	}
}

func Test_WriteAt_Preserves_Existing_Bytes_When_Buffer_Grows(t *testing.T) {
	t.Parallel()

	f := newFile(8)

	var want []byte

	for i := range 50 {
		chunk := []byte{byte(i), byte(i + 1), byte(i + 2)}

		_, err := f.WriteAt(chunk, int64(len(want)))
		if err != nil {
			t.Fatalf("WriteAt #%d: %v", i, err)
		}

		want = append(want, chunk...)

		if diff := cmp.Diff(want, f.Bytes()); diff != "" {
			t.Fatalf("content after write #%d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func Test_WriteAt_Keeps_Length_As_High_Water_Mark_When_Overwriting(t *testing.T) {
	t.Parallel()

	f := newFile(0)

	_, _ = f.WriteAt([]byte{1, 2, 3, 4, 5}, 0)
	_, _ = f.WriteAt([]byte{9}, 1)

	if f.Len() != 5 {
		t.Fatalf("len=%d, want 5", f.Len())
	}

	if diff := cmp.Diff([]byte{1, 9, 3, 4, 5}, f.Bytes()); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
}

func Test_ReadAt_Returns_ErrOutOfRange_When_Range_Exceeds_Length(t *testing.T) {
	t.Parallel()

	f := newFile(0)
	_, _ = f.WriteAt([]byte{1, 2, 3, 4}, 0)

	tests := []struct {
		name string
		off  int64
		size int
	}{
		{name: "past end", off: 3, size: 2},
		{name: "start past end", off: 5, size: 1},
		{name: "negative offset", off: -1, size: 1},
	}

	for _, tt := range tests {
		_, err := f.ReadAt(make([]byte, tt.size), tt.off)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("%s: err=%v, want ErrOutOfRange", tt.name, err)
		}
	}

	// Reading up to the exact end is fine, even when capacity is larger.
	got := make([]byte, 2)

	_, err := f.ReadAt(got, 2)
	if err != nil {
		t.Fatalf("ReadAt at end: %v", err)
	}

	if !bytes.Equal(got, []byte{3, 4}) {
		t.Fatalf("got %v, want [3 4]", got)
	}
}

func Test_ReadAt_Moves_Cursor_Only_When_Position_Differs(t *testing.T) {
	t.Parallel()

	f := newFile(0)
	_, _ = f.WriteAt([]byte{1, 2, 3, 4}, 2)

	if got := f.cursor.Load(); got != 2 {
		t.Fatalf("cursor after write=%d, want 2", got)
	}

	_, _ = f.ReadAt(make([]byte, 1), 2)

	if got := f.cursor.Load(); got != 2 {
		t.Fatalf("cursor after same-position read=%d, want 2", got)
	}

	_, _ = f.ReadAt(make([]byte, 1), 4)

	if got := f.cursor.Load(); got != 4 {
		t.Fatalf("cursor after seeking read=%d, want 4", got)
	}
}

func Test_ReadAt_Proceeds_In_Parallel_When_Cursor_Already_At_Position(t *testing.T) {
	t.Parallel()

	f := newFile(0)
	_, _ = f.WriteAt([]byte{7, 8}, 0)

	// Hold the shared lock: a same-position read must still complete,
	// which it only can on the optimistic shared path.
	f.mu.RLock()

	done := make(chan byte)

	go func() {
		b, _ := f.ReadByteAt(0)
		done <- b
	}()

	got := <-done

	f.mu.RUnlock()

	if got != 7 {
		t.Fatalf("byte=%d, want 7", got)
	}
}

func Test_ReadAt_Falls_Back_To_Exclusive_Path_When_Cursor_Moves(t *testing.T) {
	t.Parallel()

	f := newFile(0)
	_, _ = f.WriteAt([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 0)

	var wg sync.WaitGroup

	for g := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 200 {
				off := int64((g + i) % 8)

				b, err := f.ReadByteAt(off)
				if err != nil {
					t.Errorf("ReadByteAt(%d): %v", off, err)

					return
				}

				if b != byte(off+1) {
					t.Errorf("ReadByteAt(%d)=%d, want %d", off, b, off+1)

					return
				}
			}
		}()
	}

	wg.Wait()
}

func Test_Slice_Returns_Frozen_Copy_When_Range_Valid(t *testing.T) {
	t.Parallel()

	f := newFile(0)
	_, _ = f.WriteAt([]byte{1, 2, 3, 4}, 0)

	s, err := f.Slice(1, 2)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}

	if diff := cmp.Diff([]byte{2, 3}, s.Bytes()); diff != "" {
		t.Fatalf("slice mismatch (-want +got):\n%s", diff)
	}

	// Later writes to the source are not visible in the slice.
	_, _ = f.WriteAt([]byte{9, 9}, 1)

	if diff := cmp.Diff([]byte{2, 3}, s.Bytes()); diff != "" {
		t.Fatalf("slice changed after source write (-want +got):\n%s", diff)
	}

	_, err = s.WriteAt([]byte{0}, 0)
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("write to slice err=%v, want ErrReadOnly", err)
	}
}

func Test_Slice_Returns_ErrOutOfRange_When_Range_Exceeds_Length(t *testing.T) {
	t.Parallel()

	f := newFile(0)
	_, _ = f.WriteAt([]byte{1, 2, 3, 4}, 0)

	for _, r := range [][2]int64{{3, 2}, {0, 5}, {-1, 1}, {0, -1}} {
		_, err := f.Slice(r[0], r[1])
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Slice(%d,%d) err=%v, want ErrOutOfRange", r[0], r[1], err)
		}
	}
}

func Test_Range_Checks_Return_ErrOutOfRange_When_Offset_Plus_Length_Overflows(t *testing.T) {
	t.Parallel()

	f := newFile(0)
	_, _ = f.WriteAt([]byte{1, 2, 3, 4}, 0)

	for _, off := range []int64{math.MaxInt64, math.MaxInt64 - 1, math.MaxInt64 - 3} {
		_, err := f.ReadAt(make([]byte, 4), off)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("ReadAt(4, %d) err=%v, want ErrOutOfRange", off, err)
		}

		_, err = f.ReadByteAt(off)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("ReadByteAt(%d) err=%v, want ErrOutOfRange", off, err)
		}

		_, err = f.WriteAt([]byte{9, 9, 9, 9, 9}, off)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("WriteAt(5, %d) err=%v, want ErrOutOfRange", off, err)
		}
	}

	for _, r := range [][2]int64{{1, math.MaxInt64}, {math.MaxInt64, 1}, {math.MaxInt64, math.MaxInt64}} {
		_, err := f.Slice(r[0], r[1])
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Slice(%d,%d) err=%v, want ErrOutOfRange", r[0], r[1], err)
		}
	}

	if f.Len() != 4 || f.Cap() != DefaultChunkSize {
		t.Fatalf("len=%d cap=%d, want 4 and %d", f.Len(), f.Cap(), DefaultChunkSize)
	}
}

func Test_ReadAt_Error_Reports_Checked_Length(t *testing.T) {
	t.Parallel()

	f := newFile(0)
	_, _ = f.WriteAt([]byte("abc"), 0)

	_, err := f.ReadAt(make([]byte, 2), 2)
	if err == nil || err.Error() != "read 2 bytes at 2 of 3: memdir: out of range" {
		t.Fatalf("err=%v, want %q", err, "read 2 bytes at 2 of 3: memdir: out of range")
	}
}

func Test_Equal_Compares_Length_And_Content(t *testing.T) {
	t.Parallel()

	a := newFile(4)
	b := newFile(64)

	_, _ = a.WriteAt([]byte("abcdef"), 0)
	_, _ = b.WriteAt([]byte("abcdef"), 0)

	if !a.Equal(b) {
		t.Fatalf("%v and %v should be equal", a, b)
	}

	_, _ = b.WriteAt([]byte("g"), 6)

	if a.Equal(b) {
		t.Fatalf("%v and %v should differ", a, b)
	}

	if got := a.String(); got != "File(length=6)" {
		t.Fatalf("String()=%q, want %q", got, "File(length=6)")
	}
}
