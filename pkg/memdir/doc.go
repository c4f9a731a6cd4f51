// Package memdir provides a volatile, in-memory namespace of byte files.
//
// A [Store] maps names to [File] values. Files are written through [Output]
// handles and read through [Input] handles; each handle owns its position, and
// any number of handles may share one file.
//
// # Basic Usage
//
//	store, err := memdir.New(memdir.Options{})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	out, err := store.Create("segment_1.dat")
//	out.Write(payload)
//	sum := out.Checksum()
//	out.Close()
//
//	in, err := store.Open("segment_1.dat")
//	buf := make([]byte, in.Len())
//	err = in.ReadBytes(buf)
//
// # Concurrency
//
// Store operations are safe for concurrent use and do not take a global lock.
// A File serializes transfers that have to move its internal cursor; reads at
// the position the cursor already holds run in parallel. Handles themselves
// are not safe for concurrent use: give each goroutine its own.
//
// # Error Handling
//
// Recoverable errors wrap one of [ErrNotFound], [ErrExists], [ErrOutOfRange],
// [ErrClosed], [ErrReadOnly] or [ErrInvalidInput]. Broken internal
// invariants are not returned; they panic with [*InvariantError].
//
// Nothing is persisted. Everything is gone after [Store.Close] or process exit.
package memdir
