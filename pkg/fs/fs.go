// Package fs is the host filesystem boundary of memdir tooling.
//
// The main types are:
//   - [FS]: the handful of host operations needed to move bytes in and out
//     of a memdir store
//   - [Real]: production implementation using [os] and atomic renames
//   - [Mem]: a host stand-in backed by a [memdir.Store], for tests
//
// Example usage:
//
//	host := fs.NewReal()
//	data, err := host.ReadFile("segment.bin")
//	if err != nil {
//	    return err
//	}
//
//	err = host.WriteFileAtomic("copy.bin", bytes.NewReader(data))
package fs

import (
	"io"
	"os"
)

// FS defines the host operations memdir tooling relies on.
//
// Paths use OS semantics (like the os package and path/filepath).
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces path with the content of r.
	//
	// Readers observe either the old content or the new content, never a
	// partially written file. On error the old content is left in place.
	WriteFileAtomic(path string, r io.Reader) error

	// Stat returns file info. See [os.Stat].
	// Returns an error matching [os.ErrNotExist] if the file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}
