package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/calvinalkan/memdir/pkg/memdir"
)

// Mem implements [FS] on top of a [memdir.Store]. Paths are used verbatim
// as store names.
//
// Mem is meant for tests that need a host filesystem without touching disk.
type Mem struct {
	store *memdir.Store

	// replaceMu serializes the remove+rename step of WriteFileAtomic so two
	// writers to one path cannot interleave.
	replaceMu sync.Mutex
}

// NewMem returns a [Mem] backed by store. Panics if store is nil.
func NewMem(store *memdir.Store) *Mem {
	if store == nil {
		panic("store is nil")
	}

	return &Mem{store: store}
}

// Store returns the backing store.
func (m *Mem) Store() *memdir.Store {
	return m.store
}

func (m *Mem) ReadFile(path string) ([]byte, error) {
	in, err := m.store.Open(path)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	defer func() { _ = in.Close() }()

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, &os.PathError{Op: "read", Path: path, Err: err}
	}

	return data, nil
}

// WriteFileAtomic writes r into a temp file of the store and moves it to
// path once complete. The temp file is removed on failure.
//
// Unlike [Real], replacing an existing path is remove-then-rename, so a
// concurrent reader can briefly see path missing. It never sees partial
// content.
func (m *Mem) WriteFileAtomic(path string, r io.Reader) error {
	tmp, out, err := m.store.CreateTemp(filepath.Base(path), "atomic")
	if err != nil {
		return &os.PathError{Op: "create", Path: path, Err: err}
	}

	_, err = io.Copy(out, r)
	_ = out.Close()

	if err != nil {
		_ = m.store.Remove(tmp)

		return &os.PathError{Op: "write", Path: path, Err: err}
	}

	m.replaceMu.Lock()
	defer m.replaceMu.Unlock()

	err = m.store.Remove(path)
	if err != nil && !errors.Is(err, memdir.ErrNotFound) {
		_ = m.store.Remove(tmp)

		return &os.PathError{Op: "replace", Path: path, Err: err}
	}

	err = m.store.Rename(tmp, path)
	if err != nil {
		_ = m.store.Remove(tmp)

		return &os.PathError{Op: "rename", Path: path, Err: err}
	}

	return nil
}

func (m *Mem) Stat(path string) (os.FileInfo, error) {
	size, err := m.store.FileLen(path)
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: path, Err: err}
	}

	return memInfo{name: filepath.Base(path), size: size}, nil
}

func (m *Mem) Exists(path string) (bool, error) {
	_, err := m.store.FileLen(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, memdir.ErrNotFound) {
		return false, nil
	}

	return false, err
}

type memInfo struct {
	name string
	size int64
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() os.FileMode  { return 0o644 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }

// Compile-time interface check.
var _ FS = (*Mem)(nil)
