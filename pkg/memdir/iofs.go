package memdir

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"time"
)

// FS returns a read-only [fs.FS] view of the store.
//
// The view is a single flat directory ".". Names that are not valid io/fs
// paths, or that contain a slash, are not listed and cannot be opened through
// it. Opened files are live [Input] handles and also implement [io.Seeker]
// and [io.ReaderAt].
func (s *Store) FS() fs.FS {
	return storeFS{s: s}
}

type storeFS struct {
	s *Store
}

func (v storeFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if name == "." {
		entries, err := v.entries()
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}

		return &rootDir{entries: entries}, nil
	}

	if strings.Contains(name, "/") {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	in, err := v.s.Open(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	return &viewFile{Input: in}, nil
}

func (v storeFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		if !fs.ValidPath(name) {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
		}

		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}

	entries, err := v.entries()
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}

	return entries, nil
}

func (v storeFS) Stat(name string) (fs.FileInfo, error) {
	if name == "." {
		return dirInfo{}, nil
	}

	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}

	if strings.Contains(name, "/") {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}

	size, err := v.s.FileLen(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}

	return fileInfo{name: name, size: size}, nil
}

// entries snapshots the listable names with their current sizes. Names
// removed between listing and sizing are skipped.
func (v storeFS) entries() ([]fs.DirEntry, error) {
	names, err := v.s.List()
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, len(names))

	for _, name := range names {
		if !fs.ValidPath(name) || name == "." || strings.Contains(name, "/") {
			continue
		}

		size, err := v.s.FileLen(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		entries = append(entries, fs.FileInfoToDirEntry(fileInfo{name: name, size: size}))
	}

	return entries, nil
}

type viewFile struct {
	*Input
}

func (f *viewFile) Stat() (fs.FileInfo, error) {
	return fileInfo{name: f.Name(), size: f.Len()}, nil
}

type rootDir struct {
	entries []fs.DirEntry
	off     int
}

func (d *rootDir) Stat() (fs.FileInfo, error) { return dirInfo{}, nil }

func (d *rootDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: ".", Err: fs.ErrInvalid}
}

func (d *rootDir) Close() error { return nil }

func (d *rootDir) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.entries[d.off:]

	if n <= 0 {
		d.off = len(d.entries)

		return rest, nil
	}

	if len(rest) == 0 {
		return nil, io.EOF
	}

	n = min(n, len(rest))
	d.off += n

	return rest[:n], nil
}

type fileInfo struct {
	name string
	size int64
}

func (i fileInfo) Name() string       { return i.name }
func (i fileInfo) Size() int64        { return i.size }
func (i fileInfo) Mode() fs.FileMode  { return 0o444 }
func (i fileInfo) ModTime() time.Time { return time.Time{} }
func (i fileInfo) IsDir() bool        { return false }
func (i fileInfo) Sys() any           { return nil }

type dirInfo struct{}

func (dirInfo) Name() string       { return "." }
func (dirInfo) Size() int64        { return 0 }
func (dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (dirInfo) ModTime() time.Time { return time.Time{} }
func (dirInfo) IsDir() bool        { return true }
func (dirInfo) Sys() any           { return nil }

var (
	_ fs.ReadDirFS   = storeFS{}
	_ fs.StatFS      = storeFS{}
	_ fs.ReadDirFile = (*rootDir)(nil)
)
