package memdir_test

import (
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_FS_Reads_Files_Through_Standard_Helpers(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	writeFile(t, s, "hello.txt", []byte("hello"))
	writeFile(t, s, "empty", nil)

	fsys := s.FS()

	got, err := fs.ReadFile(fsys, "hello.txt")
	if err != nil {
		t.Fatalf("fs.ReadFile: %v", err)
	}

	if string(got) != "hello" {
		t.Fatalf("content=%q, want hello", got)
	}

	info, err := fs.Stat(fsys, "hello.txt")
	if err != nil {
		t.Fatalf("fs.Stat: %v", err)
	}

	if info.Size() != 5 || info.IsDir() || info.Name() != "hello.txt" {
		t.Fatalf("stat=%s size=%d dir=%v, want hello.txt 5 false", info.Name(), info.Size(), info.IsDir())
	}

	root, err := fs.Stat(fsys, ".")
	if err != nil || !root.IsDir() {
		t.Fatalf("stat root=(%v,%v), want directory", root, err)
	}
}

func Test_FS_ReadDir_Lists_Only_Valid_Flat_Names(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	writeFile(t, s, "b", []byte("12"))
	writeFile(t, s, "a", []byte("1"))
	writeFile(t, s, "dir/nested", nil)
	writeFile(t, s, "../escape", nil)

	entries, err := fs.ReadDir(s.FS(), ".")
	if err != nil {
		t.Fatalf("fs.ReadDir: %v", err)
	}

	var names []string

	for _, e := range entries {
		names = append(names, e.Name())
	}

	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	_, err = s.FS().Open("dir/nested")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Open(dir/nested) err=%v, want ErrNotExist", err)
	}

	_, err = s.FS().Open("../escape")
	if !errors.Is(err, fs.ErrInvalid) {
		t.Fatalf("Open(../escape) err=%v, want ErrInvalid", err)
	}
}

func Test_FS_Root_ReadDir_Pages_When_Count_Positive(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	for _, name := range []string{"a", "b", "c"} {
		writeFile(t, s, name, nil)
	}

	f, err := s.FS().Open(".")
	if err != nil {
		t.Fatalf("Open(.): %v", err)
	}

	dir, ok := f.(fs.ReadDirFile)
	if !ok {
		t.Fatalf("root %T does not implement fs.ReadDirFile", f)
	}

	first, err := dir.ReadDir(2)
	if err != nil || len(first) != 2 {
		t.Fatalf("ReadDir(2)=(%d,%v), want (2,nil)", len(first), err)
	}

	second, err := dir.ReadDir(2)
	if err != nil || len(second) != 1 || second[0].Name() != "c" {
		t.Fatalf("ReadDir(2) second page=(%v,%v), want [c]", second, err)
	}

	_, err = dir.ReadDir(2)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("ReadDir past end err=%v, want io.EOF", err)
	}
}

func Test_FS_Open_Returns_ErrNotExist_When_Name_Unbound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.FS().Open("nope")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err=%v, want fs.ErrNotExist", err)
	}

	var pErr *fs.PathError
	if !errors.As(err, &pErr) || pErr.Path != "nope" {
		t.Fatalf("err=%#v, want *fs.PathError for nope", err)
	}
}

func Test_FS_File_Supports_Seek_And_ReadAt(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	writeFile(t, s, "f", []byte("0123456789"))

	f, err := s.FS().Open("f")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	defer func() { _ = f.Close() }()

	seeker, ok := f.(io.ReadSeeker)
	if !ok {
		t.Fatalf("%T does not implement io.ReadSeeker", f)
	}

	_, err = seeker.Seek(7, io.SeekStart)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}

	rest, _ := io.ReadAll(seeker)
	if string(rest) != "789" {
		t.Fatalf("rest=%q, want 789", rest)
	}

	ra, ok := f.(io.ReaderAt)
	if !ok {
		t.Fatalf("%T does not implement io.ReaderAt", f)
	}

	buf := make([]byte, 3)

	_, err = ra.ReadAt(buf, 2)
	if err != nil || string(buf) != "234" {
		t.Fatalf("ReadAt=(%q,%v), want 234", buf, err)
	}
}
