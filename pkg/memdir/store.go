package memdir

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultTempExt is the extension [Store.CreateTemp] appends by default.
const DefaultTempExt = "tmp"

// Options configure a [Store]. The zero value is usable.
type Options struct {
	// ChunkSize is the growth increment of file buffers in bytes.
	// Default: [DefaultChunkSize].
	ChunkSize int

	// TempExt is the extension of names generated by [Store.CreateTemp],
	// without the dot. Default: [DefaultTempExt].
	TempExt string

	// Logger receives debug records for namespace mutations.
	// Default: discard.
	Logger *slog.Logger
}

func (o Options) withDefaults() (Options, error) {
	if o.ChunkSize < 0 {
		return Options{}, fmt.Errorf("chunk size %d: %w", o.ChunkSize, ErrInvalidInput)
	}

	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}

	if strings.ContainsAny(o.TempExt, "./") {
		return Options{}, fmt.Errorf("temp extension %q: %w", o.TempExt, ErrInvalidInput)
	}

	if o.TempExt == "" {
		o.TempExt = DefaultTempExt
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	return o, nil
}

// Store is a namespace of named in-memory files.
//
// Bindings live in a concurrent map scoped to the Store; operations on
// different names never contend, and there is no package-level state.
// Store is safe for concurrent use.
type Store struct {
	files   sync.Map // string -> *File
	tempSeq atomic.Uint64
	closed  atomic.Bool

	opts Options
	log  *slog.Logger

	// afterBind runs between the two rename steps. Tests only.
	afterBind func(src, dst string)
}

// New creates an empty, open Store.
func New(opts Options) (*Store, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	return &Store{opts: o, log: o.Logger}, nil
}

// Create binds a new empty file to name and returns a write handle for it.
//
// Exactly one of several concurrent Create calls for the same name succeeds;
// the others fail with [ErrExists].
func (s *Store) Create(name string) (*Output, error) {
	if s.closed.Load() {
		return nil, opErr("create", name, ErrClosed)
	}

	f := newFile(s.opts.ChunkSize)

	if _, loaded := s.files.LoadOrStore(name, f); loaded {
		return nil, opErr("create", name, ErrExists)
	}

	s.log.Debug("create", "name", name)

	return newOutput(name, f), nil
}

// CreateTemp binds a new empty file to a generated name and returns the name
// and a write handle.
//
// Names have the form prefix_suffix_N.ext where N is a per-store counter in
// base 36; the counter advances until an unused name is found.
func (s *Store) CreateTemp(prefix, suffix string) (string, *Output, error) {
	if s.closed.Load() {
		return "", nil, opErr("create temp", prefix, ErrClosed)
	}

	f := newFile(s.opts.ChunkSize)

	for {
		name := s.tempName(prefix, suffix, s.tempSeq.Add(1)-1)

		if _, loaded := s.files.LoadOrStore(name, f); !loaded {
			s.log.Debug("create temp", "name", name)

			return name, newOutput(name, f), nil
		}
	}
}

func (s *Store) tempName(prefix, suffix string, seq uint64) string {
	var b strings.Builder

	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(suffix)
	b.WriteByte('_')
	b.WriteString(strconv.FormatUint(seq, 36))
	b.WriteByte('.')
	b.WriteString(s.opts.TempExt)

	return b.String()
}

// Open returns a read handle on the file bound to name. All handles on a
// file observe the same live content and length.
func (s *Store) Open(name string) (*Input, error) {
	f, err := s.lookup("open", name)
	if err != nil {
		return nil, err
	}

	return newInput(name, f), nil
}

// Remove unbinds name. Handles obtained before the call stay usable.
func (s *Store) Remove(name string) error {
	if s.closed.Load() {
		return opErr("remove", name, ErrClosed)
	}

	if _, loaded := s.files.LoadAndDelete(name); !loaded {
		return opErr("remove", name, ErrNotFound)
	}

	s.log.Debug("remove", "name", name)

	return nil
}

// Rename moves the binding of src to dst.
//
// It fails with [ErrNotFound] if src is unbound and with [ErrExists] if dst
// is bound (including src == dst). dst is bound before src is released, so
// the file is never unreachable under both names.
//
// If src is rebound to a different file between the two steps, Rename panics
// with an [*InvariantError].
func (s *Store) Rename(src, dst string) error {
	f, err := s.lookup("rename", src)
	if err != nil {
		return err
	}

	if _, loaded := s.files.LoadOrStore(dst, f); loaded {
		return opErr("rename", dst, ErrExists)
	}

	if s.afterBind != nil {
		s.afterBind(src, dst)
	}

	if !s.files.CompareAndDelete(src, f) {
		inv := &InvariantError{Op: "rename", Name: src, Detail: "source binding replaced while renaming to " + strconv.Quote(dst)}
		s.log.Error("invariant violated", "op", inv.Op, "name", src, "dst", dst)

		panic(inv)
	}

	s.log.Debug("rename", "name", src, "dst", dst)

	return nil
}

// FileLen returns the logical length of the file bound to name.
func (s *Store) FileLen(name string) (int64, error) {
	f, err := s.lookup("stat", name)
	if err != nil {
		return 0, err
	}

	return f.Len(), nil
}

// List returns the bound names in sorted order.
//
// The result is a snapshot: names created or removed while List runs may or
// may not appear.
func (s *Store) List() ([]string, error) {
	if s.closed.Load() {
		return nil, opErr("list", "", ErrClosed)
	}

	names := make([]string, 0)

	s.files.Range(func(key, _ any) bool {
		names = append(names, key.(string))

		return true
	})

	slices.Sort(names)

	return names, nil
}

// Sync is a no-op apart from validation: nothing in a Store is durable.
// It fails if the store is closed or any name is unbound.
func (s *Store) Sync(names ...string) error {
	for _, name := range names {
		_, err := s.lookup("sync", name)
		if err != nil {
			return err
		}
	}

	if s.closed.Load() {
		return opErr("sync", "", ErrClosed)
	}

	return nil
}

// Close marks the store closed and drops every binding. Handles obtained
// earlier keep working on their files. Close is idempotent.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.files.Clear()
	s.log.Debug("close")

	return nil
}

func (s *Store) lookup(op, name string) (*File, error) {
	if s.closed.Load() {
		return nil, opErr(op, name, ErrClosed)
	}

	v, ok := s.files.Load(name)
	if !ok {
		return nil, opErr(op, name, ErrNotFound)
	}

	return v.(*File), nil
}
