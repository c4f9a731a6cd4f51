package testutil

import (
	"errors"
	"maps"
	"slices"
	"strconv"

	"github.com/calvinalkan/memdir/pkg/memdir"
)

// Model is the reference semantics of a [memdir.Store]: a plain map from
// names to byte slices.
type Model struct {
	files   map[string][]byte
	tempSeq uint64
	tempExt string
}

// NewModel returns an empty model generating temp names with ext.
func NewModel(ext string) *Model {
	return &Model{files: map[string][]byte{}, tempExt: ext}
}

// Names returns the bound names in ascending order.
func (m *Model) Names() []string {
	names := slices.AppendSeq(make([]string, 0, len(m.files)), maps.Keys(m.files))
	slices.Sort(names)

	return names
}

// Content returns a copy of the bytes bound to name.
func (m *Model) Content(name string) ([]byte, bool) {
	b, ok := m.files[name]

	return slices.Clone(b), ok
}

func (m *Model) create(name string, data []byte) error {
	if _, ok := m.files[name]; ok {
		return memdir.ErrExists
	}

	m.files[name] = slices.Clone(data)

	return nil
}

func (m *Model) createTemp(prefix, suffix string, data []byte) string {
	for {
		name := prefix + "_" + suffix + "_" + strconv.FormatUint(m.tempSeq, 36) + "." + m.tempExt
		m.tempSeq++

		if m.create(name, data) == nil {
			return name
		}
	}
}

func (m *Model) read(name string, off, n int64) ([]byte, error) {
	b, ok := m.files[name]
	if !ok {
		return nil, memdir.ErrNotFound
	}

	if off < 0 || n < 0 || off+n > int64(len(b)) {
		return nil, memdir.ErrOutOfRange
	}

	return slices.Clone(b[off : off+n]), nil
}

func (m *Model) remove(name string) error {
	if _, ok := m.files[name]; !ok {
		return memdir.ErrNotFound
	}

	delete(m.files, name)

	return nil
}

func (m *Model) rename(src, dst string) error {
	b, ok := m.files[src]
	if !ok {
		return memdir.ErrNotFound
	}

	if _, ok := m.files[dst]; ok {
		return memdir.ErrExists
	}

	m.files[dst] = b
	delete(m.files, src)

	return nil
}

func (m *Model) copy(src, dst string) error {
	b, ok := m.files[src]
	if !ok {
		return memdir.ErrNotFound
	}

	return m.create(dst, b)
}

// errKind maps an error onto the sentinel it matches, so model and store
// errors compare without depending on message wrapping.
func errKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, memdir.ErrNotFound):
		return "not found"
	case errors.Is(err, memdir.ErrExists):
		return "exists"
	case errors.Is(err, memdir.ErrOutOfRange):
		return "out of range"
	case errors.Is(err, memdir.ErrClosed):
		return "closed"
	default:
		return "other: " + err.Error()
	}
}
