package fs

import (
	"errors"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
//
// The zero value disables all fault injection.
type ChaosConfig struct {
	// ReadFailRate controls how often ReadFile fails entirely, returning zero
	// bytes and an error. The error is an open-phase failure (EACCES, EMFILE,
	// ENFILE, ENOTDIR) or a read-phase failure (EIO).
	ReadFailRate float64

	// PartialReadRate controls how often ReadFile returns a truncated prefix
	// of the file contents along with an EIO error.
	PartialReadRate float64

	// WriteFailRate controls how often WriteFileAtomic fails before touching
	// the underlying FS. Returns EIO, ENOSPC, EDQUOT or EROFS.
	WriteFailRate float64

	// PartialWriteRate controls how often WriteFileAtomic fails after the
	// underlying FS consumed part of the input. The source reader is cut
	// short with EIO, so the wrapped FS sees a mid-stream failure and must
	// keep the old content.
	PartialWriteRate float64

	// StatFailRate controls how often Stat and Exists fail. Returns EACCES or
	// EIO.
	StatFailRate float64
}

// ChaosMode controls how [Chaos] behaves.
type ChaosMode uint8

const (
	// ChaosModeActive enables fault-rate injection.
	// This is the default mode for a new [Chaos].
	ChaosModeActive ChaosMode = iota

	// ChaosModeNoOp passes every operation directly to the underlying FS.
	ChaosModeNoOp
)

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	ReadFails     int64
	PartialReads  int64
	WriteFails    int64
	PartialWrites int64
	StatFails     int64
}

// Total returns the number of injected faults.
func (s ChaosStats) Total() int64 {
	return s.ReadFails + s.PartialReads + s.WriteFails + s.PartialWrites + s.StatFails
}

// chaosError marks an error as intentionally injected by [Chaos].
//
// It wraps an [*fs.PathError] carrying a real [syscall.Errno], so
// os.IsPermission and friends keep working through unwrapping.
type chaosError struct {
	Err error
}

func (e *chaosError) Error() string {
	return "chaos: " + e.Err.Error()
}

func (e *chaosError) Unwrap() error {
	return e.Err
}

// IsChaosErr reports whether err (or any wrapped error) was injected by [Chaos].
// Returns false if err is nil.
func IsChaosErr(err error) bool {
	var injected *chaosError

	return errors.As(err, &injected)
}

// Chaos wraps an [FS] and injects random failures for testing.
//
// Chaos never injects ENOENT. Any os.IsNotExist result originates from the
// wrapped [FS]. Each call independently decides whether to inject.
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32

	rngMu sync.Mutex
	rng   *rand.Rand

	readFails     atomic.Int64
	partialReads  atomic.Int64
	writeFails    atomic.Int64
	partialWrites atomic.Int64
	statFails     atomic.Int64
}

// NewChaos creates a new [Chaos] filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
// Panics if underlying is nil.
func NewChaos(underlying FS, seed int64, config ChaosConfig) *Chaos {
	if underlying == nil {
		panic("underlying fs is nil")
	}

	return &Chaos{
		fs:     underlying,
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		config: config,
	}
}

// SetMode updates [Chaos] behavior. Safe to call concurrently with
// filesystem operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		ReadFails:     c.readFails.Load(),
		PartialReads:  c.partialReads.Load(),
		WriteFails:    c.writeFails.Load(),
		PartialWrites: c.partialWrites.Load(),
		StatFails:     c.statFails.Load(),
	}
}

// ReadFile reads a file's contents with fault injection.
func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.should(c.config.ReadFailRate) {
		c.readFails.Add(1)

		if c.randFloat() < 0.5 {
			return nil, pathError("open", path, c.pickRandom(syscall.EACCES, syscall.EMFILE, syscall.ENFILE, syscall.ENOTDIR))
		}

		return nil, pathError("read", path, syscall.EIO)
	}

	data, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(data) > 1 && c.should(c.config.PartialReadRate) {
		c.partialReads.Add(1)

		return data[:c.randIntn(len(data)-1)+1], pathError("read", path, syscall.EIO)
	}

	return data, nil
}

// WriteFileAtomic replaces path with fault injection.
func (c *Chaos) WriteFileAtomic(path string, r io.Reader) error {
	if c.should(c.config.WriteFailRate) {
		c.writeFails.Add(1)

		return pathError("write", path, c.pickRandom(syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS))
	}

	if c.should(c.config.PartialWriteRate) {
		c.partialWrites.Add(1)

		return c.fs.WriteFileAtomic(path, &failingReader{
			r:    r,
			left: int64(c.randIntn(4096)),
			err:  pathError("write", path, syscall.EIO),
		})
	}

	return c.fs.WriteFileAtomic(path, r)
}

// Stat returns file info with fault injection.
func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	err := c.statFault(path)
	if err != nil {
		return nil, err
	}

	return c.fs.Stat(path)
}

// Exists checks file existence with fault injection.
func (c *Chaos) Exists(path string) (bool, error) {
	err := c.statFault(path)
	if err != nil {
		return false, err
	}

	return c.fs.Exists(path)
}

func (c *Chaos) statFault(path string) error {
	if !c.should(c.config.StatFailRate) {
		return nil
	}

	c.statFails.Add(1)

	return pathError("stat", path, c.pickRandom(syscall.EACCES, syscall.EIO))
}

func (c *Chaos) getMode() ChaosMode {
	v := c.mode.Load()
	if v > uint32(ChaosModeNoOp) {
		return ChaosModeActive
	}

	return ChaosMode(v)
}

// should returns true with the given probability when chaos is injecting.
func (c *Chaos) should(rate float64) bool {
	if c.getMode() != ChaosModeActive {
		return false
	}

	return c.randFloat() < rate
}

func (c *Chaos) randFloat() float64 {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return c.rng.Float64()
}

func (c *Chaos) randIntn(n int) int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return c.rng.IntN(n)
}

func (c *Chaos) pickRandom(errs ...syscall.Errno) syscall.Errno {
	return errs[c.randIntn(len(errs))]
}

// pathError creates an injected [*fs.PathError] with the given operation,
// path and errno.
func pathError(op, path string, errno syscall.Errno) error {
	return &chaosError{Err: &fs.PathError{Op: op, Path: path, Err: errno}}
}

// failingReader passes through left bytes of r and then fails with err.
type failingReader struct {
	r    io.Reader
	left int64
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.left <= 0 {
		return 0, f.err
	}

	if int64(len(p)) > f.left {
		p = p[:f.left]
	}

	n, err := f.r.Read(p)
	f.left -= int64(n)

	if errors.Is(err, io.EOF) {
		return n, f.err
	}

	return n, err
}

var _ FS = (*Chaos)(nil)
