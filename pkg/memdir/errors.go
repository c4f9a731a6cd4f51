package memdir

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors returned by memdir operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, memdir.ErrNotFound) {
//	    // create it
//	}
var (
	// ErrNotFound indicates an operation referenced an unbound name.
	//
	// Also matches [fs.ErrNotExist].
	ErrNotFound = &kindError{msg: "memdir: not found", fsErr: fs.ErrNotExist}

	// ErrExists indicates a create or rename target is already bound.
	//
	// Also matches [fs.ErrExist].
	ErrExists = &kindError{msg: "memdir: already exists", fsErr: fs.ErrExist}

	// ErrOutOfRange indicates a read or slice request past the logical length,
	// or a negative offset.
	ErrOutOfRange = errors.New("memdir: out of range")

	// ErrClosed indicates the [Store] or handle has already been closed.
	//
	// Also matches [fs.ErrClosed].
	ErrClosed = &kindError{msg: "memdir: closed", fsErr: fs.ErrClosed}

	// ErrReadOnly indicates a write to a frozen [File] (one produced by slicing).
	ErrReadOnly = errors.New("memdir: read-only file")

	// ErrInvalidInput indicates invalid arguments or [Options].
	//
	// This is a programming error.
	ErrInvalidInput = errors.New("memdir: invalid input")
)

// kindError is a sentinel that also matches the equivalent io/fs sentinel,
// so hosts written against io/fs can classify memdir errors.
type kindError struct {
	msg   string
	fsErr error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.fsErr }

// Error is the error type returned by namespace operations that involve a name.
//
// The message reads "<op> <name>: <cause>":
//
//	rename a.bin: memdir: already exists
//
// Use [errors.As] to extract the fields and [errors.Is] on the result to test
// the cause.
type Error struct {
	// Op is the operation, for example "open" or "rename".
	Op string

	// Name is the file name the operation failed on.
	Name string

	// Err is the underlying cause, usually one of the package sentinels.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.Name == "" {
		return e.Op + ": " + e.Err.Error()
	}

	return e.Op + " " + e.Name + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func opErr(op, name string, err error) error {
	return &Error{Op: op, Name: name, Err: err}
}

// InvariantError is the panic value raised when an internal consistency
// assumption breaks, which can only happen through a concurrency bug.
//
// It is never returned as an error. Tests may recover it and identify it with
// errors.As(recovered.(error), new(*InvariantError)).
type InvariantError struct {
	// Op is the operation that detected the violation.
	Op string

	// Name is the name whose binding changed unexpectedly.
	Name string

	// Detail describes what was observed.
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("memdir: invariant violated op=%s name=%q: %s", e.Op, e.Name, e.Detail)
}
