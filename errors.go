package gbm

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// ErrClosed is returned when a Device, Surface, Buffer or FrontBuffer is
	// used or closed after it was already closed.
	ErrClosed = errors.New("gbm: resource already closed")
	// ErrInUse is returned by Close on a Device that still has open Surfaces
	// or Buffers, and on a Surface whose front buffer is still locked.
	ErrInUse = errors.New("gbm: resource still has live dependents")
	// ErrFrontBufferBusy is returned by TryLockFrontBuffer while another
	// FrontBuffer of the same Surface is outstanding.
	ErrFrontBufferBusy = errors.New("gbm: front buffer already locked")
	// ErrNilFile is returned by NewDevice when given a nil file.
	ErrNilFile = errors.New("gbm: nil device file")
)

// Error reports a failed native call. It is the only kind of error produced
// by the native library; the numeric errno is the whole of the information
// the library gives about the cause.
type Error struct {
	// Op names the native operation that failed, e.g. "create device".
	Op string
	// Errno is the value of errno captured right after the failed call.
	Errno unix.Errno
}

func (e *Error) Error() string {
	return fmt.Sprintf("gbm: %s: %s", e.Op, e.Errno.Error())
}

// Unwrap exposes the errno so callers can use errors.Is(err, unix.ENOMEM).
func (e *Error) Unwrap() error { return e.Errno }

// Code returns the numeric native failure code.
func (e *Error) Code() int { return int(e.Errno) }

// check is the one place a native failure turns into an *Error. A zero handle
// is failure regardless of err. A failure that carries no errno is reported
// as EINVAL so that an *Error never holds a zero code.
func check[H ~uintptr](op string, handle H, err error) (H, error) {
	if handle != 0 {
		return handle, nil
	}

	var errno unix.Errno
	if !errors.As(err, &errno) || errno == 0 {
		errno = unix.EINVAL
	}
	return 0, &Error{Op: op, Errno: errno}
}
