//go:build linux && cgo

package libgbm

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func Test_withErrno_Success(t *testing.T) {
	v := 42
	ptr, err := withErrno(func() (*int, error) { return &v, unix.ENOENT })
	if err != nil {
		t.Fatalf("a non-nil result must not report an error, got %v", err)
	}
	if ptr != &v {
		t.Fatal("withErrno did not return the call's result")
	}
}

func Test_withErrno_NilResultCarriesErrno(t *testing.T) {
	ptr, err := withErrno(func() (*int, error) { return nil, unix.ENOMEM })
	if ptr != nil {
		t.Fatal("a failed call must not return a result")
	}
	if !errors.Is(err, unix.ENOMEM) {
		t.Fatalf("err = %v, want ENOMEM", err)
	}
}

func Test_withErrno_NilResultWithoutErrno(t *testing.T) {
	_, err := withErrno(func() (*int, error) { return nil, nil })
	if !errors.Is(err, unix.EINVAL) {
		t.Fatalf("err = %v, want EINVAL for a failure without errno", err)
	}
}

func Test_withErrno_OpaquePointerType(t *testing.T) {
	type opaque struct{ _ [0]byte }

	_, err := withErrno(func() (*opaque, error) {
		var ptr *opaque
		return ptr, unix.ENODEV
	})
	if !errors.Is(err, unix.ENODEV) {
		t.Fatalf("err = %v, want ENODEV", err)
	}
}
