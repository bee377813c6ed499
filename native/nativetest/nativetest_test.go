package nativetest_test

import (
	"errors"
	"os"
	"testing"

	"github.com/GreatValueCreamSoda/gogbm/native"
	"github.com/GreatValueCreamSoda/gogbm/native/nativetest"
	"golang.org/x/sys/unix"
)

func openNull(t *testing.T) int {
	t.Helper()
	file, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { file.Close() })
	return int(file.Fd())
}

func Test_Library_RecordsViolations(t *testing.T) {
	lib := nativetest.New()

	dev, err := lib.CreateDevice(openNull(t))
	if err != nil {
		t.Fatal(err)
	}
	s, err := lib.CreateSurface(dev, 8, 8, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	first, _ := lib.LockFrontBuffer(s)
	second, _ := lib.LockFrontBuffer(s)
	if first == second {
		t.Fatal("consecutive locks should walk the swap chain")
	}
	lib.ReleaseBuffer(s, first)
	lib.DestroyDevice(dev)
	lib.DestroyDevice(dev)

	if n := len(lib.Violations()); n != 4 {
		t.Fatalf("recorded %d violations, want 4: %q", n, lib.Violations())
	}
}

func Test_Library_Failures(t *testing.T) {
	lib := nativetest.New()

	lib.Fail(nativetest.CreateDevice, unix.EACCES)
	if _, err := lib.CreateDevice(openNull(t)); !errors.Is(err, unix.EACCES) {
		t.Fatalf("err = %v, want the injected EACCES", err)
	}

	dev, err := lib.CreateDevice(openNull(t))
	if err != nil {
		t.Fatalf("injected failures must only apply once: %v", err)
	}

	if _, err := lib.CreateBufferObject(dev, 0, 8, 0, 0); !errors.Is(err,
		unix.EINVAL) {
		t.Fatalf("zero sized buffer: err = %v, want EINVAL", err)
	}

	if lib.Calls(nativetest.CreateDevice) != 2 {
		t.Fatal("failed calls must be recorded too")
	}
}

func Test_Library_DestroyRunsUserData(t *testing.T) {
	lib := nativetest.New()

	dev, err := lib.CreateDevice(openNull(t))
	if err != nil {
		t.Fatal(err)
	}
	bo, err := lib.CreateBufferObject(dev, 8, 8, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	var calls []uintptr
	lib.SetUserData(bo, 42, func(data uintptr) { calls = append(calls, data) })
	if lib.UserData(bo) != 42 {
		t.Fatal("user data not stored")
	}

	lib.DestroyBufferObject(bo)
	if len(calls) != 1 || calls[0] != 42 {
		t.Fatalf("destroy calls = %v, want [42]", calls)
	}

	lib.DestroyDevice(dev)
	if len(lib.Violations()) != 0 {
		t.Fatalf("unexpected violations: %q", lib.Violations())
	}
	if d, s, b := lib.Live(); d+s+b != 0 {
		t.Fatal("everything should be destroyed")
	}
}

var _ native.Library = nativetest.New()
