package gbm_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	gbm "github.com/GreatValueCreamSoda/gogbm"
	"github.com/GreatValueCreamSoda/gogbm/native"
	"github.com/GreatValueCreamSoda/gogbm/native/nativetest"
	"golang.org/x/sys/unix"
)

func Test_Device_CloseDestroysOnce(t *testing.T) {
	dev, lib := newDevice(t)

	if err := dev.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := dev.Close(); !errors.Is(err, gbm.ErrClosed) {
		t.Fatalf("second Close() = %v, want ErrClosed", err)
	}

	if n := lib.Calls(nativetest.DestroyDevice); n != 1 {
		t.Fatalf("DestroyDevice called %d times, want 1", n)
	}
	if devices, _, _ := lib.Live(); devices != 0 {
		t.Fatalf("%d devices still alive", devices)
	}
}

func Test_Device_InvalidFile(t *testing.T) {
	lib := nativetest.New()

	file, err := os.CreateTemp(t.TempDir(), "not-a-drm-node")
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	dev, err := gbm.NewDevice(file, gbm.WithLibrary(lib))
	if dev != nil {
		t.Fatal("a failed NewDevice must not return a Device")
	}

	var gbmErr *gbm.Error
	if !errors.As(err, &gbmErr) {
		t.Fatalf("err = %v (%T), want *gbm.Error", err, err)
	}
	if gbmErr.Errno != unix.ENODEV || gbmErr.Op != "create device" {
		t.Fatalf("err = %+v, want create device ENODEV", gbmErr)
	}

	if n := lib.Calls(nativetest.DestroyDevice); n != 0 {
		t.Fatalf("DestroyDevice called %d times after a failed create", n)
	}
}

func Test_Device_NilFile(t *testing.T) {
	_, err := gbm.NewDevice(nil, gbm.WithLibrary(nativetest.New()))
	if !errors.Is(err, gbm.ErrNilFile) {
		t.Fatalf("err = %v, want ErrNilFile", err)
	}
}

func Test_Device_Backends(t *testing.T) {
	file := openCharDevice(t)

	_, err := gbm.NewDevice(file, gbm.WithBackend("does-not-exist"))
	if !errors.Is(err, native.ErrUnknownLibrary) {
		t.Fatalf("err = %v, want ErrUnknownLibrary", err)
	}

	lib := nativetest.New()
	native.Register("gbm-device-test", lib)
	defer native.Unregister("gbm-device-test")

	dev, err := gbm.NewDevice(file, gbm.WithBackend("gbm-device-test"))
	if err != nil {
		t.Fatalf("NewDevice with a registered backend: %v", err)
	}
	defer dev.Close()

	if dev.BackendName() != nativetest.BackendName {
		t.Fatalf("BackendName() = %q, want %q", dev.BackendName(),
			nativetest.BackendName)
	}
	if lib.Calls(nativetest.CreateDevice) != 1 {
		t.Fatal("the registered backend was not used")
	}
}

func Test_Device_Accessors(t *testing.T) {
	dev, _ := newDevice(t)

	if dev.File() == nil {
		t.Fatal("File() should return the borrowed file")
	}
	if dev.Raw() == 0 {
		t.Fatal("Raw() should return the native address")
	}
	if !dev.IsFormatSupported(gbm.FormatARGB8888, gbm.Cursor) {
		t.Fatal("ARGB8888 cursors should be supported")
	}
	if dev.IsFormatSupported(gbm.FormatXRGB8888, gbm.Cursor) {
		t.Fatal("nativetest rejects XRGB8888 cursors")
	}

	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
	expectPanic(t, func() { dev.Raw() })
	expectPanic(t, func() { dev.BackendName() })

	// The file is borrowed, not owned.
	if _, err := dev.File().Stat(); err != nil {
		t.Fatalf("file was closed along with the device: %v", err)
	}
}

func Test_Device_CloseWithDependents(t *testing.T) {
	dev, lib := newDevice(t)

	buffer, err := dev.Buffer(16, 16, gbm.FormatXRGB8888, gbm.Rendering)
	if err != nil {
		t.Fatal(err)
	}
	surface, err := dev.Surface(16, 16, gbm.FormatXRGB8888, gbm.Rendering)
	if err != nil {
		t.Fatal(err)
	}

	if err := dev.Close(); !errors.Is(err, gbm.ErrInUse) {
		t.Fatalf("Close() with dependents = %v, want ErrInUse", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); !errors.Is(err, gbm.ErrInUse) {
		t.Fatalf("Close() with a surface left = %v, want ErrInUse", err)
	}

	if err := surface.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("Close() after dependents closed = %v", err)
	}

	if n := lib.Calls(nativetest.DestroyDevice); n != 1 {
		t.Fatalf("DestroyDevice called %d times, want 1", n)
	}
}

func Test_Device_ClosedRejectsCreation(t *testing.T) {
	dev, lib := newDevice(t)
	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := dev.Buffer(16, 16, gbm.FormatXRGB8888, 0); !errors.Is(err,
		gbm.ErrClosed) {
		t.Fatalf("Buffer() on a closed device = %v, want ErrClosed", err)
	}
	if _, err := dev.Surface(16, 16, gbm.FormatXRGB8888, 0); !errors.Is(err,
		gbm.ErrClosed) {
		t.Fatalf("Surface() on a closed device = %v, want ErrClosed", err)
	}

	if lib.Calls(nativetest.CreateBufferObject)+
		lib.Calls(nativetest.CreateSurface) != 0 {
		t.Fatal("a closed device must not reach the native library")
	}
}

func Test_Device_CreationFailures(t *testing.T) {
	dev, lib := newDevice(t)
	defer dev.Close()

	lib.Fail(nativetest.CreateBufferObject, unix.ENOMEM)
	lib.Fail(nativetest.CreateSurface, unix.EINVAL)

	if buffer, err := dev.Buffer(16, 16, gbm.FormatXRGB8888, 0); buffer != nil ||
		!errors.Is(err, unix.ENOMEM) {
		t.Fatalf("Buffer() = %v, %v, want nil, ENOMEM", buffer, err)
	}
	if surface, err := dev.Surface(16, 16, gbm.FormatXRGB8888, 0); surface != nil ||
		!errors.Is(err, unix.EINVAL) {
		t.Fatalf("Surface() = %v, %v, want nil, EINVAL", surface, err)
	}

	// Failed creations leave nothing behind that would keep the device open.
	if err := dev.Close(); err != nil {
		t.Fatalf("Close() after failed creations = %v", err)
	}
}

func Test_Device_Logging(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out,
		&slog.HandlerOptions{Level: slog.LevelDebug}))

	dev, err := gbm.NewDevice(openCharDevice(t),
		gbm.WithLibrary(nativetest.New()), gbm.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}

	buffer, err := dev.Buffer(8, 8, gbm.FormatARGB8888, gbm.Write)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); !errors.Is(err, gbm.ErrInUse) {
		t.Fatal(err)
	}
	buffer.Close()
	dev.Close()

	for _, want := range []string{"device created", "buffer created",
		"refusing to close device", "buffer destroyed", "device destroyed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("log output is missing %q:\n%s", want, out.String())
		}
	}
}

func Test_SetLogger(t *testing.T) {
	defer gbm.SetLogger(nil)

	var out bytes.Buffer
	gbm.SetLogger(slog.New(slog.NewTextHandler(&out,
		&slog.HandlerOptions{Level: slog.LevelDebug})))

	dev, _ := newDevice(t)
	dev.Close()

	if !strings.Contains(out.String(), "device destroyed") {
		t.Fatalf("package logger was not used:\n%s", out.String())
	}

	gbm.SetLogger(nil)
	if gbm.Logger().Enabled(t.Context(), slog.LevelError) {
		t.Fatal("the default logger should discard everything")
	}
}
