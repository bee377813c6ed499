package gbm_test

import (
	"os"
	"runtime"
	"testing"
	"weak"

	gbm "github.com/GreatValueCreamSoda/gogbm"
	"github.com/GreatValueCreamSoda/gogbm/native/nativetest"
)

// payload holds a pointer so it is never batched by the tiny allocator,
// which would keep it alive alongside unrelated objects.
type payload struct {
	value int
	label string
}

// openCharDevice opens /dev/null, which nativetest accepts as a device node.
func openCharDevice(t *testing.T) *os.File {
	t.Helper()
	file, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("failed to open %s: %v", os.DevNull, err)
	}
	t.Cleanup(func() { file.Close() })
	return file
}

// newDevice creates a Device backed by a fresh fake library and checks for
// protocol violations when the test ends.
func newDevice(t *testing.T) (*gbm.Device, *nativetest.Library) {
	t.Helper()
	lib := nativetest.New()
	dev, err := gbm.NewDevice(openCharDevice(t), gbm.WithLibrary(lib))
	if err != nil {
		t.Fatalf("failed to create device: %v", err)
	}
	t.Cleanup(func() { expectNoViolations(t, lib) })
	return dev, lib
}

func expectNoViolations(t *testing.T, lib *nativetest.Library) {
	t.Helper()
	for _, v := range lib.Violations() {
		t.Errorf("native protocol violation: %s", v)
	}
}

// expectCollected fails unless ref stops resolving after a few collections.
func expectCollected[T any](t *testing.T, ref weak.Pointer[T]) {
	t.Helper()
	for i := 0; i < 10 && ref.Value() != nil; i++ {
		runtime.GC()
	}
	if ref.Value() != nil {
		t.Fatal("value is still reachable")
	}
}

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	fn()
}
