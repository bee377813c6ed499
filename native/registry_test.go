package native_test

import (
	"errors"
	"testing"

	"github.com/GreatValueCreamSoda/gogbm/native"
	"github.com/GreatValueCreamSoda/gogbm/native/nativetest"
)

func Test_Registry(t *testing.T) {
	for _, name := range native.List() {
		native.Unregister(name)
	}

	if _, err := native.Default(); !errors.Is(err, native.ErrNoLibrary) {
		t.Fatalf("Default() on an empty registry = %v, want ErrNoLibrary",
			err)
	}

	fake := nativetest.New()
	native.Register("zz-fake", fake)
	defer native.Unregister("zz-fake")

	lib, err := native.Default()
	if err != nil || lib != fake {
		t.Fatal("the only registered library should be the default")
	}

	preferred := nativetest.New()
	native.Register(native.DefaultName, preferred)
	defer native.Unregister(native.DefaultName)

	if lib, _ := native.Default(); lib != preferred {
		t.Fatal("Default() should prefer the library under DefaultName")
	}

	if _, err := native.Get("missing"); !errors.Is(err,
		native.ErrUnknownLibrary) {
		t.Fatalf("Get(missing) = %v, want ErrUnknownLibrary", err)
	}

	names := native.List()
	if len(names) != 2 || names[0] != native.DefaultName {
		t.Fatalf("List() = %v", names)
	}
}
