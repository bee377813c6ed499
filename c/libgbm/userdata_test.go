//go:build linux && cgo

package libgbm

import "testing"

func Test_DestroyFunc_RunsOnce(t *testing.T) {
	var calls []uintptr
	destroy := func(data uintptr) { calls = append(calls, data) }

	if !registerDestroyFunc(0, 7, destroy) {
		t.Fatal("a value with a destroy function needs the shim")
	}

	runDestroyFunc(7)
	runDestroyFunc(7)
	if len(calls) != 1 || calls[0] != 7 {
		t.Fatalf("destroy calls = %v, want [7]", calls)
	}
}

func Test_DestroyFunc_ReplacedValueForgotten(t *testing.T) {
	var calls []uintptr
	destroy := func(data uintptr) { calls = append(calls, data) }

	registerDestroyFunc(0, 11, destroy)
	registerDestroyFunc(11, 12, destroy)

	// libgbm never calls back for a value it overwrote.
	runDestroyFunc(11)
	if len(calls) != 0 {
		t.Fatalf("replaced value ran its destroy function: %v", calls)
	}

	if registerDestroyFunc(12, 0, nil) {
		t.Fatal("clearing the slot must not install the shim")
	}
	runDestroyFunc(12)
	if len(calls) != 0 {
		t.Fatalf("cleared value ran its destroy function: %v", calls)
	}
}
