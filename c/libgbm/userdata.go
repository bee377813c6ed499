//go:build linux && cgo

package libgbm

//#include <stdint.h>
//#include <gbm.h>
import "C"
import (
	"sync"

	"github.com/GreatValueCreamSoda/gogbm/native"
)

// destroyFuncs maps a user data value stored in a native slot to the Go
// function libgbm must run when the owning buffer object is destroyed. C
// cannot hold Go funcs, so the C side only ever sees the
// gogbm_destroy_user_data shim, which forwards here.
var (
	destroyMu    sync.Mutex
	destroyFuncs = make(map[uintptr]native.DestroyFunc)
)

// registerDestroyFunc swaps the registration for the value leaving a slot
// (old) for the one entering it (data). It reports whether libgbm has to be
// given the destroy shim.
func registerDestroyFunc(old, data uintptr, destroy native.DestroyFunc) bool {
	destroyMu.Lock()
	defer destroyMu.Unlock()

	if old != 0 {
		delete(destroyFuncs, old)
	}
	if data == 0 || destroy == nil {
		return false
	}
	destroyFuncs[data] = destroy
	return true
}

// runDestroyFunc runs and forgets the function registered for data. A value
// without a registration is ignored, so each function runs at most once.
func runDestroyFunc(data uintptr) {
	destroyMu.Lock()
	fn, ok := destroyFuncs[data]
	delete(destroyFuncs, data)
	destroyMu.Unlock()

	if ok {
		fn(data)
	}
}

// Called by libgbm, through gogbm_destroy_user_data, from gbm_bo_destroy
// directly or from gbm_surface_destroy.
//
//export goGbmDestroyUserData
func goGbmDestroyUserData(bo *C.struct_gbm_bo, data C.uintptr_t) {
	runDestroyFunc(uintptr(data))
}
