//go:build linux && cgo

package libgbm

//#cgo LDFLAGS: -lgbm
//#cgo CFLAGS: -I/usr/include
//#include <gbm.h>
//#include <stdint.h>
//#include <stdlib.h>
//
//extern void goGbmDestroyUserData(struct gbm_bo *bo, uintptr_t data);
//
//static void gogbm_destroy_user_data(struct gbm_bo *bo, void *data) {
//	goGbmDestroyUserData(bo, (uintptr_t)data);
//}
//
//static void gogbm_set_user_data(struct gbm_bo *bo, uintptr_t data,
//                                int with_destroy) {
//	gbm_bo_set_user_data(bo, (void *)data,
//	                     with_destroy ? gogbm_destroy_user_data : NULL);
//}
//
//static uintptr_t gogbm_get_user_data(struct gbm_bo *bo) {
//	return (uintptr_t)gbm_bo_get_user_data(bo);
//}
//
//static uint64_t gogbm_bo_handle(struct gbm_bo *bo) {
//	return gbm_bo_get_handle(bo).u64;
//}
import "C"
import (
	"errors"
	"unsafe"

	"github.com/GreatValueCreamSoda/gogbm/native"
	"golang.org/x/sys/unix"
)

// Library implements native.Library on top of the system libgbm. It has no
// state; all state lives in the native objects.
type Library struct{}

var _ native.Library = Library{}

func init() { native.Register(native.DefaultName, Library{}) }

// withErrno is the single place a native handle-returning call is checked.
//
// fn must make its C call with cgo's two-result form. cgo sets errno to zero
// right before the C function runs and reads it right after, on the same OS
// thread, so the errno returned belongs to this call and cannot be a stale
// value left behind by an earlier one.
//
// P is the C pointer type the call returns. The zero P is failure. A failure
// that left errno at zero is reported as EINVAL so the caller never sees a
// failure without a code.
func withErrno[P comparable](fn func() (P, error)) (P, error) {
	var zero P

	ptr, err := fn()
	if ptr != zero {
		return ptr, nil
	}

	var errno unix.Errno
	if !errors.As(err, &errno) || errno == 0 {
		errno = unix.EINVAL
	}
	return zero, errno
}

// Handles are C addresses, never Go pointers, so storing them as integers is
// safe from the garbage collector's point of view.

func devicePtr(dev native.Device) *C.struct_gbm_device {
	return (*C.struct_gbm_device)(unsafe.Pointer(uintptr(dev)))
}

func surfacePtr(s native.Surface) *C.struct_gbm_surface {
	return (*C.struct_gbm_surface)(unsafe.Pointer(uintptr(s)))
}

func boPtr(bo native.BufferObject) *C.struct_gbm_bo {
	return (*C.struct_gbm_bo)(unsafe.Pointer(uintptr(bo)))
}

func (Library) CreateDevice(fd int) (native.Device, error) {
	ptr, err := withErrno(func() (*C.struct_gbm_device, error) {
		ptr, err := C.gbm_create_device(C.int(fd))
		return ptr, err
	})
	if err != nil {
		return 0, err
	}
	return native.Device(uintptr(unsafe.Pointer(ptr))), nil
}

func (Library) DestroyDevice(dev native.Device) {
	C.gbm_device_destroy(devicePtr(dev))
}

func (Library) BackendName(dev native.Device) string {
	return C.GoString(C.gbm_device_get_backend_name(devicePtr(dev)))
}

func (Library) IsFormatSupported(dev native.Device, format, flags uint32) bool {
	return C.gbm_device_is_format_supported(devicePtr(dev), C.uint32_t(format),
		C.uint32_t(flags)) != 0
}

func (Library) CreateSurface(dev native.Device, width, height, format,
	flags uint32) (native.Surface, error) {
	ptr, err := withErrno(func() (*C.struct_gbm_surface, error) {
		ptr, err := C.gbm_surface_create(devicePtr(dev), C.uint32_t(width),
			C.uint32_t(height), C.uint32_t(format), C.uint32_t(flags))
		return ptr, err
	})
	if err != nil {
		return 0, err
	}
	return native.Surface(uintptr(unsafe.Pointer(ptr))), nil
}

func (Library) DestroySurface(s native.Surface) {
	C.gbm_surface_destroy(surfacePtr(s))
}

func (Library) HasFreeBuffers(s native.Surface) bool {
	return C.gbm_surface_has_free_buffers(surfacePtr(s)) != 0
}

func (Library) LockFrontBuffer(s native.Surface) (native.BufferObject, error) {
	ptr, err := withErrno(func() (*C.struct_gbm_bo, error) {
		ptr, err := C.gbm_surface_lock_front_buffer(surfacePtr(s))
		return ptr, err
	})
	if err != nil {
		return 0, err
	}
	return native.BufferObject(uintptr(unsafe.Pointer(ptr))), nil
}

func (Library) ReleaseBuffer(s native.Surface, bo native.BufferObject) {
	C.gbm_surface_release_buffer(surfacePtr(s), boPtr(bo))
}

func (Library) CreateBufferObject(dev native.Device, width, height, format,
	flags uint32) (native.BufferObject, error) {
	ptr, err := withErrno(func() (*C.struct_gbm_bo, error) {
		ptr, err := C.gbm_bo_create(devicePtr(dev), C.uint32_t(width),
			C.uint32_t(height), C.uint32_t(format), C.uint32_t(flags))
		return ptr, err
	})
	if err != nil {
		return 0, err
	}
	return native.BufferObject(uintptr(unsafe.Pointer(ptr))), nil
}

func (Library) DestroyBufferObject(bo native.BufferObject) {
	C.gbm_bo_destroy(boPtr(bo))
}

func (Library) Width(bo native.BufferObject) uint32 {
	return uint32(C.gbm_bo_get_width(boPtr(bo)))
}

func (Library) Height(bo native.BufferObject) uint32 {
	return uint32(C.gbm_bo_get_height(boPtr(bo)))
}

func (Library) Stride(bo native.BufferObject) uint32 {
	return uint32(C.gbm_bo_get_stride(boPtr(bo)))
}

func (Library) Format(bo native.BufferObject) uint32 {
	return uint32(C.gbm_bo_get_format(boPtr(bo)))
}

func (Library) Handle(bo native.BufferObject) uint64 {
	return uint64(C.gogbm_bo_handle(boPtr(bo)))
}

// SetUserData stores data in the native slot. libgbm does not run the
// destroy callback of a value it overwrites, so the registration of the
// previous value is simply dropped here; the caller has already released it.
func (Library) SetUserData(bo native.BufferObject, data uintptr,
	destroy native.DestroyFunc) {
	ptr := boPtr(bo)

	old := uintptr(C.gogbm_get_user_data(ptr))
	var withDestroy C.int
	if registerDestroyFunc(old, data, destroy) {
		withDestroy = 1
	}

	C.gogbm_set_user_data(ptr, C.uintptr_t(data), withDestroy)
}

func (Library) UserData(bo native.BufferObject) uintptr {
	return uintptr(C.gogbm_get_user_data(boPtr(bo)))
}
