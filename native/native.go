// Package native is the raw boundary with a GBM implementation.
//
// Handles are plain integers holding the address of the native object. They
// carry no ownership: whoever creates a handle is responsible for destroying
// it exactly once. The gbm package builds the owning wrappers on top of this.
package native

// Device is the address of a native gbm_device.
type Device uintptr

// Surface is the address of a native gbm_surface.
type Surface uintptr

// BufferObject is the address of a native gbm_bo.
type BufferObject uintptr

// DestroyFunc is invoked by a Library with the user data value stored on a
// buffer object when that buffer object is destroyed natively.
type DestroyFunc func(data uintptr)

// Library is the set of native calls the gbm package relies on.
//
// Every call returning a handle returns a zero handle together with a non-nil
// error (a unix.Errno) on failure, and a non-zero handle with a nil error on
// success. Destruction, release and accessor calls cannot fail. Passing a
// handle that was already destroyed is undefined behavior.
type Library interface {
	CreateDevice(fd int) (Device, error)
	DestroyDevice(dev Device)
	BackendName(dev Device) string
	IsFormatSupported(dev Device, format, flags uint32) bool

	CreateSurface(dev Device, width, height, format, flags uint32) (Surface, error)
	DestroySurface(surface Surface)
	HasFreeBuffers(surface Surface) bool

	// LockFrontBuffer must not be called again on the same surface before
	// ReleaseBuffer has been called for the previously locked buffer.
	LockFrontBuffer(surface Surface) (BufferObject, error)
	ReleaseBuffer(surface Surface, bo BufferObject)

	CreateBufferObject(dev Device, width, height, format, flags uint32) (BufferObject, error)
	DestroyBufferObject(bo BufferObject)

	Width(bo BufferObject) uint32
	Height(bo BufferObject) uint32
	Stride(bo BufferObject) uint32
	Format(bo BufferObject) uint32
	Handle(bo BufferObject) uint64

	// SetUserData replaces the value in the user data slot of bo. It never
	// calls the destroy function of the value being replaced. When destroy
	// is non-nil it is called exactly once with data when bo is destroyed.
	SetUserData(bo BufferObject, data uintptr, destroy DestroyFunc)
	UserData(bo BufferObject) uintptr
}
