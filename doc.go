// Package gbm is a memory safe layer over the Generic Buffer Management
// library (libgbm) used to allocate GPU buffers without a window system.
//
// The native library checks none of its lifetime rules. This package does:
//
//   - A Device is created from a caller-owned, already open DRM file and
//     cannot be closed while Surfaces or Buffers created from it are open.
//   - A Buffer owns its native buffer object and destroys it on Close.
//   - A FrontBuffer is a lock on a Surface's front buffer. Close releases the
//     lock and never destroys the buffer object. A Surface hands out one
//     FrontBuffer at a time.
//   - Every wrapper gives its native handle back exactly once.
//   - Native failures become an *Error carrying the errno of the failed call.
//
// Values can be attached to a buffer object with SetUserData and read back
// with UserData. They are released when replaced or when the native buffer
// object is destroyed.
//
// A native backend must be registered before NewDevice is used without
// WithLibrary. The cgo binding registers itself when imported:
//
//	import _ "github.com/GreatValueCreamSoda/gogbm/c/libgbm"
//
//	file, err := os.OpenFile("/dev/dri/card0", os.O_RDWR, 0)
//	if err != nil {
//		return err
//	}
//	defer file.Close()
//
//	dev, err := gbm.NewDevice(file)
//	if err != nil {
//		return err
//	}
//	defer dev.Close()
//
//	buf, err := dev.Buffer(64, 64, gbm.FormatARGB8888, gbm.Scanout|gbm.Rendering)
//	if err != nil {
//		return err
//	}
//	defer buf.Close()
package gbm
