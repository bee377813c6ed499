package gbm

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/GreatValueCreamSoda/gogbm/native"
)

// Device wraps a native gbm_device.
//
// The Device borrows the file it was created from: the caller keeps
// ownership of the file and must keep it open until the Device is closed.
//
// Surfaces and Buffers created from a Device must be closed before the
// Device. Close reports ErrInUse and destroys nothing while any of them is
// still open.
type Device struct {
	file *os.File
	lib  native.Library
	log  *slog.Logger
	raw  native.Device

	// mu orders Close against the creation of dependents. Creation holds it
	// shared, Close holds it exclusively.
	mu       sync.RWMutex
	children atomic.Int64

	disp    *disposer
	cleanup runtime.Cleanup
}

// NewDevice creates a Device on an already open DRM device file, for example
// /dev/dri/card0 or a render node opened read-write.
//
// When the native library rejects the file the returned error is an *Error
// carrying the native errno and no Device exists.
func NewDevice(file *os.File, opts ...DeviceOption) (*Device, error) {
	if file == nil {
		return nil, ErrNilFile
	}

	var o deviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	lib, logger, err := o.resolve()
	if err != nil {
		return nil, err
	}

	raw, err := lib.CreateDevice(int(file.Fd()))
	runtime.KeepAlive(file)
	if raw, err = check("create device", raw, err); err != nil {
		logger.Debug("gbm: device creation failed", "file", file.Name(),
			"err", err)
		return nil, err
	}

	d := &Device{file: file, lib: lib, log: logger, raw: raw}
	d.disp = newDisposer(func() {
		lib.DestroyDevice(raw)
		logger.Debug("gbm: device destroyed", "device", uintptr(raw))
	})
	d.cleanup = track(d, d.disp, logger, "device")

	logger.Debug("gbm: device created", "file", file.Name(),
		"device", uintptr(raw))
	return d, nil
}

// handle returns the native handle, panicking if the Device was closed.
func (d *Device) handle() native.Device {
	if d.disp.closed() {
		panic(ErrClosed)
	}
	return d.raw
}

// File returns the file the Device was created from.
func (d *Device) File() *os.File { return d.file }

// Raw returns the address of the native gbm_device, for passing to other
// native libraries such as EGL. It is valid until Close.
func (d *Device) Raw() uintptr { return uintptr(d.handle()) }

// BackendName returns the name of the native backend driving the device.
func (d *Device) BackendName() string { return d.lib.BackendName(d.handle()) }

// IsFormatSupported reports whether buffers of format can be allocated with
// flags on this device.
func (d *Device) IsFormatSupported(format Format, flags BufferFlags) bool {
	return d.lib.IsFormatSupported(d.handle(), uint32(format), uint32(flags))
}

// Buffer allocates a standalone buffer object owned by the returned Buffer.
func (d *Device) Buffer(width, height uint32, format Format,
	flags BufferFlags) (*Buffer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.disp.closed() {
		return nil, ErrClosed
	}

	raw, err := d.lib.CreateBufferObject(d.raw, width, height, uint32(format),
		uint32(flags))
	if raw, err = check("create buffer object", raw, err); err != nil {
		d.log.Debug("gbm: buffer creation failed", "width", width,
			"height", height, "format", format, "flags", flags, "err", err)
		return nil, err
	}

	d.children.Add(1)
	return newBuffer(d, raw), nil
}

// Surface creates a surface whose front buffer can be locked with
// Surface.LockFrontBuffer once something has rendered into it.
func (d *Device) Surface(width, height uint32, format Format,
	flags BufferFlags) (*Surface, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.disp.closed() {
		return nil, ErrClosed
	}

	raw, err := d.lib.CreateSurface(d.raw, width, height, uint32(format),
		uint32(flags))
	if raw, err = check("create surface", raw, err); err != nil {
		d.log.Debug("gbm: surface creation failed", "width", width,
			"height", height, "format", format, "flags", flags, "err", err)
		return nil, err
	}

	d.children.Add(1)
	return newSurface(d, raw, width, height, format, flags), nil
}

// release is called once by every dependent when it is closed or reclaimed.
func (d *Device) release() { d.children.Add(-1) }

// Close destroys the native device. It fails with ErrInUse while Surfaces
// or Buffers created from the Device are open, and with ErrClosed when
// called again. The file is left open.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disp.closed() {
		return ErrClosed
	}

	if n := d.children.Load(); n > 0 {
		d.log.Warn("gbm: refusing to close device with open dependents",
			"device", uintptr(d.raw), "dependents", n)
		return ErrInUse
	}

	d.cleanup.Stop()
	d.disp.dispose()
	return nil
}
