package gbm

import (
	"runtime"

	"github.com/GreatValueCreamSoda/gogbm/native"
)

// BufferObject is the read-only view shared by Buffer and FrontBuffer.
// What happens to the native buffer object on Close is decided by the
// concrete type: a Buffer destroys it, a FrontBuffer only releases its lock.
//
// Accessors have no error result. Calling one after Close panics with
// ErrClosed rather than touching a handle the native library has freed.
type BufferObject interface {
	Width() uint32
	Height() uint32
	Size() (width, height uint32)
	Stride() uint32
	Format() Format
	Handle() uintptr
	Raw() uintptr

	object() *bufferObject
}

var (
	_ BufferObject = (*Buffer)(nil)
	_ BufferObject = (*FrontBuffer)(nil)
)

// bufferObject carries the accessors. It owns nothing.
type bufferObject struct {
	lib  native.Library
	raw  native.BufferObject
	disp *disposer
}

func (b *bufferObject) object() *bufferObject { return b }

func (b *bufferObject) handle() native.BufferObject {
	if b.disp.closed() {
		panic(ErrClosed)
	}
	return b.raw
}

// Width returns the width of the buffer in pixels.
func (b *bufferObject) Width() uint32 { return b.lib.Width(b.handle()) }

// Height returns the height of the buffer in pixels.
func (b *bufferObject) Height() uint32 { return b.lib.Height(b.handle()) }

// Size returns the width and height of the buffer in pixels.
func (b *bufferObject) Size() (width, height uint32) {
	raw := b.handle()
	return b.lib.Width(raw), b.lib.Height(raw)
}

// Stride returns the number of bytes between the starts of two rows.
func (b *bufferObject) Stride() uint32 { return b.lib.Stride(b.handle()) }

// Format returns the pixel format of the buffer.
func (b *bufferObject) Format() Format { return Format(b.lib.Format(b.handle())) }

// Handle returns the driver specific handle of the buffer memory, usually a
// GEM handle for use with DRM ioctls. It is never dereferenced here.
func (b *bufferObject) Handle() uintptr { return uintptr(b.lib.Handle(b.handle())) }

// Raw returns the address of the native gbm_bo.
func (b *bufferObject) Raw() uintptr { return uintptr(b.handle()) }

// Buffer is a standalone buffer object allocated with Device.Buffer. It owns
// the native buffer object and destroys it on Close, which also releases any
// attached user data.
type Buffer struct {
	bufferObject
	dev     *Device
	cleanup runtime.Cleanup
}

func newBuffer(dev *Device, raw native.BufferObject) *Buffer {
	lib, log := dev.lib, dev.log
	b := &Buffer{dev: dev}
	b.lib, b.raw = lib, raw
	b.disp = newDisposer(func() {
		lib.DestroyBufferObject(raw)
		dev.release()
		log.Debug("gbm: buffer destroyed", "bo", uintptr(raw))
	})
	b.cleanup = track(b, b.disp, log, "buffer")

	log.Debug("gbm: buffer created", "bo", uintptr(raw))
	return b
}

// Device returns the Device the Buffer was allocated from.
func (b *Buffer) Device() *Device { return b.dev }

// Close destroys the native buffer object. A second Close returns ErrClosed.
func (b *Buffer) Close() error {
	if b.disp.closed() {
		return ErrClosed
	}

	b.cleanup.Stop()
	if !b.disp.dispose() {
		return ErrClosed
	}
	return nil
}

// FrontBuffer is the locked front buffer of a Surface. The buffer object
// belongs to the surface; the FrontBuffer only holds the lock on it, and
// Close gives the buffer back to the surface instead of destroying it.
//
// User data attached to a FrontBuffer stays with the surface's buffer object
// and is seen again whenever that buffer object is locked, until the
// Surface is closed.
type FrontBuffer struct {
	bufferObject
	surface *Surface
	cleanup runtime.Cleanup
}

func newFrontBuffer(s *Surface, raw native.BufferObject) *FrontBuffer {
	f := &FrontBuffer{surface: s}
	f.lib, f.raw = s.dev.lib, raw
	f.disp = newDisposer(func() { s.unlock(raw) })
	f.cleanup = track(f, f.disp, s.dev.log, "front buffer")
	return f
}

// Surface returns the Surface the FrontBuffer was locked from.
func (f *FrontBuffer) Surface() *Surface { return f.surface }

// Close releases the lock on the front buffer, letting the next
// LockFrontBuffer on the Surface proceed. A second Close returns ErrClosed.
func (f *FrontBuffer) Close() error {
	if f.disp.closed() {
		return ErrClosed
	}

	f.cleanup.Stop()
	if !f.disp.dispose() {
		return ErrClosed
	}
	return nil
}
