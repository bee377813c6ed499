package gbm

import (
	"runtime"
	"sync"

	"github.com/GreatValueCreamSoda/gogbm/blockingpool"
	"github.com/GreatValueCreamSoda/gogbm/native"
)

// frontToken is the single token in a Surface's front pool. Whoever holds it
// may have the native front buffer locked.
type frontToken struct{}

// Surface wraps a native gbm_surface.
//
// The native library leaves it undefined what happens when the front buffer
// is locked twice without a release in between. A Surface therefore hands
// out at most one FrontBuffer at a time: LockFrontBuffer waits for the
// outstanding one to be closed, TryLockFrontBuffer fails instead.
//
// All methods are safe for concurrent use.
type Surface struct {
	dev           *Device
	raw           native.Surface
	width, height uint32
	format        Format
	flags         BufferFlags

	front blockingpool.BlockingPool[frontToken]
	// closeMu serializes Close so that a racing second Close sees ErrClosed
	// rather than the token held by the first.
	closeMu sync.Mutex

	disp    *disposer
	cleanup runtime.Cleanup
}

func newSurface(dev *Device, raw native.Surface, width, height uint32,
	format Format, flags BufferFlags) *Surface {
	s := &Surface{dev: dev, raw: raw, width: width, height: height,
		format: format, flags: flags}
	s.front = blockingpool.NewBlockingPool[frontToken](1)
	s.front.Put(frontToken{})

	lib, log := dev.lib, dev.log
	s.disp = newDisposer(func() {
		lib.DestroySurface(raw)
		dev.release()
		log.Debug("gbm: surface destroyed", "surface", uintptr(raw))
	})
	s.cleanup = track(s, s.disp, log, "surface")

	log.Debug("gbm: surface created", "surface", uintptr(raw),
		"width", width, "height", height, "format", format, "flags", flags)
	return s
}

// handle returns the native handle, panicking if the Surface was closed.
func (s *Surface) handle() native.Surface {
	if s.disp.closed() {
		panic(ErrClosed)
	}
	return s.raw
}

// Device returns the Device the Surface was created from.
func (s *Surface) Device() *Device { return s.dev }

// Raw returns the address of the native gbm_surface, for example to create
// an EGL window surface from it. It is valid until Close.
func (s *Surface) Raw() uintptr { return uintptr(s.handle()) }

// Size returns the width and height the Surface was created with.
func (s *Surface) Size() (width, height uint32) { return s.width, s.height }

// Format returns the pixel format the Surface was created with.
func (s *Surface) Format() Format { return s.format }

// Flags returns the usage flags the Surface was created with.
func (s *Surface) Flags() BufferFlags { return s.flags }

// HasFreeBuffers reports whether the native surface has a buffer left to
// render into. It turns false when too many front buffers are held by the
// display and not yet released.
func (s *Surface) HasFreeBuffers() bool {
	return s.dev.lib.HasFreeBuffers(s.handle())
}

// LockFrontBuffer locks the buffer that was most recently rendered into the
// surface and returns it as a FrontBuffer. Closing the FrontBuffer releases
// the lock.
//
// If another FrontBuffer of this Surface is outstanding, LockFrontBuffer
// blocks until it is closed. There is no timeout; use TryLockFrontBuffer to
// build one.
//
// If nothing was rendered into the surface yet, the native lock fails and an
// *Error is returned; the Surface stays unlocked.
func (s *Surface) LockFrontBuffer() (*FrontBuffer, error) {
	s.front.Get()
	return s.lockFrontBuffer()
}

// TryLockFrontBuffer is LockFrontBuffer without waiting. It returns
// ErrFrontBufferBusy while another FrontBuffer is outstanding.
func (s *Surface) TryLockFrontBuffer() (*FrontBuffer, error) {
	if _, ok := s.front.TryGet(); !ok {
		return nil, ErrFrontBufferBusy
	}
	return s.lockFrontBuffer()
}

// lockFrontBuffer runs while holding the front token. The token goes back
// into the pool on every failure path and stays out only when a FrontBuffer
// is returned.
func (s *Surface) lockFrontBuffer() (*FrontBuffer, error) {
	if s.disp.closed() {
		s.front.Put(frontToken{})
		return nil, ErrClosed
	}

	raw, err := s.dev.lib.LockFrontBuffer(s.raw)
	if raw, err = check("lock front buffer", raw, err); err != nil {
		s.front.Put(frontToken{})
		return nil, err
	}

	return newFrontBuffer(s, raw), nil
}

// unlock is run exactly once by the FrontBuffer holding the token.
func (s *Surface) unlock(bo native.BufferObject) {
	s.dev.lib.ReleaseBuffer(s.raw, bo)
	s.front.Put(frontToken{})
}

// Close destroys the native surface together with the buffers it owns. It
// fails with ErrInUse while a FrontBuffer is outstanding, and with ErrClosed
// when called again.
func (s *Surface) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if s.disp.closed() {
		return ErrClosed
	}

	if _, ok := s.front.TryGet(); !ok {
		s.dev.log.Warn("gbm: refusing to close surface with a locked front "+
			"buffer", "surface", uintptr(s.raw))
		return ErrInUse
	}
	defer s.front.Put(frontToken{})

	s.cleanup.Stop()
	s.disp.dispose()
	return nil
}
