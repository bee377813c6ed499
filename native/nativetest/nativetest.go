// Package nativetest provides an in-memory native.Library that records every
// call made into it.
//
// Anything the real library would treat as undefined behavior (destroying a
// handle twice, locking a front buffer twice without a release, destroying a
// device that still has surfaces or buffer objects) is recorded as a
// violation instead of crashing, so tests can assert that none happened.
package nativetest

import (
	"fmt"
	"sync"

	"github.com/GreatValueCreamSoda/gogbm/native"
	"golang.org/x/sys/unix"
)

// Op identifies a native call.
type Op int

const (
	CreateDevice Op = iota
	DestroyDevice
	CreateSurface
	DestroySurface
	LockFrontBuffer
	ReleaseBuffer
	CreateBufferObject
	DestroyBufferObject
	SetUserData
	numOps
)

var opNames = [numOps]string{
	"CreateDevice", "DestroyDevice", "CreateSurface", "DestroySurface",
	"LockFrontBuffer", "ReleaseBuffer", "CreateBufferObject",
	"DestroyBufferObject", "SetUserData",
}

func (o Op) String() string {
	if o < 0 || o >= numOps {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Call is one recorded native call and the handle it acted on or produced.
// Failed creations are recorded with a zero handle.
type Call struct {
	Op     Op
	Handle uintptr
}

// SurfaceBuffers is the number of buffer objects in every fake surface's
// swap chain.
const SurfaceBuffers = 2

// BackendName is reported by BackendName for every fake device.
const BackendName = "nativetest"

type device struct {
	fd                   int
	surfaces, standalone int
}

type surface struct {
	dev     native.Device
	buffers []native.BufferObject
	next    int
	locked  native.BufferObject
}

type bufferObject struct {
	dev                          native.Device
	surface                      native.Surface
	width, height, format, flags uint32
	gem                          uint64
	data                         uintptr
	destroy                      native.DestroyFunc
}

// Library is a fake native.Library. The zero value is not usable, use New.
type Library struct {
	mu         sync.Mutex
	next       uintptr
	nextGem    uint64
	devices    map[native.Device]*device
	surfaces   map[native.Surface]*surface
	bos        map[native.BufferObject]*bufferObject
	history    []Call
	failures   map[Op][]unix.Errno
	violations []string
}

// New returns an empty fake library.
func New() *Library {
	return &Library{
		next:     0x1000,
		devices:  make(map[native.Device]*device),
		surfaces: make(map[native.Surface]*surface),
		bos:      make(map[native.BufferObject]*bufferObject),
		failures: make(map[Op][]unix.Errno),
	}
}

var _ native.Library = (*Library)(nil)

// Fail makes the next call of op fail with errno. Failures queue up in the
// order they were added. Only creation and lock operations can fail.
func (l *Library) Fail(op Op, errno unix.Errno) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[op] = append(l.failures[op], errno)
}

// Calls returns how many times op was called, including failed calls.
func (l *Library) Calls(op Op) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for _, c := range l.history {
		if c.Op == op {
			n++
		}
	}
	return n
}

// History returns a copy of every recorded call in order.
func (l *Library) History() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Call(nil), l.history...)
}

// Violations returns every protocol violation observed so far.
func (l *Library) Violations() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.violations...)
}

// Live returns the number of live devices, surfaces and buffer objects.
// Buffer objects owned by a surface's swap chain are included.
func (l *Library) Live() (devices, surfaces, bos int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.devices), len(l.surfaces), len(l.bos)
}

// Locked reports the buffer object currently locked on s, or zero.
func (l *Library) Locked(s native.Surface) native.BufferObject {
	l.mu.Lock()
	defer l.mu.Unlock()
	if sf, ok := l.surfaces[s]; ok {
		return sf.locked
	}
	return 0
}

func (l *Library) record(op Op, handle uintptr) {
	l.history = append(l.history, Call{Op: op, Handle: handle})
}

func (l *Library) violate(format string, args ...any) {
	l.violations = append(l.violations, fmt.Sprintf(format, args...))
}

// takeFailure pops the next injected failure for op. Callers hold l.mu.
func (l *Library) takeFailure(op Op) unix.Errno {
	queue := l.failures[op]
	if len(queue) == 0 {
		return 0
	}
	l.failures[op] = queue[1:]
	return queue[0]
}

func (l *Library) handle() uintptr {
	l.next += 0x10
	return l.next
}

func (l *Library) newBufferObject(dev native.Device, s native.Surface,
	width, height, format, flags uint32) native.BufferObject {
	h := native.BufferObject(l.handle())
	l.nextGem++
	l.bos[h] = &bufferObject{dev: dev, surface: s, width: width,
		height: height, format: format, flags: flags, gem: l.nextGem}
	return h
}

// CreateDevice accepts any character device, mirroring that a DRM node is
// always one. Regular files, pipes and sockets fail with ENODEV.
func (l *Library) CreateDevice(fd int) (native.Device, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if errno := l.takeFailure(CreateDevice); errno != 0 {
		l.record(CreateDevice, 0)
		return 0, errno
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		l.record(CreateDevice, 0)
		return 0, err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		l.record(CreateDevice, 0)
		return 0, unix.ENODEV
	}

	h := native.Device(l.handle())
	l.devices[h] = &device{fd: fd}
	l.record(CreateDevice, uintptr(h))
	return h, nil
}

func (l *Library) DestroyDevice(dev native.Device) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(DestroyDevice, uintptr(dev))

	d, ok := l.devices[dev]
	if !ok {
		l.violate("destroy of unknown or destroyed device %#x", dev)
		return
	}
	if d.surfaces > 0 || d.standalone > 0 {
		l.violate("device %#x destroyed with %d surfaces and %d buffer "+
			"objects alive", dev, d.surfaces, d.standalone)
	}
	delete(l.devices, dev)
}

func (l *Library) BackendName(dev native.Device) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.devices[dev]; !ok {
		l.violate("backend name of unknown device %#x", dev)
		return ""
	}
	return BackendName
}

// IsFormatSupported supports everything except cursor buffers with an
// alpha-less format, which is enough to exercise both answers.
func (l *Library) IsFormatSupported(dev native.Device, format, flags uint32) bool {
	const xrgb8888, cursor = 0x34325258, 1 << 1
	return !(format == xrgb8888 && flags&cursor != 0)
}

func (l *Library) CreateSurface(dev native.Device, width, height, format,
	flags uint32) (native.Surface, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if errno := l.takeFailure(CreateSurface); errno != 0 {
		l.record(CreateSurface, 0)
		return 0, errno
	}

	d, ok := l.devices[dev]
	if !ok {
		l.violate("surface created on unknown device %#x", dev)
		l.record(CreateSurface, 0)
		return 0, unix.EINVAL
	}
	if width == 0 || height == 0 {
		l.record(CreateSurface, 0)
		return 0, unix.EINVAL
	}

	h := native.Surface(l.handle())
	sf := &surface{dev: dev}
	for range SurfaceBuffers {
		sf.buffers = append(sf.buffers,
			l.newBufferObject(dev, h, width, height, format, flags))
	}
	l.surfaces[h] = sf
	d.surfaces++
	l.record(CreateSurface, uintptr(h))
	return h, nil
}

// DestroySurface destroys the surface's swap chain buffers as well, running
// any user data destroy functions attached to them.
func (l *Library) DestroySurface(s native.Surface) {
	l.mu.Lock()
	l.record(DestroySurface, uintptr(s))

	sf, ok := l.surfaces[s]
	if !ok {
		l.violate("destroy of unknown or destroyed surface %#x", s)
		l.mu.Unlock()
		return
	}
	if sf.locked != 0 {
		l.violate("surface %#x destroyed while buffer %#x is locked", s,
			sf.locked)
	}

	var pending []func()
	for _, h := range sf.buffers {
		if fn := l.dropBufferObject(h); fn != nil {
			pending = append(pending, fn)
		}
	}
	delete(l.surfaces, s)
	if d, ok := l.devices[sf.dev]; ok {
		d.surfaces--
	}
	l.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

func (l *Library) HasFreeBuffers(s native.Surface) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	sf, ok := l.surfaces[s]
	if !ok {
		l.violate("free buffer query on unknown surface %#x", s)
		return false
	}
	return sf.locked == 0 || len(sf.buffers) > 1
}

func (l *Library) LockFrontBuffer(s native.Surface) (native.BufferObject, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if errno := l.takeFailure(LockFrontBuffer); errno != 0 {
		l.record(LockFrontBuffer, 0)
		return 0, errno
	}

	sf, ok := l.surfaces[s]
	if !ok {
		l.violate("lock on unknown or destroyed surface %#x", s)
		l.record(LockFrontBuffer, 0)
		return 0, unix.EINVAL
	}
	if sf.locked != 0 {
		l.violate("front buffer of surface %#x locked twice without release",
			s)
	}

	h := sf.buffers[sf.next%len(sf.buffers)]
	sf.next++
	sf.locked = h
	l.record(LockFrontBuffer, uintptr(h))
	return h, nil
}

func (l *Library) ReleaseBuffer(s native.Surface, bo native.BufferObject) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(ReleaseBuffer, uintptr(bo))

	sf, ok := l.surfaces[s]
	if !ok {
		l.violate("release on unknown or destroyed surface %#x", s)
		return
	}
	if sf.locked != bo {
		l.violate("release of buffer %#x which is not the locked buffer "+
			"%#x of surface %#x", bo, sf.locked, s)
		return
	}
	sf.locked = 0
}

func (l *Library) CreateBufferObject(dev native.Device, width, height, format,
	flags uint32) (native.BufferObject, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if errno := l.takeFailure(CreateBufferObject); errno != 0 {
		l.record(CreateBufferObject, 0)
		return 0, errno
	}

	d, ok := l.devices[dev]
	if !ok {
		l.violate("buffer object created on unknown device %#x", dev)
		l.record(CreateBufferObject, 0)
		return 0, unix.EINVAL
	}
	if width == 0 || height == 0 {
		l.record(CreateBufferObject, 0)
		return 0, unix.EINVAL
	}

	h := l.newBufferObject(dev, 0, width, height, format, flags)
	d.standalone++
	l.record(CreateBufferObject, uintptr(h))
	return h, nil
}

func (l *Library) DestroyBufferObject(bo native.BufferObject) {
	l.mu.Lock()
	l.record(DestroyBufferObject, uintptr(bo))

	b, ok := l.bos[bo]
	if !ok {
		l.violate("destroy of unknown or destroyed buffer object %#x", bo)
		l.mu.Unlock()
		return
	}
	if b.surface != 0 {
		l.violate("destroy of buffer object %#x owned by surface %#x", bo,
			b.surface)
		l.mu.Unlock()
		return
	}

	fn := l.dropBufferObject(bo)
	if d, ok := l.devices[b.dev]; ok {
		d.standalone--
	}
	l.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// dropBufferObject forgets bo and returns its pending user data destroy call,
// to be run once l.mu is released. Callers hold l.mu.
func (l *Library) dropBufferObject(bo native.BufferObject) func() {
	b := l.bos[bo]
	delete(l.bos, bo)
	if b.destroy == nil {
		return nil
	}
	destroy, data := b.destroy, b.data
	return func() { destroy(data) }
}

func (l *Library) lookup(bo native.BufferObject) *bufferObject {
	b, ok := l.bos[bo]
	if !ok {
		l.violate("access to unknown or destroyed buffer object %#x", bo)
		return &bufferObject{}
	}
	return b
}

func (l *Library) Width(bo native.BufferObject) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookup(bo).width
}

func (l *Library) Height(bo native.BufferObject) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookup(bo).height
}

// Stride is four bytes per pixel rounded up to a 64 byte pitch.
func (l *Library) Stride(bo native.BufferObject) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return (l.lookup(bo).width*4 + 63) &^ 63
}

func (l *Library) Format(bo native.BufferObject) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookup(bo).format
}

func (l *Library) Handle(bo native.BufferObject) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookup(bo).gem
}

func (l *Library) SetUserData(bo native.BufferObject, data uintptr,
	destroy native.DestroyFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(SetUserData, uintptr(bo))

	b := l.lookup(bo)
	b.data, b.destroy = data, destroy
}

func (l *Library) UserData(bo native.BufferObject) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookup(bo).data
}
