package gbm

import (
	"sync"
	"sync/atomic"
)

// The native user data slot can only hold an integer, and the native library
// must never hold Go pointers. Attached values therefore live in userData,
// keyed by an id; the id goes into the native slot. The map entry is the
// buffer's reference to the value: deleting it is what detaching means.
var (
	userDataSeq atomic.Uintptr
	userData    sync.Map // uintptr -> any (always a non-nil *T)
)

// releaseUserData drops the buffer's reference to the value attached under
// id. LoadAndDelete lets exactly one caller win, so a value attached once is
// released once whether that happens through SetUserData replacing it or
// through the native library destroying the buffer object.
func releaseUserData(id uintptr) {
	userData.LoadAndDelete(id)
}

// SetUserData attaches v to the buffer object, replacing and releasing any
// value attached before. Passing nil only detaches.
//
// The buffer keeps v reachable until it is replaced or the native buffer
// object is destroyed: by Buffer.Close for a Buffer, or by Surface.Close for
// the buffers a FrontBuffer locks.
//
// SetUserData must not be called concurrently on the same buffer object.
func SetUserData[T any](bo BufferObject, v *T) {
	b := bo.object()
	raw := b.handle()

	if old := b.lib.UserData(raw); old != 0 {
		b.lib.SetUserData(raw, 0, nil)
		releaseUserData(old)
	}

	if v == nil {
		return
	}

	id := userDataSeq.Add(1)
	userData.Store(id, v)
	b.lib.SetUserData(raw, id, releaseUserData)
}

// UserData returns the value attached to the buffer object, or false if
// nothing is attached.
//
// The native slot carries no type information. T must be the type the value
// was attached with; any other T panics in the type assertion. Tracking
// which type goes with which buffer is up to the caller.
func UserData[T any](bo BufferObject) (*T, bool) {
	b := bo.object()

	id := b.lib.UserData(b.handle())
	if id == 0 {
		return nil, false
	}

	v, ok := userData.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*T), true
}
