package gbm

import (
	"log/slog"
	"runtime"
	"sync/atomic"
)

// disposer runs the function that gives a native handle back to the library
// at most once, whether that happens through Close or through the runtime
// cleanup of a wrapper that was dropped without Close.
type disposer struct {
	done atomic.Bool
	fn   func()
}

func newDisposer(fn func()) *disposer { return &disposer{fn: fn} }

// dispose runs fn if nothing ran it before and reports whether it did.
func (d *disposer) dispose() bool {
	if d.done.Swap(true) {
		return false
	}
	d.fn()
	return true
}

func (d *disposer) closed() bool { return d.done.Load() }

// track arranges for d to be disposed once owner becomes unreachable. The
// cleanup closure must not reference owner, which is why everything it needs
// lives in d.
func track[T any](owner *T, d *disposer, log *slog.Logger,
	kind string) runtime.Cleanup {
	return runtime.AddCleanup(owner, func(d *disposer) {
		if d.dispose() {
			log.Warn("gbm: reclaimed a resource that was never closed",
				"kind", kind)
		}
	}, d)
}
