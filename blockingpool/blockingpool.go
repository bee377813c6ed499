package blockingpool

// BlockingPool is a generic, channel-based pool of tokens or objects with
// blocking semantics for taking them out.
//
// The pool has a fixed capacity, specified at creation time. With a capacity
// of one and a single token put into it the pool acts as a lock whose holder
// is whoever currently owns the token:
//
//   - Get() blocks until an object is available in the pool.
//   - TryGet() returns immediately, reporting whether it got an object.
//   - Put() hands an object back, blocking only if the pool is already full.
//
// Important characteristics:
//   - Get() will block indefinitely if the pool is empty, until a new item is
//     .Put() into the pool. There is no timeout or cancellation.
//   - Waiters are served by the Go runtime's channel queue. Exactly one waiter
//     receives each object put back.
type BlockingPool[T any] struct {
	pool chan T
}

// NewBlockingPool creates a new, empty BlockingPool with the specified
// capacity.
//
// The capacity determines the maximum number of objects that can sit in the
// pool at once. Callers fill it with .Put() before the first .Get().
func NewBlockingPool[T any](capacity int) BlockingPool[T] {
	return BlockingPool[T]{pool: make(chan T, capacity)}
}

// Get acquires an object from the pool, blocking until one is available.
//
// It is the caller's responsibility to eventually call .Put() with the
// returned object (or a replacement) to release it back to the pool.
func (p *BlockingPool[T]) Get() T { return <-p.pool }

// TryGet acquires an object from the pool only if one is available right
// now. ok is false when the pool is empty.
func (p *BlockingPool[T]) TryGet() (obj T, ok bool) {
	select {
	case obj = <-p.pool:
		return obj, true
	default:
		return obj, false
	}
}

// Put returns an object to the pool, blocking until there is space available.
//
// After a successful Put(), the object becomes available to exactly one
// .Get() or .TryGet() call.
func (p *BlockingPool[T]) Put(obj T) { p.pool <- obj }

// Len returns the number of objects currently in the pool.
func (p *BlockingPool[T]) Len() int { return len(p.pool) }
