package engine

import "sync/atomic"

// ring is a single-producer single-consumer buffer of duty values. One
// goroutine (or the main loop) pushes and one consumer (or interrupt) pops;
// neither side takes a lock.
type ring struct {
	buf  []uint16
	mask uint32
	head atomic.Uint32 // next slot to read
	tail atomic.Uint32 // next slot to write
}

// newRing creates a ring with capacity rounded up to a power of two.
func newRing(capacity int) *ring {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &ring{
		buf:  make([]uint16, size),
		mask: uint32(size - 1),
	}
}

// push adds v, returning false if the ring is full.
func (r *ring) push(v uint16) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == uint32(len(r.buf)) {
		return false
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return true
}

// pop removes the oldest value, returning false if the ring is empty.
func (r *ring) pop() (uint16, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return 0, false
	}
	v := r.buf[head&r.mask]
	r.head.Store(head + 1)
	return v, true
}

// len returns the number of buffered values.
func (r *ring) len() int {
	return int(r.tail.Load() - r.head.Load())
}

// cap returns the ring capacity.
func (r *ring) cap() int {
	return len(r.buf)
}
