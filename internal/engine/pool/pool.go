// =============================
// Matchcore Order Pool
// =============================
// This file implements the order-lifetime allocator: a pre-sized, contiguous
// block of Order slots with O(1) acquire/release via a free-list stack.
//
// How it works:
// - Pool pre-allocates capacity Orders once, at construction.
// - acquire pops a free slot index and constructs an Order in place.
// - release destroys (zeroes) the Order and pushes its slot back.
// - Handles, not pointers, are what the book package stores long-term —
//   see Handle below.
//
// No reallocation and no growth happen after New returns.

package pool

import (
	"errors"
	"time"
)

// Handle identifies a slot in a Pool. It is the only reference the book
// package is allowed to hold onto an Order between calls.
type Handle uint32

// NullHandle is the sentinel for "no order" — the empty ends of a FIFO, or
// a cancel lookup that found nothing.
const NullHandle Handle = ^Handle(0)

// ErrPoolExhausted is returned by Acquire when the free list is empty.
var ErrPoolExhausted = errors.New("pool: exhausted")

// Pool is a fixed-capacity, contiguous allocator for Order values.
type Pool struct {
	storage []Order
	free    []Handle // stack of free slot indices; top = free[len-1]
	size    int
}

// New pre-allocates a Pool with room for exactly capacity orders. Slot 0 is
// the first one dispensed.
func New(capacity int) *Pool {
	p := &Pool{
		storage: make([]Order, capacity),
		free:    make([]Handle, capacity),
	}
	for i := 0; i < capacity; i++ {
		// Fill so that free[last] == 0: Acquire pops from the back, so
		// slot 0 comes out first.
		p.free[i] = Handle(capacity - 1 - i)
	}
	return p
}

// Acquire pops a free slot, constructs an Order in it, and returns a pointer
// into the pool's backing storage together with the handle recorded on the
// order itself. Fails with ErrPoolExhausted if no slots remain; the book is
// never touched in that case.
func (p *Pool) Acquire(id OrderID, side Side, typ OrderType, price Price, qty Quantity) (*Order, error) {
	n := len(p.free)
	if n == 0 {
		return nil, ErrPoolExhausted
	}
	h := p.free[n-1]
	p.free = p.free[:n-1]
	p.size++

	o := &p.storage[h]
	*o = Order{
		ID:        id,
		Side:      side,
		Type:      typ,
		Price:     price,
		Quantity:  qty,
		Remaining: qty,
		Timestamp: time.Now(),
		handle:    h,
		Prev:      NullHandle,
		Next:      NullHandle,
	}
	return o, nil
}

// Release destroys the order at h and returns its slot to the free list.
// Releasing NullHandle is a no-op. Releasing an unknown, foreign, or
// already-released handle is a programming error; this is not detected
// or recovered from (spec.md §7).
func (p *Pool) Release(h Handle) {
	if h == NullHandle {
		return
	}
	p.storage[h] = Order{}
	p.free = append(p.free, h)
	p.size--
}

// Get resolves a handle to its order. Behavior is undefined for a handle
// that was never acquired or has since been released.
func (p *Pool) Get(h Handle) *Order {
	return &p.storage[h]
}

// Size returns the number of currently live (acquired, not yet released)
// orders.
func (p *Pool) Size() int { return p.size }

// Capacity returns the fixed slot count the pool was constructed with.
func (p *Pool) Capacity() int { return len(p.storage) }

// Available returns the number of free slots. Size()+Available() ==
// Capacity() always holds.
func (p *Pool) Available() int { return len(p.free) }
