// This file provides the scratch-slot pool used by dense coded multiplication.

package buffer

import (
	"math/bits"
	"sync"
	"unsafe"

	apperrors "github.com/agbru/pseries/internal/errors"
)

// Slot is one accumulator cell of the dense strategy: a lazily initialized
// coefficient and a flag telling whether any product landed in it.
type Slot[C any] struct {
	Cf      C
	Touched bool
}

// slotSizes are the pooled size classes, powers of 4 from 4^5 to 4^15 slots.
// Larger requests are allocated directly and never pooled.
var slotSizes = [...]int{
	1 << 10, 1 << 12, 1 << 14, 1 << 16, 1 << 18, 1 << 20,
	1 << 22, 1 << 24, 1 << 26, 1 << 28, 1 << 30,
}

// poolIndex returns the size class for size, or -1 when it is too large.
//
// Classes are 4^(i+5), so bits.Len(size-1) maps directly to the index.
func poolIndex(size int) int {
	if size > slotSizes[len(slotSizes)-1] {
		return -1
	}
	if size <= 1 {
		return 0
	}
	idx := (bits.Len(uint(size-1)) - 9) / 2
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Pool hands out zeroed slot slices under a byte budget. Slices are recycled
// by size class. A Pool is safe for concurrent use: concurrent
// multiplications share the budget.
type Pool[C any] struct {
	pools    [len(slotSizes)]sync.Pool
	mu       sync.Mutex
	budget   uint64
	inUse    uint64
	slotSize uint64
}

// New returns a pool that never holds more than budget bytes of slots at once.
func New[C any](budget uint64) *Pool[C] {
	p := &Pool[C]{budget: budget, slotSize: uint64(unsafe.Sizeof(Slot[C]{}))}
	for i := range p.pools {
		size := slotSizes[i]
		p.pools[i].New = func() any { return make([]Slot[C], size) }
	}
	return p
}

// Budget returns the configured byte budget.
func (p *Pool[C]) Budget() uint64 { return p.budget }

// SlotBytes returns the size of one slot.
func (p *Pool[C]) SlotBytes() uint64 { return p.slotSize }

// InUse returns the bytes currently handed out.
func (p *Pool[C]) InUse() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Fits reports whether n slots would fit the budget if nothing else were in
// use.
func (p *Pool[C]) Fits(n int64) bool {
	return n >= 0 && uint64(n) <= p.budget/p.slotSize
}

// Acquire returns n zeroed slots. When the request does not fit what remains
// of the budget it returns a MemoryError and the caller must choose another
// strategy.
//
// The returned slice should be released with Release, preferably with defer:
//
//	slots, err := pool.Acquire(n)
//	if err != nil { ... }
//	defer pool.Release(slots)
func (p *Pool[C]) Acquire(n int) ([]Slot[C], error) {
	bytes := uint64(n) * p.slotSize
	p.mu.Lock()
	if !p.Fits(int64(n)) || bytes > p.budget-p.inUse {
		available := p.budget - p.inUse
		p.mu.Unlock()
		return nil, apperrors.MemoryError{Requested: bytes, Available: available, Limit: p.budget}
	}
	p.inUse += bytes
	p.mu.Unlock()

	idx := poolIndex(n)
	if idx < 0 {
		return make([]Slot[C], n), nil
	}
	slots := p.pools[idx].Get().([]Slot[C])
	clear(slots)
	return slots[:n], nil
}

// Release returns slots obtained from Acquire. Safe to call with nil.
func (p *Pool[C]) Release(slots []Slot[C]) {
	if slots == nil {
		return
	}
	p.mu.Lock()
	p.inUse -= uint64(len(slots)) * p.slotSize
	p.mu.Unlock()

	c := cap(slots)
	idx := poolIndex(c)
	if idx >= 0 && slotSizes[idx] == c {
		p.pools[idx].Put(slots[:c])
	}
}
