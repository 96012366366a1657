// Package bullet implements the bullet entity arena: a fixed pool of
// entity slots linked into trees, with per-entity behavior lists.
//
// Structural state (allocation, parent and child links) is mutated only
// from the sequential phases of a frame. Behaviors running in parallel
// may touch their own entity's transform and attributes and nothing else.
package bullet

import (
	"github.com/gammazero/deque"

	"github.com/zeusync/barrage/internal/core/observability/log"
)

type Arena struct {
	entities []Entity
	freeList deque.Deque[Index]

	live        int
	highWater   int
	allocations uint64
	exhausted   uint64

	logger log.Log
}

// NewArena preallocates capacity entity slots. Capacity never changes.
func NewArena(capacity int, logger log.Log) *Arena {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &Arena{
		entities: make([]Entity, capacity),
		logger:   logger,
	}
	for i := range a.entities {
		a.entities[i].reset()
		a.freeList.PushBack(Index(i))
	}
	return a
}

// AllocateOne claims a free slot. When the arena is full it returns
// (Nil, false); callers drop whatever they were building.
func (a *Arena) AllocateOne() (Index, bool) {
	if a.freeList.Len() == 0 {
		a.exhausted++
		return Nil, false
	}
	i := a.freeList.PopFront()
	e := &a.entities[i]
	e.initialized = true
	a.live++
	a.allocations++
	if int(i) >= a.highWater {
		a.highWater = int(i) + 1
	}
	return i, true
}

// free releases a single slot. The caller has already unlinked it.
func (a *Arena) free(i Index) {
	e := &a.entities[i]
	for _, b := range e.behaviors {
		if d, ok := b.(Disposer); ok {
			d.Dispose()
		}
	}
	e.reset()
	e.initialized = false
	e.generation++
	a.live--
	a.freeList.PushBack(i)
}

// Valid reports whether i addresses an allocated entity.
func (a *Arena) Valid(i Index) bool {
	return i >= 0 && int(i) < len(a.entities) && a.entities[i].initialized
}

// Ref captures i together with its current generation.
func (a *Arena) Ref(i Index) Ref {
	if i < 0 || int(i) >= len(a.entities) {
		return NilRef
	}
	return Ref{Index: i, Generation: a.entities[i].generation}
}

// Alive reports whether r still names the entity it was taken from.
func (a *Arena) Alive(r Ref) bool {
	return a.Valid(r.Index) && a.entities[r.Index].generation == r.Generation
}

// At returns the slot for i without checking that it is allocated.
func (a *Arena) At(i Index) *Entity {
	return &a.entities[i]
}

// Get returns the entity for i or nil if i is out of range or free.
func (a *Arena) Get(i Index) *Entity {
	if !a.Valid(i) {
		return nil
	}
	return &a.entities[i]
}

func (a *Arena) Capacity() int { return len(a.entities) }
func (a *Arena) Live() int     { return a.live }

// HighWater is one past the largest index ever allocated; scans over
// [0, HighWater) see every live entity.
func (a *Arena) HighWater() int { return a.highWater }

// Allocations counts successful allocations since creation.
func (a *Arena) Allocations() uint64 { return a.allocations }

// Exhausted counts allocation attempts that found the arena full.
func (a *Arena) Exhausted() uint64 { return a.exhausted }

// Each calls fn for every live entity in index order until fn returns false.
func (a *Arena) Each(fn func(i Index, e *Entity) bool) {
	for i := 0; i < a.highWater; i++ {
		e := &a.entities[i]
		if !e.initialized {
			continue
		}
		if !fn(Index(i), e) {
			return
		}
	}
}
