// Package deferred queues structural mutations raised during a parallel
// pass and applies them once the pass is over.
package deferred

import (
	"fmt"
	"sync"

	"github.com/gammazero/deque"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/internal/core/observability/log"
)

type shard struct {
	mu      sync.Mutex
	deletes deque.Deque[DeleteOrder]
	ops     deque.Deque[OperationOrder]
}

type DrainStats struct {
	Operations int // operation orders applied
	Degraded   int // operation orders with an unknown id, turned into effects
	Deleted    int // delete orders applied
	Effects    int // deletions converted into effects
	Freed      int // entities freed
	Stale      int // orders for freed, recycled or protected entities
}

type Queue struct {
	arena  *bullet.Arena
	owner  Owner
	shards []*shard

	mu         sync.RWMutex
	operations map[OperationID]Operation
	names      map[OperationID]string

	// drain scratch, reused across frames
	deletes []DeleteOrder
	ops     []OperationOrder

	logger log.Log
}

func NewQueue(arena *bullet.Arena, owner Owner, shards int, logger log.Log) *Queue {
	if logger == nil {
		logger = log.NewNop()
	}
	if shards < 1 {
		shards = 1
	}
	q := &Queue{
		arena:      arena,
		owner:      owner,
		shards:     make([]*shard, shards),
		operations: make(map[OperationID]Operation),
		names:      make(map[OperationID]string),
		logger:     logger,
	}
	for i := range q.shards {
		s := &shard{}
		s.deletes.SetBaseCap(64)
		s.ops.SetBaseCap(16)
		q.shards[i] = s
	}
	return q
}

// RegisterOperation makes op available under name. Registration is not
// meant to race with PerformScheduled.
func (q *Queue) RegisterOperation(name string, op Operation) (OperationID, error) {
	if name == "" {
		return 0, ErrInvalidName
	}
	id := IDOf(name)
	q.mu.Lock()
	defer q.mu.Unlock()
	if prev, ok := q.names[id]; ok {
		return 0, fmt.Errorf("%w: %q (id %x, registered as %q)", ErrOperationExists, name, uint64(id), prev)
	}
	q.operations[id] = op
	q.names[id] = name
	return id, nil
}

func (q *Queue) Operation(id OperationID) (Operation, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	op, ok := q.operations[id]
	return op, ok
}

func (q *Queue) shardFor(i bullet.Index) *shard {
	return q.shards[int(i)%len(q.shards)]
}

// ScheduleDeletion is safe to call from any goroutine.
func (q *Queue) ScheduleDeletion(ref bullet.Ref, useEffect bool) {
	if ref.Index < 0 {
		return
	}
	s := q.shardFor(ref.Index)
	s.mu.Lock()
	s.deletes.PushBack(DeleteOrder{Ref: ref, UseDeletionEffect: useEffect})
	s.mu.Unlock()
}

// ScheduleOperation is safe to call from any goroutine.
func (q *Queue) ScheduleOperation(ref bullet.Ref, id OperationID) {
	if ref.Index < 0 {
		return
	}
	s := q.shardFor(ref.Index)
	s.mu.Lock()
	s.ops.PushBack(OperationOrder{Ref: ref, Operation: id})
	s.mu.Unlock()
}

// Pending counts queued orders of both kinds.
func (q *Queue) Pending() int {
	n := 0
	for _, s := range q.shards {
		s.mu.Lock()
		n += s.deletes.Len() + s.ops.Len()
		s.mu.Unlock()
	}
	return n
}

// PerformScheduled applies every queued order, shard by shard: operation
// orders first, then deletions. It must run between the execution and
// collision passes, on one goroutine.
func (q *Queue) PerformScheduled() DrainStats {
	var st DrainStats
	for _, s := range q.shards {
		q.ops, q.deletes = q.ops[:0], q.deletes[:0]
		s.mu.Lock()
		for s.ops.Len() > 0 {
			q.ops = append(q.ops, s.ops.PopFront())
		}
		for s.deletes.Len() > 0 {
			q.deletes = append(q.deletes, s.deletes.PopFront())
		}
		s.mu.Unlock()

		for _, o := range q.ops {
			q.operate(o, &st)
		}
		for _, d := range q.deletes {
			q.remove(d, &st)
		}
	}
	clear(q.ops)
	clear(q.deletes)

	if st.Operations+st.Deleted+st.Stale > 0 {
		q.logger.Debug("deferred orders drained",
			log.Int("operations", st.Operations),
			log.Int("degraded", st.Degraded),
			log.Int("deleted", st.Deleted),
			log.Int("effects", st.Effects),
			log.Int("freed", st.Freed),
			log.Int("stale", st.Stale),
		)
	}
	return st
}

func (q *Queue) protected(ref bullet.Ref) bool {
	return !q.arena.Alive(ref) || q.owner.IsRoot(ref.Index)
}

func (q *Queue) operate(o OperationOrder, st *DrainStats) {
	a := q.arena
	if q.protected(o.Ref) {
		st.Stale++
		return
	}
	op, ok := q.Operation(o.Operation)
	if !ok {
		st.Degraded++
		q.remove(DeleteOrder{Ref: o.Ref, UseDeletionEffect: true}, st)
		return
	}

	old := o.Ref.Index
	parent, slot := a.Detach(old)
	parentRef := a.Ref(parent)

	result := op.Replace(a, old)
	st.Operations++

	if result != old && a.Valid(result) && a.Alive(o.Ref) && a.Root(result) == old {
		// A promoted descendant keeps its placement relative to the slot.
		local := a.WorldOf(result)
		a.Detach(result)
		a.SetLocal(result, local)
	}
	if result != old && a.Alive(o.Ref) {
		if p, _ := a.Parent(old); p == bullet.Nil {
			st.Freed += a.FreeSubtree(old)
		}
	}
	if !a.Valid(result) {
		return
	}
	if parent == bullet.Nil {
		a.RefreshWorld(result)
		return
	}
	if !a.Alive(parentRef) {
		// The operation removed the attachment point itself.
		if p, _ := a.Parent(result); p == bullet.Nil {
			st.Freed += a.FreeSubtree(result)
		}
		return
	}
	a.SetChild(parent, slot, result)
	a.RefreshWorld(result)
}

func (q *Queue) remove(d DeleteOrder, st *DrainStats) {
	if q.protected(d.Ref) {
		st.Stale++
		return
	}
	st.Deleted++
	if d.UseDeletionEffect && q.owner.AdoptEffect(d.Ref.Index) {
		st.Effects++
		return
	}
	st.Freed += q.arena.FreeSubtree(d.Ref.Index)
}
