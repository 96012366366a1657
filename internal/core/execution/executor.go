// Package execution runs the per-frame behavior pass over bullet trees.
package execution

import (
	"sync"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/internal/core/observability/log"
	"github.com/zeusync/barrage/pkg/concurrent"
	"github.com/zeusync/barrage/pkg/generic"
)

// Scheduler receives deletion requests raised by behaviors. Requests are
// applied after the pass, never in place.
type Scheduler interface {
	ScheduleDeletion(ref bullet.Ref, useEffect bool)
}

// Job is one tree to execute with its effective time scale.
type Job struct {
	Root      bullet.Index
	TimeScale float64
}

type Stats struct {
	Trees     int
	Entities  int
	Behaviors int
	Deletions int
	Postponed int
}

func (s *Stats) add(o Stats) {
	s.Trees += o.Trees
	s.Entities += o.Entities
	s.Behaviors += o.Behaviors
	s.Deletions += o.Deletions
	s.Postponed += o.Postponed
}

type Executor struct {
	arena   *bullet.Arena
	orders  Scheduler
	workers int
	stacks  *generic.Pool[*[]bullet.Index]

	mu        sync.Mutex
	postponed []Job

	logger log.Log
}

func NewExecutor(arena *bullet.Arena, orders Scheduler, workers int, logger log.Log) *Executor {
	if logger == nil {
		logger = log.NewNop()
	}
	workers = concurrent.Workers(workers)
	return &Executor{
		arena:   arena,
		orders:  orders,
		workers: workers,
		// one walk stack per worker is live at a time
		stacks: generic.NewHotPool(
			func() *[]bullet.Index {
				s := make([]bullet.Index, 0, 64)
				return &s
			},
			func(s *[]bullet.Index) *[]bullet.Index {
				*s = (*s)[:0]
				return s
			},
			workers,
		),
		logger: logger,
	}
}

// Execute runs the tree at root on the calling goroutine.
func (x *Executor) Execute(root bullet.Index, timeScale float64) Stats {
	var st Stats
	st.Trees = 1
	x.walk(root, timeScale, false, &st)
	return st
}

// ExecuteAll runs independent trees on a bounded set of goroutines. Trees
// must not share entities. Subtrees opted out of worker scheduling are
// executed afterwards on the calling goroutine.
func (x *Executor) ExecuteAll(jobs []Job) Stats {
	var total Stats
	x.postponed = x.postponed[:0]

	_ = concurrent.Concurrent(jobs, x.workers, func(j Job) error {
		var st Stats
		x.walk(j.Root, j.TimeScale, true, &st)
		x.mu.Lock()
		total.add(st)
		x.mu.Unlock()
		return nil
	})
	total.Trees = len(jobs)

	// Serial walks never postpone, so the list is stable from here on.
	for _, p := range x.postponed {
		x.walk(p.Root, p.TimeScale, false, &total)
	}
	total.Postponed = len(x.postponed)

	x.logger.Debug("execution pass done",
		log.Int("trees", total.Trees),
		log.Int("entities", total.Entities),
		log.Int("deletions", total.Deletions),
		log.Int("postponed", total.Postponed),
	)
	return total
}

func (x *Executor) walk(root bullet.Index, timeScale float64, parallel bool, st *Stats) {
	a := x.arena
	if !a.Valid(root) {
		return
	}
	sp := x.stacks.Get()
	stack := append(*sp, root)

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e := a.At(i)
		if !e.Initialized() {
			continue
		}
		st.Entities++
		deleted, serial := x.run(i, e, timeScale, st)
		x.place(e)
		if deleted {
			continue
		}

		children := e.Children()
		if serial && parallel {
			x.postpone(children, timeScale)
			continue
		}
		for s := len(children) - 1; s >= 0; s-- {
			if c := children[s]; c != bullet.Nil {
				stack = append(stack, c)
			}
		}
	}

	*sp = stack
	x.stacks.Put(sp)
}

// run executes the behavior list of one entity in order.
func (x *Executor) run(i bullet.Index, e *bullet.Entity, timeScale float64, st *Stats) (deleted, serial bool) {
	throttle := 1.0
	for _, b := range e.Behaviors() {
		r := b.Execute(x.arena, i, timeScale*throttle)
		st.Behaviors++
		if r.Throttle > 0 {
			throttle = r.Throttle
		}
		if r.NoMultithreading {
			serial = true
		}
		if r.Delete {
			x.orders.ScheduleDeletion(x.arena.Ref(i), r.UseDeletionEffect)
			st.Deletions++
			return true, serial
		}
	}
	return false, serial
}

// place refreshes the world transform from the parent, which has already
// been placed this frame.
func (x *Executor) place(e *bullet.Entity) {
	if p := e.Parent(); p != bullet.Nil {
		e.World = x.arena.At(p).World.Mul(e.Local)
		return
	}
	e.World = e.Local
}

func (x *Executor) postpone(children []bullet.Index, timeScale float64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, c := range children {
		if c != bullet.Nil {
			x.postponed = append(x.postponed, Job{Root: c, TimeScale: timeScale})
		}
	}
}
