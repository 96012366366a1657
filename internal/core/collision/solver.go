// Package collision tests live bullets against registered world colliders
// once per frame.
package collision

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/internal/core/config"
	"github.com/zeusync/barrage/internal/core/geom"
	"github.com/zeusync/barrage/internal/core/observability/log"
	"github.com/zeusync/barrage/pkg/concurrent"
	"github.com/zeusync/barrage/pkg/container"
)

type Stats struct {
	Tested   int
	Skipped  int // asleep and not due for a wake check
	Hits     int
	Slept    int
	Woken    int
	Parallel bool
}

type counters struct {
	tested, skipped, hits, slept, woken atomic.Int64
}

func (c *counters) add(s Stats) {
	c.tested.Add(int64(s.Tested))
	c.skipped.Add(int64(s.Skipped))
	c.hits.Add(int64(s.Hits))
	c.slept.Add(int64(s.Slept))
	c.woken.Add(int64(s.Woken))
}

func (c *counters) stats() Stats {
	return Stats{
		Tested:  int(c.tested.Load()),
		Skipped: int(c.skipped.Load()),
		Hits:    int(c.hits.Load()),
		Slept:   int(c.slept.Load()),
		Woken:   int(c.woken.Load()),
	}
}

type Solver struct {
	arena *bullet.Arena
	table *LayerTable

	// mu is held for reading by the pass and for writing by registration.
	mu      sync.RWMutex
	objects map[ObjectLayer]*container.List[*Collider]
	locks   []sync.Mutex

	parallelCutoff int
	sleepSafety    float64
	wakePeriod     uint64
	workers        int

	logger log.Log
}

func NewSolver(arena *bullet.Arena, cfg config.CollisionConfig, logger log.Log) *Solver {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Solver{
		arena:          arena,
		table:          NewLayerTable(cfg.Layers),
		objects:        make(map[ObjectLayer]*container.List[*Collider]),
		locks:          make([]sync.Mutex, max(cfg.LockShards, 1)),
		parallelCutoff: cfg.ParallelCutoff,
		sleepSafety:    cfg.SleepSafety,
		wakePeriod:     uint64(max(cfg.WakePeriod, 1)),
		workers:        concurrent.Workers(cfg.Workers),
		logger:         logger,
	}
	for _, layer := range s.table.Objects() {
		s.objects[layer] = container.NewList[*Collider]()
	}
	return s
}

func (s *Solver) Layers() *LayerTable { return s.table }

// RegisterObject adds c to layer. The returned handle unregisters it.
func (s *Solver) RegisterObject(c *Collider, layer ObjectLayer) (Handle, error) {
	if !s.table.Known(layer) {
		return Handle{}, fmt.Errorf("%w: %d", ErrUnknownLayer, layer)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.lock != nil {
		return Handle{}, fmt.Errorf("%w: collider %d", ErrRegistered, c.id)
	}
	c.lock = &s.locks[c.id%uint64(len(s.locks))]
	node := s.objects[layer].PushBack(c)
	return Handle{layer: layer, node: node}, nil
}

// UnregisterObject removes a registration. Unregistering twice is a no-op.
// Hits recorded before removal stay drainable, and the collider may be
// registered again afterwards.
func (s *Solver) UnregisterObject(h Handle) bool {
	if h.node == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.objects[h.layer]
	if list == nil || !list.Remove(h.node) {
		return false
	}
	h.node.Value.lock = nil
	return true
}

// Colliders counts registered colliders.
func (s *Solver) Colliders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, list := range s.objects {
		n += list.Len()
	}
	return n
}

// ExecuteCollisionAll tests every live colliding bullet against the
// colliders its layer reaches. It runs after deferred orders are drained,
// when world transforms and tree structure are settled for the frame.
func (s *Solver) ExecuteCollisionAll(frame uint64) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.arena.HighWater()
	if s.workers > 1 && s.parallelCutoff > 0 && s.arena.Live() >= s.parallelCutoff {
		var c counters
		concurrent.ForEachChunk(n, s.workers, func(start, end int) {
			c.add(s.scan(start, end, frame))
		})
		st := c.stats()
		st.Parallel = true
		return st
	}
	return s.scan(0, n, frame)
}

func (s *Solver) scan(start, end int, frame uint64) Stats {
	var st Stats
	for idx := start; idx < end; idx++ {
		i := bullet.Index(idx)
		e := s.arena.At(i)
		col := &e.Collision
		if !e.Initialized() || col.Layer == 0 || col.Shape.Kind == geom.ShapeNone {
			continue
		}
		reach := s.table.Reach(BulletLayer(col.Layer))
		if len(reach) == 0 {
			continue
		}
		if col.Sleeping() && uint64(idx)%s.wakePeriod != frame%s.wakePeriod {
			st.Skipped++
			continue
		}
		st.Tested++

		center := e.World.Origin()
		shape := col.Shape.Scaled(e.World.ScaleFactor())
		minSep := math.Inf(1)
		for _, layer := range reach {
			s.objects[layer].Each(func(n *container.Node[*Collider]) bool {
				c := n.Value
				sep, ok := geom.Separation(shape, center, c.shape, c.center)
				if !ok {
					return true
				}
				minSep = min(minSep, sep)
				if sep <= 0 {
					c.record(Hit{
						Ref:        s.arena.Ref(i),
						Frame:      frame,
						Separation: sep,
						Phase:      e.Phase,
						Graze:      e.Graze,
						Power:      e.Power,
						Health:     e.Health,
					})
					st.Hits++
				}
				return true
			})
		}

		switch {
		case col.CanSleep && minSep > s.sleepSafety:
			if !col.Sleeping() {
				col.SetSleeping(true)
				st.Slept++
			}
		case col.Sleeping():
			col.SetSleeping(false)
			st.Woken++
		}
	}
	return st
}
