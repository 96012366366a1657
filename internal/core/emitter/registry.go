package emitter

import (
	"fmt"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/internal/core/config"
	"github.com/zeusync/barrage/internal/core/observability/log"
	"github.com/zeusync/barrage/pkg/container"
)

// Registry tracks every live emitter and the primordial one that adopts
// orphaned bullets and deletion effects.
type Registry struct {
	arena      *bullet.Arena
	emitters   *container.List[*Emitter]
	roots      map[bullet.Index]*Emitter
	primordial *Emitter

	refreshInterval uint64
	holeScanLimit   int
	effectFrames    int

	logger log.Log
}

func NewRegistry(arena *bullet.Arena, cfg config.EmitterConfig, logger log.Log) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{
		arena:           arena,
		emitters:        container.NewList[*Emitter](),
		roots:           make(map[bullet.Index]*Emitter),
		refreshInterval: uint64(max(cfg.RefreshInterval, 1)),
		holeScanLimit:   max(cfg.HoleScanLimit, 1),
		effectFrames:    max(cfg.EffectFrames, 1),
		logger:          logger,
	}
}

// Create registers a new emitter with its own master structure. The
// first emitter, or the first one created after the primordial emitter
// was removed, becomes primordial.
func (r *Registry) Create(name string) (*Emitter, error) {
	root, ok := r.arena.AllocateOne()
	if !ok {
		return nil, fmt.Errorf("%w: emitter %q", ErrArenaFull, name)
	}
	e := newEmitter(r, name, root)
	e.node = r.emitters.PushBack(e)
	r.roots[root] = e
	if r.primordial == nil {
		r.primordial = e
	}
	r.logger.Debug("emitter created",
		log.String("id", e.id),
		log.String("name", name),
		log.Bool("primordial", r.primordial == e),
	)
	return e, nil
}

func (r *Registry) Primordial() *Emitter { return r.primordial }
func (r *Registry) Len() int             { return r.emitters.Len() }

// IsRoot reports whether i is some emitter's master structure.
func (r *Registry) IsRoot(i bullet.Index) bool {
	_, ok := r.roots[i]
	return ok
}

// Owner returns the emitter whose master structure is i.
func (r *Registry) Owner(i bullet.Index) (*Emitter, bool) {
	e, ok := r.roots[i]
	return e, ok
}

// Each visits emitters in creation order until fn returns false.
func (r *Registry) Each(fn func(*Emitter) bool) {
	r.emitters.Each(func(n *container.Node[*Emitter]) bool {
		return fn(n.Value)
	})
}

// Emitters appends all live emitters to dst.
func (r *Registry) Emitters(dst []*Emitter) []*Emitter {
	return r.emitters.Values(dst)
}

// Bookkeep runs per-frame maintenance on every emitter. It must run
// before execution starts. It returns the number of refreshed roots.
func (r *Registry) Bookkeep() int {
	refreshed := 0
	r.Each(func(e *Emitter) bool {
		if e.bookkeep() {
			refreshed++
		}
		return true
	})
	return refreshed
}

// AdoptEffect turns the subtree at i into a deletion effect and hands it
// to the primordial emitter. Without a primordial emitter it reports false
// and leaves i untouched.
func (r *Registry) AdoptEffect(i bullet.Index) bool {
	p := r.primordial
	if p == nil || !r.arena.Valid(i) || r.IsRoot(i) {
		return false
	}
	r.arena.ConvertToEffect(i, r.effectFrames)
	return p.Inherit(i)
}

// ClearBullets tears down the subtree of e, keeping e itself alive. With
// useEffect the bullets become deletion effects owned by the primordial
// emitter instead of vanishing; the primordial emitter converts its own
// bullets in place. It returns the number of direct children removed.
func (r *Registry) ClearBullets(e *Emitter, useEffect bool) int {
	if e == nil || !e.Alive() {
		return 0
	}
	children := e.takeChildren()
	for _, c := range children {
		switch {
		case useEffect && e == r.primordial:
			if !r.arena.IsEffect(c) {
				r.arena.ConvertToEffect(c, r.effectFrames)
			}
			continue
		case useEffect && r.primordial != nil && r.AdoptEffect(c):
			continue
		}
		r.arena.FreeSubtree(c)
	}
	return len(children)
}

// ClearAll clears the bullets of every emitter. The primordial emitter
// goes first so the effects it adopts from the others are left alone.
func (r *Registry) ClearAll(useEffect bool) int {
	n := 0
	if r.primordial != nil {
		n += r.ClearBullets(r.primordial, useEffect)
	}
	r.Each(func(e *Emitter) bool {
		if e != r.primordial {
			n += r.ClearBullets(e, useEffect)
		}
		return true
	})
	return n
}

// Remove destroys e according to action. It completes synchronously and
// must run outside execution and collision passes.
func (r *Registry) Remove(e *Emitter, action DeleteAction, useEffect bool) error {
	if e == nil || !e.Alive() || e.registry != r {
		return ErrUnknownEmitter
	}

	switch action {
	case ClearAllBullets:
		r.ClearAll(useEffect)
	case ClearMyBullets:
		r.ClearBullets(e, useEffect)
	default:
		if e == r.primordial {
			if r.emitters.Len() > 1 {
				r.logger.Warn("primordial emitter removed while others remain",
					log.String("id", e.id),
					log.Int("remaining", r.emitters.Len()-1),
				)
			}
			r.arena.FreeSubtree(e.root)
			break
		}
		for _, c := range e.takeChildren() {
			if r.primordial == nil || !r.primordial.Inherit(c) {
				r.arena.FreeSubtree(c)
			}
		}
	}

	if r.arena.Valid(e.root) {
		r.arena.FreeSubtree(e.root)
	}
	delete(r.roots, e.root)
	r.emitters.Remove(e.node)
	if r.primordial == e {
		r.primordial = nil
	}
	e.root = bullet.Nil

	r.logger.Debug("emitter removed",
		log.String("id", e.id),
		log.String("action", action.String()),
		log.Bool("effect", useEffect),
	)
	return nil
}
