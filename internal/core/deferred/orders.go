package deferred

import (
	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/barrage/internal/core/bullet"
)

// OperationID names a registered operation. It is the xxhash of the
// operation name, so producers can compute it without a lookup.
type OperationID uint64

func IDOf(name string) OperationID {
	return OperationID(xxhash.Sum64String(name))
}

// Operation replaces a subtree. Replace receives the detached root and
// returns the root to re-attach in its place, or bullet.Nil to leave the
// slot empty. Returning a different root while leaving the old one alive
// and unattached frees the old subtree. A descendant of the old root may
// be returned; it is lifted out before the rest is freed. The returned
// subtree's Local is read relative to the slot's parent.
type Operation interface {
	Replace(a *bullet.Arena, root bullet.Index) bullet.Index
}

type OperationFunc func(a *bullet.Arena, root bullet.Index) bullet.Index

func (f OperationFunc) Replace(a *bullet.Arena, root bullet.Index) bullet.Index {
	return f(a, root)
}

type DeleteOrder struct {
	Ref               bullet.Ref
	UseDeletionEffect bool
}

type OperationOrder struct {
	Ref       bullet.Ref
	Operation OperationID
}

// Owner is the emitter side of the drain: master-structure roots are
// never touched, and deletion effects are handed over for adoption.
type Owner interface {
	IsRoot(i bullet.Index) bool
	AdoptEffect(i bullet.Index) bool
}
