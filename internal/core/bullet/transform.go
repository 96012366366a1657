package bullet

import (
	"fmt"

	"github.com/zeusync/barrage/internal/core/geom"
)

// WorldOf composes the local transforms from the top of i's tree down to
// i. Unlike the cached World it is exact between execution passes.
func (a *Arena) WorldOf(i Index) geom.Affine {
	if !a.Valid(i) {
		return geom.Identity()
	}
	m := a.entities[i].Local
	steps := 0
	for p := a.entities[i].parent; p != Nil; p = a.entities[p].parent {
		m = a.entities[p].Local.Mul(m)
		steps++
		if steps > len(a.entities) {
			panic(fmt.Errorf("%w: cycle above %d", ErrCorruptTree, i))
		}
	}
	return m
}

// Reparent moves child into parent's slot like SetChild, but keeps an
// attached child where it is in world space by rebasing its Local onto
// the new parent. A detached child keeps its Local, which is then read
// relative to the new parent. World is refreshed for the whole subtree.
func (a *Arena) Reparent(parent Index, slot int, child Index) bool {
	if !a.Valid(parent) || !a.Valid(child) || slot < 0 {
		return false
	}
	for p := parent; p != Nil; p = a.entities[p].parent {
		if p == child {
			return false
		}
	}
	attached := a.entities[child].parent != Nil
	var world geom.Affine
	if attached {
		world = a.WorldOf(child)
	}
	a.SetChild(parent, slot, child)
	if a.entities[child].parent != parent {
		return false
	}
	if attached {
		if inv, ok := a.WorldOf(parent).Inverse(); ok {
			a.entities[child].Local = inv.Mul(world)
		}
	}
	a.RefreshWorld(child)
	return true
}

// RefreshWorld recomputes the cached World of root and its descendants
// from their local transforms. Structural changes made outside the
// execution pass call it so collision sees the new placement.
func (a *Arena) RefreshWorld(root Index) {
	if !a.Valid(root) {
		return
	}
	a.Walk(root, func(i Index, e *Entity) bool {
		switch {
		case e.parent == Nil:
			e.World = e.Local
		case i == root:
			e.World = a.WorldOf(e.parent).Mul(e.Local)
		default:
			e.World = a.entities[e.parent].World.Mul(e.Local)
		}
		return true
	})
}
