package bullet

import (
	"fmt"

	"github.com/zeusync/barrage/internal/core/observability/log"
)

// SetChild stores child in parent's slot, keeping both directions of the
// link consistent. A child attached elsewhere is detached first; the
// entity previously in the slot is detached and left for the caller to
// re-home or free. Passing Nil clears the slot. Slots past the end grow
// the children array with empty entries.
func (a *Arena) SetChild(parent Index, slot int, child Index) {
	if !a.Valid(parent) || slot < 0 {
		return
	}
	if child != Nil && (!a.Valid(child) || child == parent) {
		return
	}
	p := &a.entities[parent]
	if slot < len(p.children) {
		if old := p.children[slot]; old != Nil {
			if old == child {
				return
			}
			a.entities[old].parent = Nil
			a.entities[old].slot = -1
			p.children[slot] = Nil
		}
	}
	if child == Nil {
		return
	}
	a.Detach(child)
	for len(p.children) <= slot {
		p.children = append(p.children, Nil)
	}
	p.children[slot] = child
	c := &a.entities[child]
	c.parent = parent
	c.slot = int32(slot)
}

// AppendChild attaches child after the last slot and returns the slot.
func (a *Arena) AppendChild(parent, child Index) int {
	if !a.Valid(parent) || !a.Valid(child) {
		return -1
	}
	slot := len(a.entities[parent].children)
	a.SetChild(parent, slot, child)
	return slot
}

// SetChildCount sizes the children array to n slots. Shrinking detaches
// nothing: it only trims trailing empty slots and stops at the last
// occupied one.
func (a *Arena) SetChildCount(parent Index, n int) {
	if !a.Valid(parent) || n < 0 {
		return
	}
	p := &a.entities[parent]
	for len(p.children) < n {
		p.children = append(p.children, Nil)
	}
	for len(p.children) > n && p.children[len(p.children)-1] == Nil {
		p.children = p.children[:len(p.children)-1]
	}
}

// TrimChildren drops trailing empty slots.
func (a *Arena) TrimChildren(parent Index) {
	a.SetChildCount(parent, 0)
}

// Detach unlinks i from its parent and returns where it was attached.
func (a *Arena) Detach(i Index) (parent Index, slot int) {
	if !a.Valid(i) {
		return Nil, -1
	}
	e := &a.entities[i]
	parent, slot = e.parent, int(e.slot)
	if parent == Nil {
		return Nil, -1
	}
	p := &a.entities[parent]
	if slot < 0 || slot >= len(p.children) || p.children[slot] != i {
		panic(fmt.Errorf("%w: entity %d claims slot %d of %d", ErrCorruptTree, i, slot, parent))
	}
	p.children[slot] = Nil
	e.parent = Nil
	e.slot = -1
	return parent, slot
}

// Child returns the entity in slot or Nil.
func (a *Arena) Child(parent Index, slot int) Index {
	if !a.Valid(parent) {
		return Nil
	}
	children := a.entities[parent].children
	if slot < 0 || slot >= len(children) {
		return Nil
	}
	return children[slot]
}

// Children returns the children array of parent, empty slots included.
// The slice aliases arena storage and is invalidated by structural calls.
func (a *Arena) Children(parent Index) []Index {
	if !a.Valid(parent) {
		return nil
	}
	return a.entities[parent].children
}

// Parent returns the parent of i and the slot it occupies.
func (a *Arena) Parent(i Index) (Index, int) {
	if !a.Valid(i) {
		return Nil, -1
	}
	e := &a.entities[i]
	return e.parent, int(e.slot)
}

// MoveChildren transfers the whole children array of src to dst, which
// must have no children, keeping every child in the same slot.
func (a *Arena) MoveChildren(dst, src Index) {
	if !a.Valid(dst) || !a.Valid(src) || dst == src {
		return
	}
	d, s := &a.entities[dst], &a.entities[src]
	for _, c := range d.children {
		if c != Nil {
			panic(fmt.Errorf("%w: move target %d already has children", ErrCorruptTree, dst))
		}
	}
	d.children, s.children = s.children, d.children[:0]
	for _, c := range d.children {
		if c != Nil {
			a.entities[c].parent = dst
		}
	}
}

// FreeNode frees a single entity that has no children left. Freeing a
// node that still holds children would orphan them and panics.
func (a *Arena) FreeNode(i Index) {
	if !a.Valid(i) {
		return
	}
	for _, c := range a.entities[i].children {
		if c != Nil {
			a.logger.Error("free of entity with children", log.Int("index", int(i)), log.Int("child", int(c)))
			panic(fmt.Errorf("%w: entity %d freed with live child %d", ErrCorruptTree, i, c))
		}
	}
	a.Detach(i)
	a.free(i)
}

// FreeSubtree detaches root and frees it together with all descendants,
// disposing every behavior. It returns the number of entities freed.
// It must not run while execution or collision passes are in flight.
func (a *Arena) FreeSubtree(root Index) int {
	if !a.Valid(root) {
		return 0
	}
	a.Detach(root)

	freed := 0
	stack := []Index{root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e := &a.entities[i]
		for _, c := range e.children {
			if c != Nil {
				stack = append(stack, c)
			}
		}
		a.free(i)
		freed++
		if freed > len(a.entities) {
			panic(fmt.Errorf("%w: cycle below %d", ErrCorruptTree, root))
		}
	}
	return freed
}

// Walk visits root and its descendants parent first. Returning false
// from fn skips the entity's subtree.
func (a *Arena) Walk(root Index, fn func(i Index, e *Entity) bool) {
	if !a.Valid(root) {
		return
	}
	stack := []Index{root}
	visited := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e := &a.entities[i]
		visited++
		if visited > len(a.entities) {
			panic(fmt.Errorf("%w: cycle below %d", ErrCorruptTree, root))
		}
		if !fn(i, e) {
			continue
		}
		for s := len(e.children) - 1; s >= 0; s-- {
			if c := e.children[s]; c != Nil {
				stack = append(stack, c)
			}
		}
	}
}

// TreeSize counts root and all its descendants.
func (a *Arena) TreeSize(root Index) int {
	n := 0
	a.Walk(root, func(Index, *Entity) bool {
		n++
		return true
	})
	return n
}

// Depth is the number of ancestors above i.
func (a *Arena) Depth(i Index) int {
	if !a.Valid(i) {
		return -1
	}
	d := 0
	for p := a.entities[i].parent; p != Nil; p = a.entities[p].parent {
		d++
		if d > len(a.entities) {
			panic(fmt.Errorf("%w: cycle above %d", ErrCorruptTree, i))
		}
	}
	return d
}

// Root climbs to the top of i's tree.
func (a *Arena) Root(i Index) Index {
	if !a.Valid(i) {
		return Nil
	}
	for a.entities[i].parent != Nil {
		i = a.entities[i].parent
	}
	return i
}

// Verify checks linkage for every live entity: each child points back at
// its parent slot, each parent link is mirrored, and no tree has a cycle.
func (a *Arena) Verify() error {
	live := 0
	for idx := 0; idx < len(a.entities); idx++ {
		e := &a.entities[idx]
		if !e.initialized {
			continue
		}
		live++
		i := Index(idx)
		for slot, c := range e.children {
			if c == Nil {
				continue
			}
			if !a.Valid(c) {
				return fmt.Errorf("%w: %d slot %d holds free entity %d", ErrCorruptTree, i, slot, c)
			}
			ce := &a.entities[c]
			if ce.parent != i || int(ce.slot) != slot {
				return fmt.Errorf("%w: %d slot %d holds %d whose link is (%d, %d)",
					ErrCorruptTree, i, slot, c, ce.parent, ce.slot)
			}
		}
		if e.parent != Nil {
			if !a.Valid(e.parent) {
				return fmt.Errorf("%w: %d has free parent %d", ErrCorruptTree, i, e.parent)
			}
			p := &a.entities[e.parent]
			if int(e.slot) >= len(p.children) || e.slot < 0 || p.children[e.slot] != i {
				return fmt.Errorf("%w: %d not found in parent %d slot %d", ErrCorruptTree, i, e.parent, e.slot)
			}
		}
		steps := 0
		for p := e.parent; p != Nil; p = a.entities[p].parent {
			steps++
			if steps > len(a.entities) {
				return fmt.Errorf("%w: cycle above %d", ErrCorruptTree, i)
			}
		}
	}
	if live != a.live {
		return fmt.Errorf("%w: %d initialized slots but live count %d", ErrCorruptTree, live, a.live)
	}
	return nil
}
