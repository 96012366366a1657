package emitter

import (
	"github.com/google/uuid"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/pkg/container"
)

// DeleteAction decides what happens to an emitter's bullets when the
// emitter itself goes away.
type DeleteAction uint8

const (
	// BulletsRemain hands every direct child to the primordial emitter.
	BulletsRemain DeleteAction = iota
	// ClearMyBullets tears down the emitter's own subtree.
	ClearMyBullets
	// ClearAllBullets tears down every emitter's subtree.
	ClearAllBullets
)

func (d DeleteAction) String() string {
	switch d {
	case BulletsRemain:
		return "bullets_remain"
	case ClearMyBullets:
		return "clear_my_bullets"
	case ClearAllBullets:
		return "clear_all_bullets"
	default:
		return "unknown"
	}
}

// Emitter owns one master structure: a synthetic root entity gathering
// everything the emitter created.
type Emitter struct {
	id   string
	name string

	root        bullet.Index
	cursor      int
	holeCursor  int
	refreshMark uint64

	// TimeScale multiplies the engine time scale for this emitter's tree.
	TimeScale float64
	// Action is applied when the emitter is removed without an explicit one.
	Action DeleteAction

	registry *Registry
	node     *container.Node[*Emitter]
}

func newEmitter(r *Registry, name string, root bullet.Index) *Emitter {
	return &Emitter{
		id:          uuid.NewString(),
		name:        name,
		root:        root,
		refreshMark: r.arena.Allocations(),
		TimeScale:   1,
		Action:      BulletsRemain,
		registry:    r,
	}
}

func (e *Emitter) ID() string         { return e.id }
func (e *Emitter) Name() string       { return e.name }
func (e *Emitter) Root() bullet.Index { return e.root }
func (e *Emitter) Alive() bool        { return e.node.Linked() }
func (e *Emitter) IsPrimordial() bool { return e.registry.primordial == e }
func (e *Emitter) Cursor() int        { return e.cursor }

// Inherit grafts the subtree at sub into the master structure at the next
// free child slot. A subtree attached elsewhere is moved and keeps its
// world placement.
func (e *Emitter) Inherit(sub bullet.Index) bool {
	a := e.registry.arena
	if !e.Alive() || !a.Valid(sub) || sub == e.root || e.registry.IsRoot(sub) {
		return false
	}
	children := a.Children(e.root)
	for e.cursor < len(children) && children[e.cursor] != bullet.Nil {
		e.cursor++
	}
	slot := e.cursor
	if !a.Reparent(e.root, slot, sub) {
		return false
	}
	e.cursor = slot + 1
	return true
}

// Count is the number of occupied child slots of the master structure.
func (e *Emitter) Count() int {
	n := 0
	for _, c := range e.registry.arena.Children(e.root) {
		if c != bullet.Nil {
			n++
		}
	}
	return n
}

// bookkeep runs the once-per-frame maintenance: a refresh when the arena
// has grown by the refresh interval, then the rolling hole scan.
func (e *Emitter) bookkeep() (refreshed bool) {
	r := e.registry
	if r.arena.Allocations()-e.refreshMark >= r.refreshInterval {
		refreshed = e.refresh()
	}
	e.scanHoles()
	return refreshed
}

// refresh moves the children onto a freshly allocated root and frees the
// old root on its own, so a long-lived emitter never pins one slot.
func (e *Emitter) refresh() bool {
	r := e.registry
	a := r.arena
	root, ok := a.AllocateOne()
	if !ok {
		return false
	}
	old := e.root
	a.SetLocal(root, a.Get(old).Local)
	a.MoveChildren(root, old)
	a.FreeNode(old)

	delete(r.roots, old)
	r.roots[root] = e
	e.root = root
	e.refreshMark = a.Allocations()
	return true
}

// scanHoles inspects up to HoleScanLimit slots from the rolling cursor and
// pulls the insertion cursor back to the first empty slot it finds.
// Trailing empty slots are trimmed.
func (e *Emitter) scanHoles() {
	a := e.registry.arena
	a.TrimChildren(e.root)
	children := a.Children(e.root)
	n := len(children)
	if e.cursor > n {
		e.cursor = n
	}
	if n == 0 {
		e.holeCursor = 0
		return
	}
	limit := min(e.registry.holeScanLimit, n)
	pos := e.holeCursor % n
	for k := 0; k < limit; k++ {
		if children[pos] == bullet.Nil {
			if pos < e.cursor {
				e.cursor = pos
			}
			e.holeCursor = (pos + 1) % n
			return
		}
		pos = (pos + 1) % n
	}
	e.holeCursor = pos
}

// takeChildren returns the direct children in slot order and rewinds the
// cursors. The children stay attached so a move can keep their placement;
// callers re-home or free every one of them.
func (e *Emitter) takeChildren() []bullet.Index {
	a := e.registry.arena
	var out []bullet.Index
	for _, c := range a.Children(e.root) {
		if c != bullet.Nil {
			out = append(out, c)
		}
	}
	e.cursor, e.holeCursor = 0, 0
	return out
}
