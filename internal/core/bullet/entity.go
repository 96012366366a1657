package bullet

import (
	"sync/atomic"

	"github.com/zeusync/barrage/internal/core/geom"
)

// Index addresses an entity slot. It is stable while the entity is
// allocated and may be reused after the slot is freed.
type Index int32

// Nil is the empty index: no parent, empty child slot, failed allocation.
const Nil Index = -1

// Ref is an index paired with the slot generation at the time the
// reference was taken. A Ref outlives its entity safely: once the slot is
// freed the generation moves on and Alive reports false.
type Ref struct {
	Index      Index
	Generation uint32
}

var NilRef = Ref{Index: Nil}

// Collision holds the physics linkage of a bullet. Layer 0 never collides.
type Collision struct {
	Layer    uint16
	Shape    geom.Shape
	CanSleep bool

	sleeping atomic.Bool
}

// Sleeping may be read and written by the collision pass concurrently
// with other entities; it is the only entity field written during it.
func (c *Collision) Sleeping() bool     { return c.sleeping.Load() }
func (c *Collision) SetSleeping(v bool) { c.sleeping.Store(v) }

// Visual is the optional per-bullet render parameter block.
type Visual struct {
	Alpha  float32
	Scale  float32
	Tint   [4]float32
	Params [4]float32
}

func newVisual() *Visual {
	return &Visual{Alpha: 1, Scale: 1, Tint: [4]float32{1, 1, 1, 1}}
}

// Entity is one bullet or pattern node.
type Entity struct {
	initialized bool
	generation  uint32

	parent   Index
	slot     int32
	children []Index

	// Local is relative to the parent; World is recomputed parent-first
	// during execution.
	Local geom.Affine
	World geom.Affine

	RenderID  int32
	Collision Collision

	Phase  uint8
	Graze  float32
	Power  float32
	Health float32

	visual    *Visual
	behaviors []Behavior
}

func (e *Entity) Initialized() bool     { return e.initialized }
func (e *Entity) Parent() Index         { return e.parent }
func (e *Entity) Slot() int             { return int(e.slot) }
func (e *Entity) Children() []Index     { return e.children }
func (e *Entity) Behaviors() []Behavior { return e.behaviors }

// Visual returns the extras block or nil if none was allocated.
func (e *Entity) Visual() *Visual { return e.visual }

// reset returns the slot to its allocation defaults, keeping the backing
// arrays of the children and behavior lists for reuse.
func (e *Entity) reset() {
	clear(e.behaviors)
	e.behaviors = e.behaviors[:0]
	e.children = e.children[:0]
	e.parent = Nil
	e.slot = -1
	e.Local = geom.Identity()
	e.World = geom.Identity()
	e.RenderID = -1
	e.Collision.Layer = 0
	e.Collision.Shape = geom.Shape{}
	e.Collision.CanSleep = false
	e.Collision.sleeping.Store(false)
	e.Phase = 0
	e.Graze, e.Power, e.Health = 0, 0, 0
	e.visual = nil
}
