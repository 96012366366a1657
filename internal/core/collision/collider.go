package collision

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/internal/core/geom"
	"github.com/zeusync/barrage/pkg/container"
)

// Hit is one bullet touching a collider in one frame. The bullet fields
// are copied at detection time; Ref tells whether the bullet still exists
// when the hit is consumed.
type Hit struct {
	Ref        bullet.Ref
	Frame      uint64
	Separation float64
	Phase      uint8
	Graze      float32
	Power      float32
	Health     float32
}

// Collider is a world object bullets can hit. Its centre and shape are
// owned by the registrant and must not change during a collision pass.
type Collider struct {
	id     uint64
	center r2.Vec
	shape  geom.Shape

	lock *sync.Mutex
	hits []Hit
}

func NewCollider(id uint64, shape geom.Shape) *Collider {
	return &Collider{id: id, shape: shape}
}

func (c *Collider) ID() uint64            { return c.id }
func (c *Collider) Center() r2.Vec        { return c.center }
func (c *Collider) SetCenter(p r2.Vec)    { c.center = p }
func (c *Collider) Shape() geom.Shape     { return c.shape }
func (c *Collider) SetShape(s geom.Shape) { c.shape = s }

func (c *Collider) record(h Hit) {
	c.lock.Lock()
	c.hits = append(c.hits, h)
	c.lock.Unlock()
}

// Drain appends the hits collected since the last call to dst and clears
// the result list. Registrants call it once per frame.
func (c *Collider) Drain(dst []Hit) []Hit {
	if c.lock != nil {
		c.lock.Lock()
		defer c.lock.Unlock()
	}
	dst = append(dst, c.hits...)
	clear(c.hits)
	c.hits = c.hits[:0]
	return dst
}

// Handle removes a registration.
type Handle struct {
	layer ObjectLayer
	node  *container.Node[*Collider]
}

func (h Handle) Layer() ObjectLayer { return h.layer }
func (h Handle) Valid() bool        { return h.node.Linked() }
