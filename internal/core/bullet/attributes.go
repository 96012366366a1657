package bullet

import "github.com/zeusync/barrage/internal/core/geom"

func (a *Arena) SetLocal(i Index, m geom.Affine) {
	if e := a.Get(i); e != nil {
		e.Local = m
	}
}

func (a *Arena) SetRenderID(i Index, id int32) {
	if e := a.Get(i); e != nil {
		e.RenderID = id
	}
}

// SetCollision gives i a collision layer and shape. Layer 0 disables
// collision. A changed layer wakes the entity.
func (a *Arena) SetCollision(i Index, layer uint16, shape geom.Shape, canSleep bool) {
	e := a.Get(i)
	if e == nil {
		return
	}
	e.Collision.Layer = layer
	e.Collision.Shape = shape
	e.Collision.CanSleep = canSleep
	e.Collision.SetSleeping(false)
}

func (a *Arena) SetPhase(i Index, phase uint8) {
	if e := a.Get(i); e != nil {
		e.Phase = phase
	}
}

func (a *Arena) SetGraze(i Index, v float32) {
	if e := a.Get(i); e != nil {
		e.Graze = v
	}
}

func (a *Arena) SetPower(i Index, v float32) {
	if e := a.Get(i); e != nil {
		e.Power = v
	}
}

func (a *Arena) SetHealth(i Index, v float32) {
	if e := a.Get(i); e != nil {
		e.Health = v
	}
}

// Visual returns the extras block of i, allocating it on first use.
func (a *Arena) Visual(i Index) *Visual {
	e := a.Get(i)
	if e == nil {
		return nil
	}
	if e.visual == nil {
		e.visual = newVisual()
	}
	return e.visual
}

// AddBehavior appends b to the end of i's behavior list. The entity takes
// ownership of b.
func (a *Arena) AddBehavior(i Index, b Behavior) {
	if e := a.Get(i); e != nil && b != nil {
		e.behaviors = append(e.behaviors, b)
	}
}

// ClearBehaviors disposes and drops every behavior of i.
func (a *Arena) ClearBehaviors(i Index) {
	e := a.Get(i)
	if e == nil {
		return
	}
	for _, b := range e.behaviors {
		if d, ok := b.(Disposer); ok {
			d.Dispose()
		}
	}
	clear(e.behaviors)
	e.behaviors = e.behaviors[:0]
}
