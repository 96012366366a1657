package bullet

import "github.com/zeusync/barrage/pkg/curve"

// FadeCurve drives deletion effects: alpha over normalised lifetime.
var FadeCurve = curve.MustBake(curve.Akima, 32,
	curve.Point{T: 0, V: 1},
	curve.Point{T: 0.5, V: 0.6},
	curve.Point{T: 1, V: 0},
)

// Fade animates the visual alpha of its entity down to zero over Frames
// steps and then deletes the entity without a further effect.
type Fade struct {
	Frames  float64
	elapsed float64
}

func (b *Fade) Execute(a *Arena, i Index, step float64) Receipt {
	b.elapsed += step
	if v := a.Visual(i); v != nil {
		v.Alpha = float32(FadeCurve.Sample(b.elapsed / b.Frames))
	}
	if b.elapsed >= b.Frames {
		return Receipt{Delete: true}
	}
	return Receipt{}
}

func (b *Fade) Clone() Behavior { c := *b; return &c }

// ConvertToEffect turns the subtree at root into a purely visual deletion
// effect: collision and behaviors are stripped from every entity and the
// root receives a Fade lasting frames steps. Structure is unchanged.
func (a *Arena) ConvertToEffect(root Index, frames int) {
	if !a.Valid(root) {
		return
	}
	if frames < 1 {
		frames = 1
	}
	a.Walk(root, func(i Index, e *Entity) bool {
		a.ClearBehaviors(i)
		e.Collision.Layer = 0
		e.Collision.CanSleep = false
		e.Collision.SetSleeping(false)
		return true
	})
	a.Visual(root)
	a.AddBehavior(root, &Fade{Frames: float64(frames)})
}

// IsEffect reports whether i is the root of a deletion effect.
func (a *Arena) IsEffect(i Index) bool {
	e := a.Get(i)
	if e == nil {
		return false
	}
	for _, b := range e.behaviors {
		if _, ok := b.(*Fade); ok {
			return true
		}
	}
	return false
}
