package bullet

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zeusync/barrage/pkg/curve"
)

// Velocity moves the entity by V units per step in parent space.
type Velocity struct {
	V r2.Vec
}

func (b *Velocity) Execute(a *Arena, i Index, step float64) Receipt {
	e := a.At(i)
	e.Local = e.Local.Translate(r2.Scale(step, b.V))
	return Receipt{}
}

func (b *Velocity) Clone() Behavior { c := *b; return &c }

// Spin rotates the entity by Rate radians per step.
type Spin struct {
	Rate float64
}

func (b *Spin) Execute(a *Arena, i Index, step float64) Receipt {
	e := a.At(i)
	e.Local = e.Local.Rotate(b.Rate * step)
	return Receipt{}
}

func (b *Spin) Clone() Behavior { c := *b; return &c }

// Lifetime deletes the entity after Frames steps have elapsed.
type Lifetime struct {
	Frames  float64
	Effect  bool
	elapsed float64
}

func (b *Lifetime) Execute(_ *Arena, _ Index, step float64) Receipt {
	b.elapsed += step
	if b.elapsed >= b.Frames {
		return Receipt{Delete: true, UseDeletionEffect: b.Effect}
	}
	return Receipt{}
}

func (b *Lifetime) Clone() Behavior { c := *b; return &c }

func (b *Lifetime) Elapsed() float64 { return b.elapsed }

// Accelerate scales a base velocity by a curve sampled over elapsed steps.
type Accelerate struct {
	Base  r2.Vec
	Curve *curve.Baked
	t     float64
}

func (b *Accelerate) Execute(a *Arena, i Index, step float64) Receipt {
	b.t += step
	e := a.At(i)
	e.Local = e.Local.Translate(r2.Scale(step*b.Curve.Sample(b.t), b.Base))
	return Receipt{}
}

func (b *Accelerate) Clone() Behavior { c := *b; return &c }

// Throttle slows every later behavior on the entity by Factor.
type Throttle struct {
	Factor float64
}

func (b *Throttle) Execute(*Arena, Index, float64) Receipt {
	return Receipt{Throttle: b.Factor}
}

func (b *Throttle) Clone() Behavior { c := *b; return &c }

// Serial pins the entity's children to the scheduling goroutine.
type Serial struct{}

func (Serial) Execute(*Arena, Index, float64) Receipt {
	return Receipt{NoMultithreading: true}
}

func (s Serial) Clone() Behavior { return s }
