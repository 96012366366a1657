package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/internal/core/emitter"
	"github.com/zeusync/barrage/internal/core/geom"
	"github.com/zeusync/barrage/pkg/curve"
)

// burst is the speed profile of accelerating shots: a fast start that
// settles to cruising speed.
var burst = curve.MustBake(curve.Akima, curve.DefaultResolution,
	curve.Point{T: 0, V: 3},
	curve.Point{T: 20, V: 1.2},
	curve.Point{T: 60, V: 1},
)

// ring fires count bullets evenly spaced around a spinning shot root.
type ring struct {
	origin   r2.Vec
	count    int
	speed    float64
	spin     float64
	interval uint64
	lifetime float64
	radius   float64
	layer    uint16
	shots    uint64
}

// fire emits one shot when the frame is due. It reports the bullets
// created; a shot the arena cannot hold entirely is dropped.
func (p *ring) fire(a *bullet.Arena, e *emitter.Emitter, frame uint64) int {
	if p.interval == 0 || frame%p.interval != 0 {
		return 0
	}
	root, ok := a.AllocateOne()
	if !ok {
		return 0
	}
	a.SetLocal(root, geom.Translation(p.origin))
	a.AddBehavior(root, &bullet.Spin{Rate: p.spin})
	a.AddBehavior(root, &bullet.Lifetime{Frames: p.lifetime})

	accelerate := p.shots%3 == 2
	offset := float64(p.shots) * 0.1
	for k := 0; k < p.count; k++ {
		b, ok := a.AllocateOne()
		if !ok {
			a.FreeSubtree(root)
			return 0
		}
		theta := offset + 2*math.Pi*float64(k)/float64(p.count)
		dir := r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
		a.SetChild(root, k, b)
		a.SetRenderID(b, int32(k%4))
		a.SetCollision(b, p.layer, geom.Circle(p.radius), true)
		a.SetPower(b, 1)
		if accelerate {
			a.AddBehavior(b, &bullet.Accelerate{Base: r2.Scale(p.speed, dir), Curve: burst})
		} else {
			a.AddBehavior(b, &bullet.Velocity{V: r2.Scale(p.speed, dir)})
		}
		a.AddBehavior(b, &bullet.Lifetime{Frames: p.lifetime * 0.8, Effect: k%2 == 0})
	}
	if !e.Inherit(root) {
		a.FreeSubtree(root)
		return 0
	}
	p.shots++
	return p.count
}
