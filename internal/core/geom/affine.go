// Package geom holds the 2D math shared by the arena and the collision
// solver: affine transforms and collision shapes.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Affine maps p to (A*p.X + C*p.Y + T.X, B*p.X + D*p.Y + T.Y).
type Affine struct {
	A, B, C, D float64
	T          r2.Vec
}

func Identity() Affine {
	return Affine{A: 1, D: 1}
}

func Translation(v r2.Vec) Affine {
	return Affine{A: 1, D: 1, T: v}
}

// Rotation is a rotation by theta radians about the origin.
func Rotation(theta float64) Affine {
	sin, cos := math.Sincos(theta)
	return Affine{A: cos, B: sin, C: -sin, D: cos}
}

func Scaling(s float64) Affine {
	return Affine{A: s, D: s}
}

// Apply transforms a point.
func (m Affine) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: m.A*p.X + m.C*p.Y + m.T.X,
		Y: m.B*p.X + m.D*p.Y + m.T.Y,
	}
}

// ApplyVector transforms a direction, ignoring translation.
func (m Affine) ApplyVector(v r2.Vec) r2.Vec {
	return r2.Vec{X: m.A*v.X + m.C*v.Y, Y: m.B*v.X + m.D*v.Y}
}

// Mul returns m∘n: the transform applying n first, then m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		T: m.Apply(n.T),
	}
}

// Inverse returns the transform undoing m. It reports false when the basis
// is singular.
func (m Affine) Inverse() (Affine, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Affine{}, false
	}
	inv := Affine{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
	}
	t := inv.ApplyVector(m.T)
	inv.T = r2.Vec{X: -t.X, Y: -t.Y}
	return inv, true
}

// Translate moves the transform by v expressed in parent space.
func (m Affine) Translate(v r2.Vec) Affine {
	m.T = r2.Add(m.T, v)
	return m
}

// Rotate spins the transform's basis by theta around its own origin.
func (m Affine) Rotate(theta float64) Affine {
	t := m.T
	m.T = r2.Vec{}
	m = Rotation(theta).Mul(m)
	m.T = t
	return m
}

func (m Affine) Origin() r2.Vec { return m.T }

// ScaleFactor is the uniform scale implied by the basis: sqrt(|det|).
func (m Affine) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

// Angle is the rotation of the transform's x axis.
func (m Affine) Angle() float64 {
	return math.Atan2(m.B, m.A)
}
