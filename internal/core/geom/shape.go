package geom

import (
	"gonum.org/v1/gonum/spatial/r2"
)

type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeCircle
)

// Shape is a collision shape in local units. A circle of radius zero is
// a point.
type Shape struct {
	Kind   ShapeKind
	Radius float64
}

func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

func (s Shape) Scaled(f float64) Shape {
	s.Radius *= f
	return s
}

// Separation returns the signed gap between two placed shapes: positive
// when apart, zero when touching, negative when overlapping. ok is false
// for shape pairs without an implementation.
func Separation(a Shape, pa r2.Vec, b Shape, pb r2.Vec) (sep float64, ok bool) {
	switch {
	case a.Kind == ShapeCircle && b.Kind == ShapeCircle:
		return r2.Norm(r2.Sub(pa, pb)) - a.Radius - b.Radius, true
	default:
		return 0, false
	}
}
