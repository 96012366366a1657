// Package curve bakes smooth control-point curves into lookup tables so
// per-frame sampling is a table read instead of a spline evaluation.
package curve

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"
)

const DefaultResolution = 64

var ErrTooFewPoints = errors.New("curve needs at least two control points")

// Kind selects the interpolation used when baking.
type Kind uint8

const (
	Linear Kind = iota
	Akima
)

// Point is a control point of a curve.
type Point struct {
	T, V float64
}

// Baked is an immutable table sampled from a fitted curve. It is safe for
// concurrent use.
type Baked struct {
	t0, t1 float64
	step   float64
	table  []float64
}

// Bake fits the points (sorted by T, strictly increasing) and samples the
// result at resolution evenly spaced positions.
func Bake(kind Kind, resolution int, points ...Point) (*Baked, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	if resolution < 2 {
		resolution = DefaultResolution
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.T, p.V
	}

	var predictor interp.FittablePredictor
	switch kind {
	case Akima:
		if len(points) < 3 {
			predictor = &interp.PiecewiseLinear{}
		} else {
			predictor = &interp.AkimaSpline{}
		}
	default:
		predictor = &interp.PiecewiseLinear{}
	}
	if err := predictor.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit curve: %w", err)
	}

	b := &Baked{
		t0:    xs[0],
		t1:    xs[len(xs)-1],
		table: make([]float64, resolution),
	}
	b.step = (b.t1 - b.t0) / float64(resolution-1)
	for i := range b.table {
		t := b.t0 + float64(i)*b.step
		if i == len(b.table)-1 {
			t = b.t1
		}
		b.table[i] = predictor.Predict(t)
	}
	return b, nil
}

// MustBake is Bake for package-level curves built from constant points.
func MustBake(kind Kind, resolution int, points ...Point) *Baked {
	b, err := Bake(kind, resolution, points...)
	if err != nil {
		panic(err)
	}
	return b
}

// Sample returns the curve value at t, clamped to the baked range and
// linearly blended between neighbouring table entries.
func (b *Baked) Sample(t float64) float64 {
	if t <= b.t0 {
		return b.table[0]
	}
	if t >= b.t1 {
		return b.table[len(b.table)-1]
	}
	pos := (t - b.t0) / b.step
	i := int(pos)
	if i >= len(b.table)-1 {
		return b.table[len(b.table)-1]
	}
	frac := pos - float64(i)
	return b.table[i] + (b.table[i+1]-b.table[i])*frac
}

// Range returns the domain the curve was baked over.
func (b *Baked) Range() (t0, t1 float64) { return b.t0, b.t1 }
