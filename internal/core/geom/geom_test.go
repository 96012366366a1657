package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func requireVec(t *testing.T, want, got r2.Vec) {
	t.Helper()
	require.InDelta(t, want.X, got.X, 1e-9)
	require.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestAffineCompose(t *testing.T) {
	parent := Translation(r2.Vec{X: 10, Y: 0}).Mul(Rotation(math.Pi / 2))
	child := Translation(r2.Vec{X: 1, Y: 0})

	world := parent.Mul(child)
	requireVec(t, r2.Vec{X: 10, Y: 1}, world.Origin())
	require.InDelta(t, math.Pi/2, world.Angle(), 1e-9)
}

func TestAffineRotateKeepsOrigin(t *testing.T) {
	m := Translation(r2.Vec{X: 3, Y: 4}).Rotate(math.Pi)
	requireVec(t, r2.Vec{X: 3, Y: 4}, m.Origin())
	requireVec(t, r2.Vec{X: -1, Y: 0}, m.ApplyVector(r2.Vec{X: 1}))
}

func TestAffineInverse(t *testing.T) {
	m := Translation(r2.Vec{X: 7, Y: -2}).Mul(Rotation(0.3)).Mul(Scaling(2))
	inv, ok := m.Inverse()
	require.True(t, ok)

	id := inv.Mul(m)
	requireVec(t, r2.Vec{}, id.Origin())
	require.InDelta(t, 1, id.A, 1e-9)
	require.InDelta(t, 0, id.B, 1e-9)
	require.InDelta(t, 0, id.C, 1e-9)
	require.InDelta(t, 1, id.D, 1e-9)

	p := r2.Vec{X: 3, Y: 4}
	requireVec(t, p, inv.Apply(m.Apply(p)))

	_, ok = Scaling(0).Inverse()
	require.False(t, ok)
}

func TestScaleFactor(t *testing.T) {
	require.InDelta(t, 2, Scaling(2).Mul(Rotation(1)).ScaleFactor(), 1e-9)
	require.InDelta(t, 1, Identity().ScaleFactor(), 1e-9)
}

func TestCircleSeparation(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Shape
		pa, pb r2.Vec
		want   float64
	}{
		{"apart", Circle(1), Circle(1), r2.Vec{}, r2.Vec{X: 5}, 3},
		{"touching", Circle(1), Circle(2), r2.Vec{}, r2.Vec{Y: 3}, 0},
		{"overlap", Circle(2), Circle(2), r2.Vec{}, r2.Vec{X: 1}, -3},
		{"point", Circle(0), Circle(1), r2.Vec{X: 1}, r2.Vec{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sep, ok := Separation(tt.a, tt.pa, tt.b, tt.pb)
			require.True(t, ok)
			require.InDelta(t, tt.want, sep, 1e-9)
		})
	}

	_, ok := Separation(Shape{}, r2.Vec{}, Circle(1), r2.Vec{})
	require.False(t, ok)
}
