package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/internal/core/config"
	"github.com/zeusync/barrage/internal/core/geom"
)

func testConfig() config.CollisionConfig {
	return config.CollisionConfig{
		LockShards:     4,
		ParallelCutoff: 0,
		SleepSafety:    10,
		WakePeriod:     6,
		Workers:        1,
		Layers: []config.LayerMapping{
			{Bullet: 1, Objects: []uint16{1}},
			{Bullet: 2, Objects: []uint16{2}},
			{Bullet: 3, Objects: []uint16{1, 2}},
		},
	}
}

// place allocates a colliding bullet with its world transform already
// resolved, as the execution pass would leave it.
func place(t *testing.T, a *bullet.Arena, layer uint16, p r2.Vec, radius float64, canSleep bool) bullet.Index {
	t.Helper()
	i, ok := a.AllocateOne()
	require.True(t, ok)
	a.SetCollision(i, layer, geom.Circle(radius), canSleep)
	a.SetLocal(i, geom.Translation(p))
	a.At(i).World = a.At(i).Local
	return i
}

func register(t *testing.T, s *Solver, id uint64, layer ObjectLayer, p r2.Vec, radius float64) (*Collider, Handle) {
	t.Helper()
	c := NewCollider(id, geom.Circle(radius))
	c.SetCenter(p)
	h, err := s.RegisterObject(c, layer)
	require.NoError(t, err)
	return c, h
}

func TestLayerTable(t *testing.T) {
	table := NewLayerTable(testConfig().Layers)
	assert.Equal(t, []ObjectLayer{1, 2}, table.Objects())
	assert.Equal(t, []ObjectLayer{1, 2}, table.Reach(3))
	assert.Empty(t, table.Reach(9))
	assert.True(t, table.Known(2))
	assert.False(t, table.Known(5))
}

func TestZeroSeparationHitsOnlyTouchedCollider(t *testing.T) {
	a := bullet.NewArena(8, nil)
	s := NewSolver(a, testConfig(), nil)
	near, _ := register(t, s, 1, 1, r2.Vec{}, 1)
	far, _ := register(t, s, 2, 2, r2.Vec{X: 10}, 1)
	i := place(t, a, 3, r2.Vec{X: 2}, 1, false)

	st := s.ExecuteCollisionAll(0)
	require.Equal(t, 1, st.Hits)
	require.Equal(t, 1, st.Tested)

	hits := near.Drain(nil)
	require.Len(t, hits, 1)
	assert.Equal(t, a.Ref(i), hits[0].Ref)
	assert.InDelta(t, 0, hits[0].Separation, 1e-12)
	assert.Empty(t, far.Drain(nil))
	assert.Empty(t, near.Drain(nil))
}

func TestLayerFiltering(t *testing.T) {
	a := bullet.NewArena(8, nil)
	s := NewSolver(a, testConfig(), nil)
	c, _ := register(t, s, 1, 2, r2.Vec{}, 5)
	place(t, a, 1, r2.Vec{}, 1, false)
	place(t, a, 0, r2.Vec{}, 1, false)
	place(t, a, 7, r2.Vec{}, 1, false)

	st := s.ExecuteCollisionAll(0)
	require.Zero(t, st.Hits)
	require.Equal(t, 1, st.Tested)
	require.Empty(t, c.Drain(nil))
}

func TestScaledShapes(t *testing.T) {
	a := bullet.NewArena(4, nil)
	s := NewSolver(a, testConfig(), nil)
	c, _ := register(t, s, 1, 1, r2.Vec{}, 1)
	i := place(t, a, 1, r2.Vec{X: 4}, 1, false)

	require.Zero(t, s.ExecuteCollisionAll(0).Hits)
	a.At(i).World = geom.Translation(r2.Vec{X: 4}).Mul(geom.Scaling(3))
	require.Equal(t, 1, s.ExecuteCollisionAll(1).Hits)
	require.Len(t, c.Drain(nil), 1)
}

func TestRegistration(t *testing.T) {
	a := bullet.NewArena(4, nil)
	s := NewSolver(a, testConfig(), nil)

	_, err := s.RegisterObject(NewCollider(1, geom.Circle(1)), 9)
	require.ErrorIs(t, err, ErrUnknownLayer)

	c, h := register(t, s, 1, 1, r2.Vec{}, 1)
	_, err = s.RegisterObject(c, 2)
	require.ErrorIs(t, err, ErrRegistered)
	require.Equal(t, 1, s.Colliders())
	require.True(t, h.Valid())

	place(t, a, 1, r2.Vec{}, 1, false)
	require.True(t, s.UnregisterObject(h))
	require.False(t, s.UnregisterObject(h))
	require.False(t, h.Valid())
	require.Zero(t, s.Colliders())
	require.Zero(t, s.ExecuteCollisionAll(0).Hits)

	h, err = s.RegisterObject(c, 2)
	require.NoError(t, err)
	require.Equal(t, ObjectLayer(2), h.Layer())
	require.Equal(t, 1, s.Colliders())

	place(t, a, 2, r2.Vec{}, 1, false)
	require.Equal(t, 1, s.ExecuteCollisionAll(1).Hits)
	require.Len(t, c.Drain(nil), 1)
	require.True(t, s.UnregisterObject(h))
}

func TestSleepAndWake(t *testing.T) {
	a := bullet.NewArena(16, nil)
	cfg := testConfig()
	s := NewSolver(a, cfg, nil)
	c, _ := register(t, s, 1, 1, r2.Vec{X: 100}, 1)
	i := place(t, a, 1, r2.Vec{}, 1, true)
	awake := place(t, a, 1, r2.Vec{}, 1, false)

	s.ExecuteCollisionAll(0)
	require.True(t, a.Get(i).Collision.Sleeping())
	require.False(t, a.Get(awake).Collision.Sleeping())

	// The collider jumps onto the sleeping bullet. It must be detected
	// within one wake period.
	c.SetCenter(r2.Vec{})
	detected := uint64(0)
	for frame := uint64(1); frame <= uint64(cfg.WakePeriod); frame++ {
		s.ExecuteCollisionAll(frame)
		for _, h := range c.Drain(nil) {
			if h.Ref.Index == i && detected == 0 {
				detected = frame
			}
		}
	}
	require.NotZero(t, detected)
	require.Equal(t, uint64(i)%6, detected%6)
	require.False(t, a.Get(i).Collision.Sleeping())
}

func TestNearBulletStaysAwake(t *testing.T) {
	a := bullet.NewArena(4, nil)
	s := NewSolver(a, testConfig(), nil)
	register(t, s, 1, 1, r2.Vec{X: 8}, 1)
	i := place(t, a, 1, r2.Vec{}, 1, true)

	for frame := uint64(0); frame < 12; frame++ {
		st := s.ExecuteCollisionAll(frame)
		require.Equal(t, 1, st.Tested)
		require.False(t, a.Get(i).Collision.Sleeping())
	}
}

func TestSleepingSkippedOffCycle(t *testing.T) {
	a := bullet.NewArena(4, nil)
	s := NewSolver(a, testConfig(), nil)
	i := place(t, a, 1, r2.Vec{}, 1, true)

	s.ExecuteCollisionAll(0)
	require.True(t, a.Get(i).Collision.Sleeping())

	tested := 0
	for frame := uint64(1); frame <= 12; frame++ {
		st := s.ExecuteCollisionAll(frame)
		tested += st.Tested
		require.Equal(t, 1, st.Tested+st.Skipped)
	}
	require.Equal(t, 2, tested)
}

func TestParallelMatchesSerial(t *testing.T) {
	build := func(workers, cutoff int) (*Solver, *Collider) {
		a := bullet.NewArena(4096, nil)
		cfg := testConfig()
		cfg.Workers, cfg.ParallelCutoff = workers, cutoff
		s := NewSolver(a, cfg, nil)
		c, _ := register(t, s, 3, 1, r2.Vec{}, 20)
		for k := 0; k < 4000; k++ {
			p := r2.Vec{X: float64(k%80) - 40, Y: float64(k/80) - 25}
			place(t, a, 1, p, 0.5, k%2 == 0)
		}
		return s, c
	}

	serial, sc := build(1, 0)
	parallel, pc := build(4, 100)
	for frame := uint64(0); frame < 8; frame++ {
		want := serial.ExecuteCollisionAll(frame)
		got := parallel.ExecuteCollisionAll(frame)
		require.True(t, got.Parallel)
		require.False(t, want.Parallel)
		want.Parallel = true
		require.Equal(t, want, got)
		require.Len(t, pc.Drain(nil), len(sc.Drain(nil)))
	}
}

func BenchmarkExecuteCollisionAll(b *testing.B) {
	a := bullet.NewArena(1<<15, nil)
	cfg := testConfig()
	cfg.Workers, cfg.ParallelCutoff = 0, 4096
	s := NewSolver(a, cfg, nil)
	for id := uint64(0); id < 16; id++ {
		c := NewCollider(id, geom.Circle(8))
		c.SetCenter(r2.Vec{X: float64(id) * 40})
		_, _ = s.RegisterObject(c, 1)
	}
	for k := 0; k < 1<<15; k++ {
		i, _ := a.AllocateOne()
		a.SetCollision(i, 3, geom.Circle(2), k%3 != 0)
		a.At(i).World = geom.Translation(r2.Vec{X: float64(k % 640), Y: float64(k/640) * 4})
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		s.ExecuteCollisionAll(uint64(n))
	}
}
