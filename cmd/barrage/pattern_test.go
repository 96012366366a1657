package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/barrage/internal/core/config"
	"github.com/zeusync/barrage/internal/core/simulation"
)

func newWorld(t *testing.T, capacity int) *simulation.World {
	t.Helper()
	cfg := config.Default()
	cfg.Arena.Capacity = capacity
	w, err := simulation.New(cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestRingFiresOnInterval(t *testing.T) {
	w := newWorld(t, 256)
	e, err := w.CreateEmitter("ring")
	require.NoError(t, err)
	p := &ring{count: 6, speed: 1, interval: 3, lifetime: 10, radius: 1, layer: 1}

	require.Equal(t, 6, p.fire(w.Arena(), e, 0))
	require.Zero(t, p.fire(w.Arena(), e, 1))
	require.Equal(t, 6, p.fire(w.Arena(), e, 3))
	require.Equal(t, 2, e.Count())
	require.Equal(t, 15, w.Arena().Live())
	require.NoError(t, w.Verify())
}

func TestRingDroppedWhenArenaFull(t *testing.T) {
	w := newWorld(t, 8)
	e, err := w.CreateEmitter("ring")
	require.NoError(t, err)
	p := &ring{count: 10, speed: 1, interval: 1, lifetime: 10, radius: 1, layer: 1}

	require.Zero(t, p.fire(w.Arena(), e, 0))
	require.Equal(t, 1, w.Arena().Live())
	require.NoError(t, w.Verify())
}

func TestRunVerifiesEveryFrame(t *testing.T) {
	w := newWorld(t, 4096)
	require.NoError(t, run(context.Background(), w, options{
		frames:    120,
		emitters:  3,
		colliders: 2,
		bullets:   8,
		verify:    true,
	}))
	require.Equal(t, uint64(120), w.Frame())
}
