// Package simulation owns one running bullet simulation: the arena, the
// emitters, and the per-frame passes over them.
package simulation

import (
	"fmt"
	"time"

	"github.com/zeusync/barrage/internal/core/bullet"
	"github.com/zeusync/barrage/internal/core/collision"
	"github.com/zeusync/barrage/internal/core/config"
	"github.com/zeusync/barrage/internal/core/deferred"
	"github.com/zeusync/barrage/internal/core/emitter"
	"github.com/zeusync/barrage/internal/core/events"
	"github.com/zeusync/barrage/internal/core/events/bus"
	"github.com/zeusync/barrage/internal/core/execution"
	"github.com/zeusync/barrage/internal/core/observability/log"
	"github.com/zeusync/barrage/internal/core/telemetry"
)

// World is the context object every subsystem hangs off. Nothing in it
// is safe for concurrent use except the schedule calls, which behaviors
// reach through the deferred queue.
type World struct {
	cfg    *config.Config
	logger log.Log
	bus    bus.EventBus

	arena    *bullet.Arena
	emitters *emitter.Registry
	executor *execution.Executor
	queue    *deferred.Queue
	solver   *collision.Solver
	recorder *telemetry.Recorder

	// TimeScale is the engine-wide time multiplier. Each emitter's own
	// TimeScale is applied on top of it.
	TimeScale float64

	frame     uint64
	exhausted uint64
	jobs      []execution.Job
	closed    bool
}

func New(cfg *config.Config, logger log.Log, eventBus bus.EventBus) (*World, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if eventBus == nil {
		eventBus = bus.New()
	}

	recorder, err := newRecorder(cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	arena := bullet.NewArena(cfg.Arena.Capacity, logger.With(log.String("component", "arena")))
	emitters := emitter.NewRegistry(arena, cfg.Emitter, logger.With(log.String("component", "emitter")))
	queue := deferred.NewQueue(arena, emitters, cfg.Deferred.Shards, logger.With(log.String("component", "deferred")))

	w := &World{
		cfg:       cfg,
		logger:    logger,
		bus:       eventBus,
		arena:     arena,
		emitters:  emitters,
		executor:  execution.NewExecutor(arena, queue, cfg.Execution.Workers, logger.With(log.String("component", "execution"))),
		queue:     queue,
		solver:    collision.NewSolver(arena, cfg.Collision, logger.With(log.String("component", "collision"))),
		recorder:  recorder,
		TimeScale: cfg.Execution.TimeScale,
	}

	logger.Info("simulation started",
		log.Int("capacity", cfg.Arena.Capacity),
		log.Int("deferred_shards", cfg.Deferred.Shards),
		log.Int("lock_shards", cfg.Collision.LockShards),
		log.Bool("telemetry", recorder != nil),
	)
	return w, nil
}

func newRecorder(cfg config.TelemetryConfig) (*telemetry.Recorder, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return telemetry.NewFileRecorder(cfg.Path)
}

func (w *World) Config() *config.Config        { return w.cfg }
func (w *World) Logger() log.Log               { return w.logger }
func (w *World) Arena() *bullet.Arena          { return w.arena }
func (w *World) Emitters() *emitter.Registry   { return w.emitters }
func (w *World) Solver() *collision.Solver     { return w.solver }
func (w *World) Queue() *deferred.Queue        { return w.queue }
func (w *World) Bus() bus.EventBus             { return w.bus }
func (w *World) Frame() uint64                 { return w.frame }
func (w *World) Executor() *execution.Executor { return w.executor }

// Step runs one frame: emitter bookkeeping, behavior execution, the
// deferred drain, then collision.
func (w *World) Step() (telemetry.FrameStats, error) {
	if w.closed {
		return telemetry.FrameStats{}, ErrClosed
	}
	start := time.Now()
	stats := telemetry.FrameStats{Frame: w.frame}

	stats.Refreshed = w.emitters.Bookkeep()

	w.jobs = w.jobs[:0]
	w.emitters.Each(func(e *emitter.Emitter) bool {
		w.jobs = append(w.jobs, execution.Job{Root: e.Root(), TimeScale: w.TimeScale * e.TimeScale})
		return true
	})
	mark := time.Now()
	exec := w.executor.ExecuteAll(w.jobs)
	stats.ExecuteMicros = time.Since(mark).Microseconds()

	mark = time.Now()
	drain := w.queue.PerformScheduled()
	stats.DrainMicros = time.Since(mark).Microseconds()

	mark = time.Now()
	col := w.solver.ExecuteCollisionAll(w.frame)
	stats.CollisionMicros = time.Since(mark).Microseconds()

	stats.Executed, stats.Behaviors, stats.Postponed = exec.Entities, exec.Behaviors, exec.Postponed
	stats.Deleted, stats.Effects, stats.Operations = drain.Deleted, drain.Effects, drain.Operations
	stats.Freed, stats.Stale = drain.Freed, drain.Stale
	stats.Tested, stats.Skipped, stats.Hits = col.Tested, col.Skipped, col.Hits
	stats.Live = w.arena.Live()
	stats.Capacity = w.arena.Capacity()
	stats.Emitters = w.emitters.Len()
	stats.Exhausted = w.reportExhaustion()
	stats.TotalMicros = time.Since(start).Microseconds()

	w.frame++

	if err := w.recorder.Record(stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// reportExhaustion logs and publishes failed allocations since the last
// frame, once per frame rather than once per allocation.
func (w *World) reportExhaustion() uint64 {
	total := w.arena.Exhausted()
	failed := total - w.exhausted
	w.exhausted = total
	if failed == 0 {
		return 0
	}
	w.logger.Warn("arena exhausted, bullets dropped",
		log.Uint64("frame", w.frame),
		log.Uint64("failed", failed),
		log.Int("capacity", w.arena.Capacity()),
	)
	w.publish(events.NewCapacityExhausted(events.CapacityExhausted{
		Frame:    w.frame,
		Failed:   failed,
		Capacity: w.arena.Capacity(),
		Live:     w.arena.Live(),
	}))
	return failed
}

func (w *World) publish(e bus.Event) {
	if err := w.bus.Publish(e); err != nil {
		w.logger.Warn("event handler failed", log.String("type", e.Type()), log.Error(err))
	}
}

// CreateEmitter registers a new emitter.
func (w *World) CreateEmitter(name string) (*emitter.Emitter, error) {
	if w.closed {
		return nil, ErrClosed
	}
	e, err := w.emitters.Create(name)
	if err != nil {
		return nil, err
	}
	w.publish(events.NewEmitterCreated(events.EmitterCreated{
		ID:         e.ID(),
		Name:       e.Name(),
		Primordial: e.IsPrimordial(),
	}))
	return e, nil
}

// RemoveEmitter destroys e with its own default action.
func (w *World) RemoveEmitter(e *emitter.Emitter, useEffect bool) error {
	if e == nil {
		return emitter.ErrUnknownEmitter
	}
	return w.RemoveEmitterWith(e, e.Action, useEffect)
}

// RemoveEmitterWith destroys e under action. It must not be called while
// Step is running.
func (w *World) RemoveEmitterWith(e *emitter.Emitter, action emitter.DeleteAction, useEffect bool) error {
	if err := w.emitters.Remove(e, action, useEffect); err != nil {
		return fmt.Errorf("remove emitter: %w", err)
	}
	w.publish(events.NewEmitterRemoved(events.EmitterRemoved{
		ID:     e.ID(),
		Name:   e.Name(),
		Action: action.String(),
		Effect: useEffect,
	}))
	return nil
}

func (w *World) ClearBullets(e *emitter.Emitter, useEffect bool) int {
	n := w.emitters.ClearBullets(e, useEffect)
	if n > 0 {
		w.publish(events.NewBulletsCleared(events.BulletsCleared{ID: e.ID(), Removed: n, Effect: useEffect}))
	}
	return n
}

func (w *World) ClearAllBullets(useEffect bool) int {
	n := w.emitters.ClearAll(useEffect)
	if n > 0 {
		w.publish(events.NewBulletsCleared(events.BulletsCleared{Removed: n, Effect: useEffect}))
	}
	return n
}

// Execute runs a single tree outside of Step, for schedulers that drive
// emitters themselves.
func (w *World) Execute(root bullet.Index, timeScale float64) execution.Stats {
	return w.executor.Execute(root, timeScale)
}

func (w *World) ScheduleDeletion(ref bullet.Ref, useEffect bool) {
	w.queue.ScheduleDeletion(ref, useEffect)
}

func (w *World) ScheduleOperation(ref bullet.Ref, id deferred.OperationID) {
	w.queue.ScheduleOperation(ref, id)
}

func (w *World) RegisterOperation(name string, op deferred.Operation) (deferred.OperationID, error) {
	return w.queue.RegisterOperation(name, op)
}

// PerformScheduled drains the deferred queue outside of Step.
func (w *World) PerformScheduled() deferred.DrainStats {
	return w.queue.PerformScheduled()
}

func (w *World) RegisterObject(c *collision.Collider, layer collision.ObjectLayer) (collision.Handle, error) {
	return w.solver.RegisterObject(c, layer)
}

func (w *World) UnregisterObject(h collision.Handle) bool {
	return w.solver.UnregisterObject(h)
}

// Verify checks tree linkage and that every live entity belongs to an
// emitter. Entities built by a caller but not yet inherited count as
// orphans, so call it between frames.
func (w *World) Verify() error {
	if err := w.arena.Verify(); err != nil {
		return err
	}
	orphans := 0
	first := bullet.Nil
	w.arena.Each(func(i bullet.Index, _ *bullet.Entity) bool {
		if !w.emitters.IsRoot(w.arena.Root(i)) {
			if orphans == 0 {
				first = i
			}
			orphans++
		}
		return true
	})
	if orphans > 0 {
		return fmt.Errorf("%w: %d entities, first %d", ErrOrphan, orphans, first)
	}
	return nil
}

// Close tears down every emitter and flushes telemetry. It is safe to
// call more than once.
func (w *World) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	for _, e := range w.emitters.Emitters(nil) {
		if err := w.emitters.Remove(e, emitter.ClearMyBullets, false); err != nil {
			w.logger.Warn("emitter teardown failed", log.String("id", e.ID()), log.Error(err))
		}
	}

	err := w.recorder.Close()
	w.logger.Info("simulation closed",
		log.Uint64("frames", w.frame),
		log.Int("live", w.arena.Live()),
		log.Uint64("allocations", w.arena.Allocations()),
	)
	_ = w.logger.Sync()
	return err
}
