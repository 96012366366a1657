package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zeusync/barrage/internal/core/collision"
	"github.com/zeusync/barrage/internal/core/emitter"
	"github.com/zeusync/barrage/internal/core/geom"
	"github.com/zeusync/barrage/internal/core/observability/log"
	"github.com/zeusync/barrage/internal/core/simulation"
	"github.com/zeusync/barrage/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config overlay")
	frames := flag.Uint64("frames", 3600, "frames to simulate, 0 runs until interrupted")
	emitters := flag.Int("emitters", 8, "number of ring emitters")
	colliders := flag.Int("colliders", 4, "number of orbiting colliders")
	bullets := flag.Int("bullets", 24, "bullets per ring shot")
	verify := flag.Bool("verify", false, "check tree integrity after every frame")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	world, err := injector.InitializeWorld(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting simulation:", err)
		os.Exit(1)
	}

	if err = run(ctx, world, options{
		frames:    *frames,
		emitters:  *emitters,
		colliders: *colliders,
		bullets:   *bullets,
		verify:    *verify,
	}); err != nil {
		world.Logger().Error("simulation failed", log.Error(err))
	}
	if cerr := world.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "Error closing simulation:", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

type options struct {
	frames    uint64
	emitters  int
	colliders int
	bullets   int
	verify    bool
}

type orbiter struct {
	collider *collision.Collider
	handle   collision.Handle
	radius   float64
	rate     float64
}

func run(ctx context.Context, w *simulation.World, opts options) error {
	logger := w.Logger()
	a := w.Arena()

	type source struct {
		emitter *emitter.Emitter
		pattern *ring
	}
	sources := make([]source, 0, opts.emitters)
	for k := 0; k < opts.emitters; k++ {
		e, err := w.CreateEmitter(fmt.Sprintf("ring-%d", k))
		if err != nil {
			return err
		}
		theta := 2 * math.Pi * float64(k) / float64(max(opts.emitters, 1))
		sources = append(sources, source{
			emitter: e,
			pattern: &ring{
				origin:   r2.Vec{X: 200 * math.Cos(theta), Y: 200 * math.Sin(theta)},
				count:    opts.bullets,
				speed:    2 + float64(k%3),
				spin:     0.01 * float64(k%5-2),
				interval: uint64(6 + k%5),
				lifetime: 240,
				radius:   2,
				layer:    3,
			},
		})
	}

	orbiters := make([]orbiter, 0, opts.colliders)
	for k := 0; k < opts.colliders; k++ {
		c := collision.NewCollider(uint64(k), geom.Circle(8))
		layer := collision.ObjectLayer(1 + k%2)
		h, err := w.RegisterObject(c, layer)
		if err != nil {
			return err
		}
		orbiters = append(orbiters, orbiter{collider: c, handle: h, radius: 60 + 30*float64(k), rate: 0.02 * float64(k+1)})
	}

	var (
		fired uint64
		hits  uint64
		start = time.Now()
	)
	for frame := uint64(0); opts.frames == 0 || frame < opts.frames; frame++ {
		select {
		case <-ctx.Done():
			logger.Info("interrupted", log.Uint64("frame", frame))
			return nil
		default:
		}

		for _, o := range orbiters {
			theta := o.rate * float64(frame)
			o.collider.SetCenter(r2.Vec{X: o.radius * math.Cos(theta), Y: o.radius * math.Sin(theta)})
		}
		for _, s := range sources {
			fired += uint64(s.pattern.fire(a, s.emitter, frame))
		}

		stats, err := w.Step()
		if err != nil {
			return err
		}
		for _, o := range orbiters {
			hits += uint64(len(o.collider.Drain(nil)))
		}
		if opts.verify {
			if err = w.Verify(); err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
		}

		if frame%60 == 0 {
			logger.Info("frame",
				log.Uint64("frame", stats.Frame),
				log.Int("live", stats.Live),
				log.Int("executed", stats.Executed),
				log.Int("deleted", stats.Deleted),
				log.Int("effects", stats.Effects),
				log.Int("tested", stats.Tested),
				log.Int("skipped", stats.Skipped),
				log.Int("hits", stats.Hits),
				log.Int64("total_us", stats.TotalMicros),
			)
		}
	}

	for _, o := range orbiters {
		w.UnregisterObject(o.handle)
	}
	logger.Info("simulation finished",
		log.Uint64("frames", w.Frame()),
		log.Uint64("fired", fired),
		log.Uint64("hits", hits),
		log.Uint64("exhausted", a.Exhausted()),
		log.Duration("elapsed", time.Since(start)),
	)
	return nil
}
