// Package telemetry exports per-frame simulation statistics as CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

// FrameStats is one row of the frame log.
type FrameStats struct {
	Frame     uint64 `csv:"frame"`
	Live      int    `csv:"live"`
	Capacity  int    `csv:"capacity"`
	Emitters  int    `csv:"emitters"`
	Refreshed int    `csv:"refreshed"`

	Executed  int `csv:"executed"`
	Behaviors int `csv:"behaviors"`
	Postponed int `csv:"postponed"`

	Deleted    int `csv:"deleted"`
	Effects    int `csv:"effects"`
	Operations int `csv:"operations"`
	Freed      int `csv:"freed"`
	Stale      int `csv:"stale"`

	Tested  int `csv:"tested"`
	Skipped int `csv:"skipped"`
	Hits    int `csv:"hits"`

	Exhausted uint64 `csv:"exhausted"`

	ExecuteMicros   int64 `csv:"execute_us"`
	DrainMicros     int64 `csv:"drain_us"`
	CollisionMicros int64 `csv:"collision_us"`
	TotalMicros     int64 `csv:"total_us"`
}

// Recorder appends FrameStats rows to a writer. A nil *Recorder accepts
// and drops every call, which is how disabled telemetry is represented.
type Recorder struct {
	mu            sync.Mutex
	out           io.Writer
	closer        io.Closer
	headerWritten bool
}

func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{out: w}
}

// NewFileRecorder creates path, and its directory if needed. An empty
// path disables recording.
func NewFileRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating telemetry directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry file: %w", err)
	}
	return &Recorder{out: f, closer: f}, nil
}

func (r *Recorder) Record(stats ...FrameStats) error {
	if r == nil || len(stats) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.headerWritten {
		if err := gocsv.Marshal(stats, r.out); err != nil {
			return fmt.Errorf("writing frame stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(stats, r.out); err != nil {
		return fmt.Errorf("writing frame stats: %w", err)
	}
	return nil
}

func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
