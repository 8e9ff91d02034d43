package splice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the export driver state.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateRunning
	StateFinalizing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePreparing:
		return "preparing"
	case StateRunning:
		return "running"
	case StateFinalizing:
		return "finalizing"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome is how an export run ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "success"
	}
}

// Event is one item of an export's progress stream. Every stream ends with
// exactly one event whose Done is true.
type Event struct {
	// Progress is exportTime/totalDuration, capped at 1.
	Progress float64
	// Frame is the index of the frame just written.
	Frame int
	// Time is the timeline time of that frame.
	Time float64

	Done    bool
	Outcome Outcome
	// Frames is the number of frames written; set on the final event.
	Frames int
	// Err is the failure reason when Outcome is OutcomeFailed.
	Err error
}

// Exporter drives one export at a time from a frozen snapshot into a sink.
type Exporter struct {
	engine *Engine
	sink   Sink
	log    *logrus.Entry

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewExporter creates an exporter rendering through engine into sink.
func NewExporter(engine *Engine, sink Sink, opts ...Option) *Exporter {
	o := newOptions(opts)
	return &Exporter{
		engine: engine,
		sink:   sink,
		log:    o.log,
	}
}

// State returns the current driver state.
func (x *Exporter) State() State {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state
}

func (x *Exporter) setState(s State) {
	x.mu.Lock()
	x.state = s
	x.mu.Unlock()
	x.log.WithFields(logrus.Fields{
		"function": "setState",
		"state":    s.String(),
	}).Debug("export state")
}

// Start validates cfg and begins exporting snap in the background. The
// returned channel carries progress events and is closed after the final
// event; callers must drain it. Configuration errors, including
// ErrUnsupportedOutputFormat, are returned before anything starts.
func (x *Exporter) Start(ctx context.Context, snap *Snapshot, cfg ExportConfig) (<-chan Event, error) {
	if !supportsFormat(x.sink, cfg.Format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOutputFormat, cfg.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("export config: %w", err)
	}

	x.mu.Lock()
	if x.state != StateIdle {
		x.mu.Unlock()
		return nil, ErrExportRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	x.cancel = cancel
	x.state = StatePreparing
	x.mu.Unlock()

	// The lease is held until the run ends, so preview rendering reports
	// ErrEngineBusy from the moment Start returns.
	x.engine.acquire()
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		final := x.run(ctx, snap, cfg, events)
		cancel()
		x.engine.release()
		x.mu.Lock()
		x.state = StateIdle
		x.cancel = nil
		x.mu.Unlock()
		events <- final
	}()
	return events, nil
}

// Run exports synchronously and returns the final event. Progress events
// are passed to progress when it is non-nil.
func (x *Exporter) Run(ctx context.Context, snap *Snapshot, cfg ExportConfig, progress func(Event)) (Event, error) {
	events, err := x.Start(ctx, snap, cfg)
	if err != nil {
		return Event{Done: true, Outcome: OutcomeFailed, Err: err}, err
	}
	var final Event
	for ev := range events {
		if ev.Done {
			final = ev
			continue
		}
		if progress != nil {
			progress(ev)
		}
	}
	return final, final.Err
}

// Cancel stops a running export before its next frame. The partial output
// is discarded and the exporter returns to idle.
func (x *Exporter) Cancel() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.cancel != nil {
		x.cancel()
	}
}

// run executes the export and returns the final event.
func (x *Exporter) run(ctx context.Context, snap *Snapshot, cfg ExportConfig, events chan<- Event) Event {
	log := x.log.WithFields(logrus.Fields{
		"function": "export",
		"format":   cfg.Format,
		"output":   cfg.Output,
	})
	started := time.Now()

	fail := func(frames int, err error, sinkOpen bool) Event {
		if sinkOpen {
			if abortErr := x.sink.Abort(); abortErr != nil {
				log.WithError(abortErr).Warn("sink abort failed")
			}
		}
		x.engine.comp.pool.Drain()
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, ctx.Err())) {
			log.WithField("frames", frames).Info("export cancelled")
			return Event{Done: true, Outcome: OutcomeCancelled, Frames: frames}
		}
		x.setState(StateFailed)
		log.WithError(err).WithField("frames", frames).Error("export failed")
		return Event{Done: true, Outcome: OutcomeFailed, Frames: frames, Err: err}
	}

	// Preparing.
	if err := snap.Validate(); err != nil {
		return fail(0, fmt.Errorf("snapshot: %w", err), false)
	}
	if len(snap.Clips) == 0 {
		log.Info("empty timeline, nothing to export")
		return Event{Done: true, Outcome: OutcomeSuccess, Progress: 1}
	}
	assets, err := Preload(ctx, snap)
	if err != nil {
		return fail(0, err, false)
	}
	defer assets.Release()

	w, h := cfg.frameSize(snap)
	job, err := newFrameJob(snap, assets, w, h)
	if err != nil {
		return fail(0, err, false)
	}
	job.hardEdges = x.engine.hardEdges || cfg.HardEdgeMasks
	ow, oh := job.outputSize()
	if err := x.sink.Open(SinkConfig{
		Format:    cfg.Format,
		Path:      cfg.Output,
		Width:     ow,
		Height:    oh,
		FrameRate: cfg.FrameRate,
	}); err != nil {
		return fail(0, fmt.Errorf("open sink: %w", err), false)
	}

	// Running.
	x.setState(StateRunning)
	total := snap.TotalDuration()
	step := snap.PlaybackSpeed / cfg.FrameRate
	log.WithFields(logrus.Fields{
		"duration": total,
		"width":    ow,
		"height":   oh,
		"step":     step,
	}).Info("export started")

	frames := 0
	for i := 0; ; i++ {
		t := float64(i) * step
		if t > total {
			break
		}
		if err := ctx.Err(); err != nil {
			return fail(frames, err, true)
		}
		img, err := x.engine.comp.composeFrame(ctx, job, t)
		if err != nil {
			return fail(frames, fmt.Errorf("frame %d at %.4fs: %w", i, t, err), true)
		}
		if err := x.sink.WriteFrame(Frame{Index: i, Time: t, Image: img}); err != nil {
			return fail(frames, fmt.Errorf("write frame %d: %w", i, err), true)
		}
		frames++
		ev := Event{Progress: 1, Frame: i, Time: t}
		if total > 0 {
			ev.Progress = min(t/total, 1)
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	// Finalizing.
	x.setState(StateFinalizing)
	if err := x.sink.Close(); err != nil {
		return fail(frames, fmt.Errorf("close sink: %w", err), true)
	}
	x.engine.comp.pool.Drain()
	log.WithFields(logrus.Fields{
		"frames":  frames,
		"elapsed": time.Since(started),
	}).Info("export finished")
	return Event{Done: true, Outcome: OutcomeSuccess, Progress: 1, Frames: frames}
}
