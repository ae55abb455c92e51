package kws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ErrEngineUsed is returned when Run is called a second time. After a sleep
// the node restarts from initialization, so a new Engine is required.
var ErrEngineUsed = errors.New("engine already ran; create a new one")

// Engine wires the capture loop, the shared frame slot, the inference loop
// and the power manager. All buffers are allocated by New.
type Engine struct {
	cfg  Config
	src  CaptureSource
	clf  Classifier
	act  *Actuator
	wake WakeTimer

	slot     *FrameSlot
	activity ActivityClock
	power    *powerManager

	capture captureScratch // capture loop only
	frame   []float32      // inference loop only

	now Clock
	log *slog.Logger
	met *Metrics
	cb  Callbacks

	started atomic.Bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the metric instruments. Default: instruments on the
// global OpenTelemetry meter provider.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.met = m }
}

// WithCallbacks sets event callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(e *Engine) { e.cb = cb }
}

// WithClock replaces the boot clock. c must be monotonic.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.now = c }
}

// New validates cfg and allocates every buffer the loops use. lines are
// indexed by Class.
func New(cfg Config, src CaptureSource, clf Classifier, lines [NumCommands]OutputLine, wake WakeTimer, opts ...Option) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if src == nil || clf == nil || wake == nil {
		return nil, errors.New("capture source, classifier and wake timer are required")
	}
	act, err := NewActuator(lines)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		src:     src,
		clf:     clf,
		act:     act,
		wake:    wake,
		slot:    NewFrameSlot(cfg.BlockSamples),
		power:   newPowerManager(cfg.IdleTimeout),
		capture: newCaptureScratch(cfg.BlockSamples),
		frame:   make([]float32, cfg.BlockSamples),
	}
	for _, o := range opts {
		o(e)
	}
	if e.now == nil {
		e.now = bootClock()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.met == nil {
		e.met = defaultMetrics()
	}
	return e, nil
}

// Run arms the wake timer and runs both loops until the node goes idle or
// ctx ends. On idle it stops both loops, halts on the wake timer and returns
// ErrSleeping once the timer fires; the caller then restarts from New.
// If the capture source implements io.Closer, Run closes it and waits for
// the capture loop to exit. Otherwise a Read still blocked when Run returns
// is abandoned; whatever it delivers later is dropped.
func (e *Engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrEngineUsed
	}
	if err := e.wake.Arm(e.cfg.WakeAfter); err != nil {
		return fmt.Errorf("arm wake timer: %w", err)
	}
	e.activity.Stamp(e.now())
	e.log.Info("keyword spotter running",
		"sample_rate", e.cfg.SampleRate,
		"block_samples", e.cfg.BlockSamples,
		"idle_timeout", e.cfg.IdleTimeout,
	)

	// The capture loop stays outside the group: a source without Close may
	// sit in Read indefinitely, and that must not delay the halt.
	g, gctx := errgroup.WithContext(ctx)
	captureDone := make(chan struct{})
	go func() {
		defer close(captureDone)
		_ = e.captureLoop(gctx)
	}()
	g.Go(func() error { return e.inferenceLoop(gctx) })

	err := g.Wait()
	if c, ok := e.src.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil {
			e.log.Debug("close capture source", "err", cerr)
		}
		<-captureDone
	}
	if !errors.Is(err, errIdle) {
		return err
	}
	if err := e.wake.Halt(ctx); err != nil {
		return fmt.Errorf("halt: %w", err)
	}
	e.log.Info("wake timer fired")
	return ErrSleeping
}

// State returns the current power state.
func (e *Engine) State() PowerState { return e.power.State() }

// Activity returns the activity clock.
func (e *Engine) Activity() *ActivityClock { return &e.activity }

// Actuator returns the output actuator.
func (e *Engine) Actuator() *Actuator { return e.act }
