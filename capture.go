package kws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrShortBlock is reported when the capture source ends before a full block.
var ErrShortBlock = errors.New("capture block incomplete")

// CaptureSource delivers little-endian signed 16-bit mono PCM. Read blocks
// until data is available. If the source also implements io.Closer, Engine
// closes it when the run ends so a blocked Read returns.
type CaptureSource interface {
	Read(p []byte) (int, error)
}

// captureScratch is owned by the capture loop and reused every cycle.
type captureScratch struct {
	raw     []byte
	samples []int16
	frame   []float32
}

func newCaptureScratch(n int) captureScratch {
	return captureScratch{
		raw:     make([]byte, n*2),
		samples: make([]int16, n),
		frame:   make([]float32, n),
	}
}

// readBlock fills raw completely. There is no timeout: the source's own
// cadence bounds the wait.
func readBlock(src CaptureSource, raw []byte) error {
	if _, err := io.ReadFull(src, raw); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrShortBlock
		}
		return err
	}
	return nil
}

// captureOnce pulls one block, normalizes it and publishes it. A failed read
// leaves the slot untouched; the next cycle simply tries again. A block that
// completes after the node went to sleep is dropped.
func (e *Engine) captureOnce(ctx context.Context) {
	sc := &e.capture
	if err := readBlock(e.src, sc.raw); err != nil {
		if ctx.Err() != nil {
			return
		}
		e.met.CaptureFailures.Add(ctx, 1)
		e.log.Debug("capture read failed", "err", err)
		e.cb.error(fmt.Errorf("capture: %w", err))
		return
	}
	if ctx.Err() != nil || e.power.State() == Sleeping {
		return
	}
	DecodePCM16(sc.samples, sc.raw)
	Normalize(sc.frame, sc.samples)

	overwrote, ok := e.slot.Publish(sc.frame)
	if !ok {
		// The node decided to sleep while this block was being read.
		return
	}
	if overwrote {
		e.met.SlotOverwrites.Add(ctx, 1)
		e.log.Debug("unconsumed frame overwritten")
	}
	e.activity.Stamp(e.now())
	e.met.FramesCaptured.Add(ctx, 1)
	e.cb.frame()
}

// captureLoop runs until ctx ends.
func (e *Engine) captureLoop(ctx context.Context) error {
	p := newPacer()
	defer p.stop()
	for ctx.Err() == nil {
		e.captureOnce(ctx)
		if p.wait(ctx, e.cfg.CaptureInterval) != nil {
			break
		}
	}
	return nil
}

// pacer sleeps between cycles on a single reused timer.
type pacer struct {
	t *time.Timer
}

func newPacer() *pacer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &pacer{t: t}
}

func (p *pacer) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	p.t.Reset(d)
	select {
	case <-p.t.C:
		return nil
	case <-ctx.Done():
		p.t.Stop()
		return ctx.Err()
	}
}

func (p *pacer) stop() { p.t.Stop() }
