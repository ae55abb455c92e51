package kws

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// errIdle ends the run so the engine can halt.
var errIdle = errors.New("idle timeout")

// inferOnce runs one inference cycle and reports whether the node must
// sleep. A fresh frame always takes priority: the idle check only runs on
// cycles that found the slot empty.
func (e *Engine) inferOnce(ctx context.Context) (sleep bool) {
	if e.slot.Take(e.frame) {
		e.classify(ctx)
		return false
	}
	idle := e.activity.Since(e.now())
	if !e.power.idleExpired(idle) {
		return false
	}
	// A frame published since Take wins over sleep; otherwise the slot is
	// sealed so no capture can land after the transition.
	if !e.slot.SealIfEmpty() {
		return false
	}
	if !e.power.enterSleep() {
		return false
	}
	e.log.Warn("entering deep sleep", "idle", idle, "wake_after", e.cfg.WakeAfter)
	e.met.SleepTransitions.Add(ctx, 1)
	e.cb.sleep(idle)
	return true
}

// classify runs the classifier on the taken frame and acts on the decision.
// Failures are logged and the cycle's action is skipped.
func (e *Engine) classify(ctx context.Context) {
	start := time.Now()
	scores, err := e.clf.Infer(e.frame)
	e.met.InferenceDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		e.classifierFailed(ctx, err)
		return
	}
	d, err := Decide(scores)
	if err != nil {
		e.classifierFailed(ctx, err)
		return
	}

	if err := e.act.Drive(d.Class); err != nil {
		e.log.Warn("output write failed", "class", d.Class, "err", err)
		e.cb.error(fmt.Errorf("actuator: %w", err))
	}
	e.log.Info("word detected",
		"label", d.Class.Label(),
		"class", d.Class.String(),
		"score", fmt.Sprintf("%.4f", d.Score),
	)
	e.met.recordDecision(ctx, d.Class)
	e.activity.Stamp(e.now())
	e.cb.decision(d)
}

func (e *Engine) classifierFailed(ctx context.Context, err error) {
	e.met.ClassifierFailures.Add(ctx, 1)
	e.log.Error("classifier failed", "err", err)
	e.cb.error(fmt.Errorf("classifier: %w", err))
}

// inferenceLoop runs until the node goes idle or ctx ends.
func (e *Engine) inferenceLoop(ctx context.Context) error {
	p := newPacer()
	defer p.stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.inferOnce(ctx) {
			return errIdle
		}
		if err := p.wait(ctx, e.cfg.PollInterval); err != nil {
			return err
		}
	}
}
