package kws

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPowerManager_SleepsOnce(t *testing.T) {
	p := newPowerManager(5 * time.Second)
	if p.State() != Awake {
		t.Fatalf("initial state = %v", p.State())
	}
	if p.idleExpired(5 * time.Second) {
		t.Error("idle equal to the timeout expired; it must be exceeded")
	}
	if !p.idleExpired(5*time.Second + time.Millisecond) {
		t.Error("idle past the timeout did not expire")
	}
	if !p.enterSleep() {
		t.Fatal("first enterSleep = false")
	}
	if p.enterSleep() {
		t.Error("second enterSleep = true")
	}
	if p.State() != Sleeping {
		t.Errorf("state = %v, want SLEEPING", p.State())
	}
}

func TestTimerWake(t *testing.T) {
	var w TimerWake
	if err := w.Halt(context.Background()); err == nil {
		t.Error("Halt without Arm succeeded")
	}
	if err := w.Arm(0); err == nil {
		t.Error("Arm(0) succeeded")
	}
	if err := w.Arm(10 * time.Millisecond); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	start := time.Now()
	if err := w.Halt(context.Background()); err != nil {
		t.Fatalf("Halt: %v", err)
	}
	if el := time.Since(start); el < 10*time.Millisecond {
		t.Errorf("Halt returned after %v, before the timer", el)
	}
}

func TestTimerWake_HaltCanceled(t *testing.T) {
	var w TimerWake
	_ = w.Arm(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Halt(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Halt = %v, want context.Canceled", err)
	}
}

func TestPowerStateString(t *testing.T) {
	if Awake.String() != "AWAKE" || Sleeping.String() != "SLEEPING" {
		t.Errorf("names: %v %v", Awake, Sleeping)
	}
}
