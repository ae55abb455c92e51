package kws

import (
	"errors"
	"testing"
)

func activeCount(lines [NumCommands]*MemoryLine) int {
	n := 0
	for _, l := range lines {
		if l.Active() {
			n++
		}
	}
	return n
}

func TestActuator_MutualExclusion(t *testing.T) {
	mem, lines := MemoryLines(DefaultOutputPins)
	a, err := NewActuator(lines)
	if err != nil {
		t.Fatalf("NewActuator: %v", err)
	}
	if _, ok := a.Active(); ok {
		t.Error("Active reported a class before the first Drive")
	}
	for _, c := range []Class{Right, Forward, Left, Left, Back} {
		if err := a.Drive(c); err != nil {
			t.Fatalf("Drive(%v): %v", c, err)
		}
		if n := activeCount(mem); n != 1 {
			t.Fatalf("after Drive(%v): %d lines active, want 1", c, n)
		}
		if !mem[c].Active() {
			t.Errorf("after Drive(%v): line %v inactive", c, c)
		}
		if got, ok := a.Active(); !ok || got != c {
			t.Errorf("Active = %v/%v, want %v", got, ok, c)
		}
	}
}

func TestActuator_InvalidClass(t *testing.T) {
	_, lines := MemoryLines(DefaultOutputPins)
	a, _ := NewActuator(lines)
	if err := a.Drive(Class(4)); err == nil {
		t.Error("Drive(4) succeeded")
	}
}

func TestNewActuator_NilLine(t *testing.T) {
	_, lines := MemoryLines(DefaultOutputPins)
	lines[2] = nil
	if _, err := NewActuator(lines); err == nil {
		t.Error("NewActuator accepted a nil line")
	}
}

type failingLine struct{ MemoryLine }

func (l *failingLine) Set(active bool) error {
	_ = l.MemoryLine.Set(active)
	return errors.New("gpio busy")
}

func TestActuator_LineErrorStillDrivesOthers(t *testing.T) {
	mem, lines := MemoryLines(DefaultOutputPins)
	bad := &failingLine{}
	bad.on.Store(true)
	lines[Back] = bad
	a, _ := NewActuator(lines)

	if err := a.Drive(Left); err == nil {
		t.Fatal("Drive did not report the line error")
	}
	if !mem[Left].Active() {
		t.Error("target line not driven after another line failed")
	}
	if bad.Active() {
		t.Error("failing line left active")
	}
}
