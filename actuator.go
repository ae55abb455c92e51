package kws

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// OutputLine is one binary indicator output.
type OutputLine interface {
	Set(active bool) error
}

// Actuator drives NumCommands mutually exclusive output lines.
type Actuator struct {
	mu     sync.Mutex
	lines  [NumCommands]OutputLine
	active Class
	driven bool
}

// NewActuator returns an actuator over lines, indexed by Class.
func NewActuator(lines [NumCommands]OutputLine) (*Actuator, error) {
	for i, l := range lines {
		if l == nil {
			return nil, fmt.Errorf("output line %d (%s) is nil", i, Class(i))
		}
	}
	return &Actuator{lines: lines}, nil
}

// Drive sets the line for c active and every other line inactive. The
// inactive lines are written first so two lines are never active at once.
func (a *Actuator) Drive(c Class) error {
	if !c.valid() {
		return fmt.Errorf("drive: invalid %s", c)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i, l := range a.lines {
		if Class(i) == c {
			continue
		}
		if err := l.Set(false); err != nil {
			errs = append(errs, fmt.Errorf("line %s: %w", Class(i), err))
		}
	}
	if err := a.lines[c].Set(true); err != nil {
		errs = append(errs, fmt.Errorf("line %s: %w", c, err))
	}
	a.active = c
	a.driven = true
	return errors.Join(errs...)
}

// Active returns the class last driven, and false before the first Drive.
func (a *Actuator) Active() (Class, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active, a.driven
}

// MemoryLine is an in-process OutputLine. Pin is informational.
type MemoryLine struct {
	Pin int
	on  atomic.Bool
}

func (l *MemoryLine) Set(active bool) error {
	l.on.Store(active)
	return nil
}

// Active reports the line level.
func (l *MemoryLine) Active() bool { return l.on.Load() }

// MemoryLines returns one MemoryLine per pin and the same lines as OutputLines.
func MemoryLines(pins [NumCommands]int) ([NumCommands]*MemoryLine, [NumCommands]OutputLine) {
	var mem [NumCommands]*MemoryLine
	var out [NumCommands]OutputLine
	for i, p := range pins {
		mem[i] = &MemoryLine{Pin: p}
		out[i] = mem[i]
	}
	return mem, out
}
