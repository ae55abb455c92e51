package kws

import "time"

// Callbacks are invoked synchronously from the loop that produced the event,
// so OnError may run on either loop. Keep them short; a slow callback delays
// that loop's next cycle. All fields are optional (nil is allowed).
type Callbacks struct {
	OnFrame func()

	// OnDecision receives the command chosen for a frame, after the outputs
	// were driven.
	OnDecision func(d Decision)

	// OnSleep is called once when the node decides to halt, before Halt.
	OnSleep func(idle time.Duration)

	// OnError receives soft failures: capture reads, classifier runs and
	// output writes. None of them stop the node.
	OnError func(err error)
}

func (cb *Callbacks) frame() {
	if cb.OnFrame != nil {
		cb.OnFrame()
	}
}

func (cb *Callbacks) decision(d Decision) {
	if cb.OnDecision != nil {
		cb.OnDecision(d)
	}
}

func (cb *Callbacks) sleep(idle time.Duration) {
	if cb.OnSleep != nil {
		cb.OnSleep(idle)
	}
}

func (cb *Callbacks) error(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}
