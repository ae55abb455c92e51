package kws

import "sync"

// FrameSlot is a single-slot, latest-wins mailbox between the capture loop
// and the inference loop. Publishing before the previous frame was taken
// overwrites it; nothing is ever queued. The frame buffer is allocated once.
type FrameSlot struct {
	mu         sync.Mutex
	frame      []float32
	ready      bool
	sealed     bool
	overwrites uint64
}

// NewFrameSlot allocates a slot holding frames of n samples.
func NewFrameSlot(n int) *FrameSlot {
	return &FrameSlot{frame: make([]float32, n)}
}

// Publish copies frame into the slot and marks it ready. It reports whether
// an unconsumed frame was overwritten, and ok is false when the slot is
// sealed and the frame was dropped.
func (s *FrameSlot) Publish(frame []float32) (overwrote, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return false, false
	}
	n := copy(s.frame, frame)
	clear(s.frame[n:])
	overwrote = s.ready
	if overwrote {
		s.overwrites++
	}
	s.ready = true
	return overwrote, true
}

// SealIfEmpty refuses every later Publish, but only if no fresh frame is
// waiting. It reports whether the slot was sealed.
func (s *FrameSlot) SealIfEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return false
	}
	s.sealed = true
	return true
}

// Take copies the fresh frame into dst and clears the ready flag. It returns
// false, leaving dst untouched, when no fresh frame is present.
func (s *FrameSlot) Take(dst []float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return false
	}
	copy(dst, s.frame)
	s.ready = false
	return true
}

// Ready reports whether an unconsumed frame is present.
func (s *FrameSlot) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Overwrites returns how many published frames were replaced before being taken.
func (s *FrameSlot) Overwrites() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overwrites
}

// Len returns the frame length in samples.
func (s *FrameSlot) Len() int { return len(s.frame) }
