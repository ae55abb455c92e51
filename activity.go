package kws

import (
	"sync/atomic"
	"time"
)

// ActivityClock records the time of the last meaningful event as an offset
// from boot. Both loops stamp it concurrently; it never moves backwards.
type ActivityClock struct {
	last atomic.Int64 // nanoseconds since boot
}

// Stamp records now unless a later time is already stored.
func (c *ActivityClock) Stamp(now time.Duration) {
	for {
		cur := c.last.Load()
		if int64(now) <= cur {
			return
		}
		if c.last.CompareAndSwap(cur, int64(now)) {
			return
		}
	}
}

// Last returns the most recent stamp.
func (c *ActivityClock) Last() time.Duration {
	return time.Duration(c.last.Load())
}

// Since returns now minus the last stamp, or zero if the stamp is ahead of now.
func (c *ActivityClock) Since(now time.Duration) time.Duration {
	d := now - c.Last()
	if d < 0 {
		return 0
	}
	return d
}

// Clock returns the time elapsed since boot. It must be monotonic.
type Clock func() time.Duration

// bootClock measures from the moment it is created, using the monotonic
// reading carried by time.Time.
func bootClock() Clock {
	boot := time.Now()
	return func() time.Duration { return time.Since(boot) }
}
