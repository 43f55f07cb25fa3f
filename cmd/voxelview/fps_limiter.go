package main

import "time"

// FPSLimiter provides high-precision frame rate limiting
type FPSLimiter struct {
	limit int
	next  time.Time
}

// NewFPSLimiter creates a limiter for limit frames per second. Zero or less
// disables it.
func NewFPSLimiter(limit int) *FPSLimiter {
	return &FPSLimiter{limit: limit}
}

// Wait blocks until the next frame should start. Paused viewers are capped
// at 30 FPS.
func (f *FPSLimiter) Wait(paused bool) {
	limit := f.limit
	if paused && (limit <= 0 || limit > 30) {
		limit = 30
	}
	if limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// busy-wait for the final few microseconds
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// If we're significantly late (e.g., hitch), resync to avoid drift
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
