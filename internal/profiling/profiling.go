package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Per-tick timers. Generation workers and the main loop record into the same
// table, so access is locked.

type entry struct {
	total time.Duration
	calls int
}

var (
	mu     sync.Mutex
	totals = make(map[string]entry)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("world.Tick")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		e := totals[name]
		e.total += d
		e.calls++
		totals[name] = e
		mu.Unlock()
	}
}

// Reset clears all totals. Call at the start of a reporting window.
func Reset() {
	mu.Lock()
	clear(totals)
	mu.Unlock()
}

// Sample is one named timer.
type Sample struct {
	Name  string
	Total time.Duration
	Calls int
}

// Snapshot returns the current totals, largest first.
func Snapshot() []Sample {
	mu.Lock()
	out := make([]Sample, 0, len(totals))
	for k, v := range totals {
		out = append(out, Sample{Name: k, Total: v.total, Calls: v.calls})
	}
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats the n largest totals.
// Output looks like "world.Tick:4.2ms/60, meshing.GenerateMarchingCubes:2.1ms/12"
func TopN(n int) string {
	ss := Snapshot()
	if n > len(ss) {
		n = len(ss)
	}
	parts := make([]string, 0, n)
	for _, s := range ss[:n] {
		ms := float64(s.Total.Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms/%d", s.Name, ms, s.Calls))
	}
	return strings.Join(parts, ", ")
}
