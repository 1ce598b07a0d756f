// Package sched provides the single-threaded cooperative runner that backs
// staggered spawns and construction-complete waits. Tasks yield at defined
// points ("wait N seconds", "wait until predicate") and resume on the same
// logical thread when the owner drains the runner from its tick loop. There
// is no preemption and no cancellation beyond owner teardown, so callbacks
// must tolerate firing against already-destroyed state.
package sched

import (
	"container/heap"
	"time"
)

// Clock abstracts time so delay-based behavior is deterministic under test.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a test clock advanced explicitly.
type ManualClock struct {
	now time.Time
}

// NewManualClock starts a manual clock at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type timer struct {
	due time.Time
	seq uint64
	fn  func()
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

type wait struct {
	pred func() bool
	fn   func()
}

// Runner schedules cooperative continuations. All methods must be called
// from the owning logical thread.
type Runner struct {
	clock  Clock
	seq    uint64
	timers timerHeap
	waits  []*wait
}

// NewRunner creates a runner on the given clock, defaulting to wall time.
func NewRunner(clock Clock) *Runner {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Runner{clock: clock}
}

// After schedules fn to run once d has elapsed. Non-positive delays fire on
// the next Advance, preserving enqueue order.
func (r *Runner) After(d time.Duration, fn func()) {
	if r == nil || fn == nil {
		return
	}
	r.seq++
	heap.Push(&r.timers, &timer{due: r.clock.Now().Add(d), seq: r.seq, fn: fn})
}

// Until schedules fn to run the first time pred observes true. The predicate
// is checked on every Advance.
func (r *Runner) Until(pred func() bool, fn func()) {
	if r == nil || pred == nil || fn == nil {
		return
	}
	if pred() {
		fn()
		return
	}
	r.waits = append(r.waits, &wait{pred: pred, fn: fn})
}

// Pending reports how many continuations are waiting to resume.
func (r *Runner) Pending() int {
	if r == nil {
		return 0
	}
	return len(r.timers) + len(r.waits)
}

// Advance resumes every due timer and every satisfied wait. Continuations
// scheduled while draining run on a later Advance, keeping one drain bounded.
func (r *Runner) Advance() {
	if r == nil {
		return
	}
	now := r.clock.Now()

	due := make([]*timer, 0, len(r.timers))
	for len(r.timers) > 0 && !r.timers[0].due.After(now) {
		due = append(due, heap.Pop(&r.timers).(*timer))
	}

	if len(r.waits) > 0 {
		ready := make([]*wait, 0, len(r.waits))
		remaining := r.waits[:0]
		for _, w := range r.waits {
			if w.pred() {
				ready = append(ready, w)
			} else {
				remaining = append(remaining, w)
			}
		}
		r.waits = remaining
		for _, w := range ready {
			w.fn()
		}
	}

	for _, t := range due {
		t.fn()
	}
}
