package chat

import (
	"sync"
	"time"

	"github.com/hostdesk/livechat-service/internal/pkg/clock"
)

// TimerKind identifies a class of session timer.
type TimerKind string

const (
	TimerAssign   TimerKind = "assign"
	TimerTyping   TimerKind = "typing"
	TimerFollowUp TimerKind = "followUp"
	TimerEndChat  TimerKind = "endChat"
	// TimerStatus timers are keyed per message id.
	TimerStatus TimerKind = "status"
)

type timerKey struct {
	kind TimerKind
	ref  int64
}

type timerEntry struct {
	timer clock.Timer
	seq   uint64
}

// Timers keeps at most one pending timer per key and tags every timer with
// the generation it was scheduled in. CancelAll starts a new generation, so a
// callback that raced with it finds its entry gone and does nothing.
type Timers struct {
	clock clock.Clock

	mu      sync.Mutex
	gen     uint64
	seq     uint64
	pending map[timerKey]timerEntry
}

// NewTimers creates an orchestrator on clk.
func NewTimers(clk clock.Clock) *Timers {
	return &Timers{
		clock:   clk,
		pending: make(map[timerKey]timerEntry),
	}
}

// Schedule runs fn after d, replacing any pending timer of kind.
func (t *Timers) Schedule(kind TimerKind, d time.Duration, fn func()) {
	t.ScheduleFor(kind, 0, d, fn)
}

// ScheduleFor is Schedule for a timer keyed by kind and ref.
func (t *Timers) ScheduleFor(kind TimerKind, ref int64, d time.Duration, fn func()) {
	key := timerKey{kind: kind, ref: ref}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.pending[key]; ok {
		existing.timer.Stop()
	}

	t.seq++
	seq, gen := t.seq, t.gen
	timer := t.clock.AfterFunc(d, func() {
		if !t.claim(key, seq, gen) {
			return
		}
		fn()
	})
	t.pending[key] = timerEntry{timer: timer, seq: seq}
}

// claim removes the entry for key if it still belongs to this firing.
func (t *Timers) claim(key timerKey, seq, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.pending[key]
	if !ok || entry.seq != seq || t.gen != gen {
		return false
	}
	delete(t.pending, key)
	return true
}

// Cancel stops the pending timer of kind, if any.
func (t *Timers) Cancel(kind TimerKind) {
	t.CancelFor(kind, 0)
}

// CancelFor stops the pending timer keyed by kind and ref, if any.
func (t *Timers) CancelFor(kind TimerKind, ref int64) {
	key := timerKey{kind: kind, ref: ref}

	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.pending[key]; ok {
		entry.timer.Stop()
		delete(t.pending, key)
	}
}

// CancelAll stops every timer and starts a new generation.
func (t *Timers) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, entry := range t.pending {
		entry.timer.Stop()
		delete(t.pending, key)
	}
	t.gen++
}

// Generation returns the current generation.
func (t *Timers) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// IsPending reports whether a timer of kind is waiting to fire.
func (t *Timers) IsPending(kind TimerKind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pending[timerKey{kind: kind}]
	return ok
}

// Pending returns the number of waiting timers.
func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
