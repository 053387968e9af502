// Package timing tracks the clock of a single timed phase.
package timing

import (
	"errors"
	"time"
)

// ErrAlreadyInitialized is returned when a phase clock is started twice.
var ErrAlreadyInitialized = errors.New("section timing already initialized")

// SectionTiming owns a phase's start time, deadline and per-item answer timestamps.
type SectionTiming struct {
	start        time.Time
	deadline     time.Time
	initialized  bool
	lastAnswered map[string]time.Time
}

// New returns an uninitialized SectionTiming.
func New() *SectionTiming {
	return &SectionTiming{lastAnswered: make(map[string]time.Time)}
}

// Initialize fixes the start time and deadline. It may only be called once.
func (t *SectionTiming) Initialize(start time.Time, duration time.Duration) error {
	if t.initialized {
		return ErrAlreadyInitialized
	}
	t.start = start
	t.deadline = start.Add(duration)
	t.initialized = true
	return nil
}

// Initialized reports whether Initialize has been called.
func (t *SectionTiming) Initialized() bool {
	return t.initialized
}

// Start returns the phase start time (zero before Initialize).
func (t *SectionTiming) Start() time.Time {
	return t.start
}

// Deadline returns the absolute time the phase is forced to finalize.
func (t *SectionTiming) Deadline() time.Time {
	return t.deadline
}

// RemainingSeconds returns max(0, deadline-now), or 0 before Initialize.
func (t *SectionTiming) RemainingSeconds(now time.Time) float64 {
	if !t.initialized {
		return 0
	}
	left := t.deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return left.Seconds()
}

// RecordAnswerTime stores now as the item's last answer time, overwriting any earlier one.
func (t *SectionTiming) RecordAnswerTime(itemID string, now time.Time) {
	t.lastAnswered[itemID] = now
}

// LastAnswered returns the last answer time for an item.
func (t *SectionTiming) LastAnswered(itemID string) (time.Time, bool) {
	ts, ok := t.lastAnswered[itemID]
	return ts, ok
}

// Elapsed returns the time from phase start to the item's last answer.
func (t *SectionTiming) Elapsed(itemID string) (time.Duration, bool) {
	ts, ok := t.lastAnswered[itemID]
	if !ok || !t.initialized {
		return 0, false
	}
	return ts.Sub(t.start), true
}

// Snapshot returns a copy of the last-answered map.
func (t *SectionTiming) Snapshot() map[string]time.Time {
	out := make(map[string]time.Time, len(t.lastAnswered))
	for k, v := range t.lastAnswered {
		out[k] = v
	}
	return out
}
