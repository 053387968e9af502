package timing

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestRemainingBeforeInitialize(t *testing.T) {
	st := New()
	if got := st.RemainingSeconds(t0); got != 0 {
		t.Errorf("RemainingSeconds before Initialize = %v, want 0", got)
	}
	if st.Initialized() {
		t.Error("expected uninitialized timing")
	}
}

func TestInitializeTwice(t *testing.T) {
	st := New()
	if err := st.Initialize(t0, time.Minute); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	err := st.Initialize(t0.Add(time.Second), time.Hour)
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Initialize error = %v, want ErrAlreadyInitialized", err)
	}
	if !st.Deadline().Equal(t0.Add(time.Minute)) {
		t.Errorf("deadline moved to %v", st.Deadline())
	}
}

func TestMonotonicCountdown(t *testing.T) {
	st := New()
	if err := st.Initialize(t0, 10*time.Second); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	prev := st.RemainingSeconds(t0)
	if prev != 10 {
		t.Fatalf("RemainingSeconds at start = %v, want 10", prev)
	}
	for ms := 0; ms <= 15000; ms += 250 {
		now := t0.Add(time.Duration(ms) * time.Millisecond)
		got := st.RemainingSeconds(now)
		if got > prev {
			t.Fatalf("remaining increased at %dms: %v > %v", ms, got, prev)
		}
		if ms >= 10000 && got != 0 {
			t.Fatalf("remaining at %dms = %v, want 0", ms, got)
		}
		prev = got
	}
}

func TestCompressedDurationMidpoint(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
	}{
		{"debug", 10 * time.Second},
		{"normal", 600 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := New()
			if err := st.Initialize(t0, tt.duration); err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			mid := t0.Add(tt.duration / 2)
			want := tt.duration.Seconds() / 2
			if got := st.RemainingSeconds(mid); got != want {
				t.Errorf("RemainingSeconds(mid) = %v, want %v", got, want)
			}
		})
	}
}

func TestRecordAnswerTimeOverwrites(t *testing.T) {
	st := New()
	if err := st.Initialize(t0, time.Minute); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	st.RecordAnswerTime("F01", t0.Add(3*time.Second))
	st.RecordAnswerTime("F01", t0.Add(7*time.Second))

	got, ok := st.Elapsed("F01")
	if !ok {
		t.Fatal("expected elapsed for F01")
	}
	if got != 7*time.Second {
		t.Errorf("Elapsed = %v, want 7s", got)
	}
	if _, ok := st.Elapsed("F02"); ok {
		t.Error("expected no elapsed for unanswered item")
	}

	snap := st.Snapshot()
	snap["F01"] = t0
	if ts, _ := st.LastAnswered("F01"); !ts.Equal(t0.Add(7 * time.Second)) {
		t.Error("Snapshot must not alias internal state")
	}
}

func TestSteppingClock(t *testing.T) {
	c := NewSteppingClock(t0, 100*time.Millisecond)
	first := c.Now()
	second := c.Now()
	if !first.Equal(t0) {
		t.Errorf("first read = %v, want %v", first, t0)
	}
	if second.Sub(first) != 100*time.Millisecond {
		t.Errorf("step = %v, want 100ms", second.Sub(first))
	}
}
