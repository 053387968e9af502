package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pavelanni/rapm/internal/assessment"
	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/section"
	"github.com/pavelanni/rapm/internal/timing"
)

// DefaultStep is the simulated frame length.
const DefaultStep = 100 * time.Millisecond

// Runner plays a script through every phase of a session.
type Runner struct {
	clock timing.Clock
}

// NewRunner returns a runner reading the given clock. A nil clock is
// replaced by a SteppingClock starting now and advancing DefaultStep per
// frame, so timeouts are reached without waiting.
func NewRunner(clock timing.Clock) *Runner {
	if clock == nil {
		clock = timing.NewSteppingClock(time.Now(), DefaultStep)
	}
	return &Runner{clock: clock}
}

// Clock returns the clock driving the runner.
func (r *Runner) Clock() timing.Clock { return r.clock }

// Run drives each open phase of sess to finalization. The session is left
// ready for Save.
func (r *Runner) Run(ctx context.Context, sess *assessment.Session, script *Script) error {
	for i := 0; sess.Current() != nil; i++ {
		ctrl := sess.Current()
		var events []ScriptEvent
		if i < len(script.Phases) {
			events = script.Phases[i].Events
		}
		in := &scriptInput{events: events}
		rend := &logRenderer{}
		if err := ctrl.Run(ctx, r.clock, in, rend, section.WithFrameInterval(0)); err != nil {
			return fmt.Errorf("simulating phase %s: %w", ctrl.Phase().Name, err)
		}
		out := ctrl.Outcome()
		slog.Info("simulated phase finished", "phase", out.Phase.Name, "reason", out.Reason,
			"answered", len(out.Answers), "frames", rend.frames, "unused_events", len(in.events))
		sess.Advance()
	}
	return nil
}

// scriptInput releases at most one due event per frame.
type scriptInput struct {
	events  []ScriptEvent
	started bool
	start   time.Time
}

func (s *scriptInput) Poll(now time.Time) (section.Event, bool) {
	if !s.started {
		s.started = true
		s.start = now
	}
	if len(s.events) == 0 || now.Sub(s.start) < s.events[0].offset() {
		return section.NoEvent, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev.Event(), true
}

// logRenderer counts frames and logs visible changes at debug level.
type logRenderer struct {
	frames  int
	state   section.State
	current int
	answers int
}

func (l *logRenderer) Render(v section.View) {
	l.frames++
	if l.frames > 1 && v.State == l.state && v.Current == l.current && v.AnsweredCount == l.answers {
		return
	}
	l.state, l.current, l.answers = v.State, v.Current, v.AnsweredCount
	slog.Debug("frame", "phase", v.Phase, "state", v.State, "item", itemID(v),
		"answered", v.AnsweredCount, "total", v.Total, "remaining", v.Remaining)
}

func itemID(v section.View) string {
	if v.State == section.StateInstruction {
		return ""
	}
	return v.Item.ID
}

// Summary reports the outcome of each phase in a form suitable for printing.
func Summary(outcomes []model.PhaseOutcome) []string {
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		correct := 0
		for _, it := range o.Phase.Items {
			if a, ok := o.Answers[it.ID]; ok && it.Correct != nil && a == *it.Correct {
				correct++
			}
		}
		lines = append(lines, fmt.Sprintf("%-8s %-9s answered %d/%d, correct %d, %.1fs left",
			o.Phase.Name, o.Reason, len(o.Answers), len(o.Phase.Items), correct, o.Remaining))
	}
	return lines
}
