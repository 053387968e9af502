// Package section drives a single timed phase: the instruction screen, the
// answer/navigation loop and the one-way transition to finalized.
package section

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/nav"
	"github.com/pavelanni/rapm/internal/timing"
)

// State is the controller's position in the phase lifecycle.
type State int

const (
	StateInstruction State = iota
	StateActive
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateInstruction:
		return "instruction"
	case StateActive:
		return "active"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller owns the mutable state of one phase. It never draws and never
// reads input itself; callers hand it one resolved event per frame.
type Controller struct {
	phase   model.Phase
	nav     *nav.Navigator
	timing  *timing.SectionTiming
	answers *AnswerStore

	state       State
	current     int
	offset      int
	reason      model.FinalizeReason
	finalizedAt time.Time
	remaining   float64
}

// New returns a controller in StateInstruction. The phase must be valid:
// at least one item, unique ids, positive duration.
func New(phase model.Phase, navigator *nav.Navigator) *Controller {
	if len(phase.Items) == 0 {
		panic("section: phase " + string(phase.Name) + " has no items")
	}
	if navigator == nil {
		navigator = nav.New(nav.DefaultMaxVisible)
	}
	return &Controller{
		phase:   phase,
		nav:     navigator,
		timing:  timing.New(),
		answers: NewAnswerStore(),
		state:   StateInstruction,
	}
}

// Phase returns the phase configuration.
func (c *Controller) Phase() model.Phase { return c.phase }

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Finalized reports whether the phase is closed.
func (c *Controller) Finalized() bool { return c.state == StateFinalized }

// Reason returns why the phase was finalized.
func (c *Controller) Reason() model.FinalizeReason { return c.reason }

// CurrentIndex returns the index of the displayed item.
func (c *Controller) CurrentIndex() int { return c.current }

// Offset returns the pagination offset of the navigation strip.
func (c *Controller) Offset() int { return c.offset }

// Answers exposes the answer store for reading.
func (c *Controller) Answers() *AnswerStore { return c.answers }

// Timing exposes the phase clock for reading.
func (c *Controller) Timing() *timing.SectionTiming { return c.timing }

// AllAnswered reports whether every item has an answer.
func (c *Controller) AllAnswered() bool {
	return c.answers.Len() == len(c.phase.Items)
}

// SubmitVisible reports whether the submit affordance is exposed.
func (c *Controller) SubmitVisible() bool {
	return c.state == StateActive && c.phase.Policy.RequiresExplicitSubmit && c.AllAnswered()
}

// Step applies at most one state transition for the frame sampled at now.
// In StateActive the deadline is consulted before the event: once the clock
// has run out the phase finalizes and the event is dropped.
func (c *Controller) Step(now time.Time, ev Event) State {
	switch c.state {
	case StateInstruction:
		if ev.Kind == EventContinue {
			c.begin(now)
		}
		return c.state
	case StateFinalized:
		return c.state
	}

	if c.timing.RemainingSeconds(now) <= 0 {
		c.finalize(now, model.ReasonTimeout)
		return c.state
	}

	switch ev.Kind {
	case EventSelectOption:
		c.selectOption(now, ev.Value)
	case EventSubmit:
		if c.phase.Policy.RequiresExplicitSubmit && c.AllAnswered() {
			c.finalize(now, model.ReasonSubmitted)
		} else {
			slog.Debug("submit ignored", "phase", c.phase.Name,
				"answered", c.answers.Len(), "total", len(c.phase.Items))
		}
	case EventPageLeft:
		c.offset = c.nav.PageLeft(c.offset, len(c.phase.Items))
	case EventPageRight:
		c.offset = c.nav.PageRight(c.offset, len(c.phase.Items))
	case EventJump:
		if ev.Value >= 0 && ev.Value < len(c.phase.Items) {
			c.current = ev.Value
			c.offset = c.nav.CenterOffset(ev.Value, len(c.phase.Items))
		}
	}
	return c.state
}

func (c *Controller) begin(now time.Time) {
	if err := c.timing.Initialize(now, c.phase.Duration); err != nil {
		// begin is only reachable from StateInstruction.
		panic(fmt.Sprintf("section: %v", err))
	}
	c.state = StateActive
	c.current = 0
	c.offset = 0
	slog.Info("phase started", "phase", c.phase.Name,
		"items", len(c.phase.Items), "duration", c.phase.Duration)
}

func (c *Controller) selectOption(now time.Time, option int) {
	item := c.phase.Items[c.current]
	if option < 1 || option > len(item.Options) {
		slog.Debug("option out of range", "item", item.ID, "option", option)
		return
	}
	c.answers.Set(item.ID, option)
	c.timing.RecordAnswerTime(item.ID, now)
	slog.Debug("answer recorded", "phase", c.phase.Name, "item", item.ID, "option", option)

	if !c.AllAnswered() {
		next := c.nav.FindNextUnanswered(c.phase.Items, c.answers, c.current)
		c.current = next
		c.offset = c.nav.CenterOffset(next, len(c.phase.Items))
		return
	}
	if c.phase.Policy.AutoFinishOnAllAnswered {
		c.finalize(now, model.ReasonCompleted)
	}
}

func (c *Controller) finalize(now time.Time, reason model.FinalizeReason) {
	c.remaining = c.timing.RemainingSeconds(now)
	c.state = StateFinalized
	c.reason = reason
	c.finalizedAt = now
	slog.Info("phase finalized", "phase", c.phase.Name, "reason", reason,
		"answered", c.answers.Len(), "total", len(c.phase.Items))
}

// Outcome returns the frozen phase record. It is only meaningful once the
// controller is finalized.
func (c *Controller) Outcome() model.PhaseOutcome {
	return model.PhaseOutcome{
		Phase:        c.phase,
		Answers:      c.answers.Snapshot(),
		StartedAt:    c.timing.Start(),
		LastAnswered: c.timing.Snapshot(),
		FinalizedAt:  c.finalizedAt,
		Reason:       c.reason,
		Remaining:    c.remaining,
	}
}
