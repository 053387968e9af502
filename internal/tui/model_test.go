package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	appI18n "github.com/pavelanni/rapm/internal/i18n"
	"github.com/pavelanni/rapm/internal/input"
	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/nav"
	"github.com/pavelanni/rapm/internal/results"
	"github.com/pavelanni/rapm/internal/section"
	"github.com/pavelanni/rapm/internal/timing"
)

var testStart = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type testModel struct {
	*Model
	t     *testing.T
	clock *timing.ManualClock
	dir   string
}

func newTestModel(t *testing.T) *testModel {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("i18n init: %v", err)
	}
	dir := t.TempDir()
	clock := timing.NewManualClock(testStart)
	phases := []model.Phase{
		{
			Name:     model.PhasePractice,
			Items:    testItems("P", 2),
			Duration: time.Minute,
			Policy:   model.Policy{AutoFinishOnAllAnswered: true},
		},
		{
			Name:     model.PhaseFormal,
			Items:    testItems("F", 2),
			Duration: 2 * time.Minute,
			Policy:   model.Policy{RequiresExplicitSubmit: true},
		},
	}
	m := New(Options{
		Phases:           phases,
		Navigator:        nav.New(12),
		Writer:           results.NewWriter(dir),
		Clock:            clock,
		InstructionDelay: time.Second,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &testModel{Model: m, t: t, clock: clock, dir: dir}
}

func (tm *testModel) send(msg tea.Msg) tea.Cmd {
	tm.t.Helper()
	_, cmd := tm.Update(msg)
	return cmd
}

func (tm *testModel) typeText(s string) {
	tm.t.Helper()
	tm.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (tm *testModel) nextFrame() tea.Cmd {
	tm.t.Helper()
	return tm.send(frameMsg(tm.clock.Now()))
}

func (tm *testModel) press(p input.Point) {
	tm.send(tea.MouseMsg{X: p.X, Y: p.Y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func (tm *testModel) release(p input.Point) {
	tm.send(tea.MouseMsg{X: p.X, Y: p.Y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func (tm *testModel) region(kind input.RegionKind, payload int) input.Point {
	tm.t.Helper()
	for _, r := range tm.screen.Regions {
		if r.Kind == kind && r.Payload == payload {
			return center(r.Rect)
		}
	}
	tm.t.Fatalf("no %s region with payload %d on screen", kind, payload)
	return input.Point{}
}

// startPhase fills the form and moves past the practice instruction screen.
func (tm *testModel) startPhase() {
	tm.t.Helper()
	tm.typeText("p01")
	tm.send(tea.KeyMsg{Type: tea.KeyEnter})
	if tm.state != statePhase {
		tm.t.Fatalf("state = %s, want phase", tm.state)
	}
	tm.clock.Advance(time.Second)
	tm.nextFrame()
	tm.send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.nextFrame()
	if got := tm.session.Current().State(); got != section.StateActive {
		tm.t.Fatalf("controller state = %s, want active", got)
	}
}

func TestFormRequiresParticipant(t *testing.T) {
	tm := newTestModel(t)
	tm.send(tea.KeyMsg{Type: tea.KeyEnter})
	if tm.state != stateForm {
		t.Fatalf("state = %s, want form", tm.state)
	}
	if tm.form.err != "Participant ID is required." {
		t.Errorf("form error = %q", tm.form.err)
	}
}

func TestFormCollectsFields(t *testing.T) {
	tm := newTestModel(t)
	tm.typeText("p02")
	tm.send(tea.KeyMsg{Type: tea.KeyTab})
	tm.typeText("31")
	tm.send(tea.KeyMsg{Type: tea.KeyEnter})

	p := tm.session.Participant
	if p.ID != "p02" || p.Age != "31" || p.Session != "S1" {
		t.Errorf("participant = %+v", p)
	}
}

func TestContinueWaitsForInstructionDelay(t *testing.T) {
	tm := newTestModel(t)
	tm.typeText("p01")
	tm.send(tea.KeyMsg{Type: tea.KeyEnter})

	tm.send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.nextFrame()
	if tm.session.Current().State() != section.StateInstruction {
		t.Fatal("continue accepted before the delay")
	}
	if hasKind(tm.screen, input.RegionContinue) {
		t.Error("continue button drawn before the delay")
	}

	tm.clock.Advance(time.Second)
	tm.nextFrame()
	tm.press(tm.region(input.RegionContinue, 0))
	tm.release(tm.region(input.RegionContinue, 0))
	tm.nextFrame()
	if tm.session.Current().State() != section.StateActive {
		t.Error("continue click not applied")
	}
}

func TestClickSelectsOnRelease(t *testing.T) {
	tm := newTestModel(t)
	tm.startPhase()
	ctrl := tm.session.Current()

	at := tm.region(input.RegionOption, 3)
	tm.press(at)
	tm.nextFrame()
	if ctrl.Answers().Len() != 0 {
		t.Fatal("press alone recorded an answer")
	}
	// Holding across frames never clicks.
	tm.send(tea.MouseMsg{X: at.X, Y: at.Y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	tm.nextFrame()
	if ctrl.Answers().Len() != 0 {
		t.Fatal("held button recorded an answer")
	}

	tm.release(at)
	tm.nextFrame()
	if got, ok := ctrl.Answers().Get("P01"); !ok || got != 3 {
		t.Errorf("P01 answer = %d, %v; want 3", got, ok)
	}
	if ctrl.CurrentIndex() != 1 {
		t.Errorf("current = %d, want 1", ctrl.CurrentIndex())
	}
}

func TestOneEventPerFrame(t *testing.T) {
	tests := []struct {
		name  string
		input func(tm *testModel)
	}{
		{
			name: "keys",
			input: func(tm *testModel) {
				tm.typeText("3")
				tm.typeText("5")
			},
		},
		{
			name: "clicks",
			input: func(tm *testModel) {
				first, second := tm.region(input.RegionOption, 3), tm.region(input.RegionOption, 5)
				tm.press(first)
				tm.release(first)
				tm.press(second)
				tm.release(second)
			},
		},
		{
			name: "auto-repeat",
			input: func(tm *testModel) {
				for range 5 {
					tm.typeText("3")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := newTestModel(t)
			tm.startPhase()
			ctrl := tm.session.Current()

			// Everything arrives while P01 is on screen.
			tt.input(tm)
			tm.nextFrame()
			tm.nextFrame()

			if got, ok := ctrl.Answers().Get("P01"); !ok || got != 3 {
				t.Errorf("P01 answer = %d, %v; want 3", got, ok)
			}
			if got, ok := ctrl.Answers().Get("P02"); ok {
				t.Errorf("P02 answered with %d from input aimed at P01", got)
			}
			if ctrl.Finalized() {
				t.Errorf("practice finalized with reason %q", ctrl.Reason())
			}
			if ctrl.CurrentIndex() != 1 {
				t.Errorf("current = %d, want 1", ctrl.CurrentIndex())
			}
		})
	}
}

func TestInputAfterFrameApplies(t *testing.T) {
	tm := newTestModel(t)
	tm.startPhase()
	ctrl := tm.session.Current()

	tm.typeText("2")
	tm.typeText("4")
	tm.nextFrame()
	tm.typeText("4")
	tm.nextFrame()
	if !ctrl.Finalized() || ctrl.Reason() != model.ReasonCompleted {
		t.Fatalf("practice finalized=%v reason=%q", ctrl.Finalized(), ctrl.Reason())
	}
	practice := tm.session.Outcomes()[0]
	if practice.Answers["P01"] != 2 || practice.Answers["P02"] != 4 {
		t.Errorf("answers = %v, want P01=2 P02=4", practice.Answers)
	}
}

func TestInterruptIgnoredDuringPhase(t *testing.T) {
	tm := newTestModel(t)
	tm.startPhase()

	if cmd := tm.send(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd != nil {
		t.Error("ctrl+c produced a command during the phase")
	}
	if tm.Aborted() || tm.state != statePhase {
		t.Errorf("aborted=%v state=%s", tm.Aborted(), tm.state)
	}
}

func TestFullSessionSaves(t *testing.T) {
	tm := newTestModel(t)
	tm.startPhase()

	// Practice finishes on its own.
	tm.typeText("1")
	tm.nextFrame()
	tm.typeText("1")
	tm.nextFrame()
	if tm.session.PhaseIndex() != 1 {
		t.Fatalf("phase index = %d, want 1", tm.session.PhaseIndex())
	}

	// Formal needs an explicit submit.
	tm.clock.Advance(time.Second)
	tm.send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.nextFrame()
	tm.typeText("2")
	tm.nextFrame()
	tm.typeText("1")
	tm.nextFrame()
	formal := tm.session.Current()
	if formal.Finalized() {
		t.Fatal("formal phase finalized without submit")
	}
	if !hasKind(tm.screen, input.RegionSubmit) {
		t.Fatal("submit not drawn with all items answered")
	}

	at := tm.region(input.RegionSubmit, 0)
	tm.press(at)
	tm.release(at)
	cmd := tm.nextFrame()
	if tm.state != stateSaving {
		t.Fatalf("state = %s, want saving", tm.state)
	}
	msg := cmd()
	if _, ok := msg.(savedMsg); !ok {
		t.Fatalf("save returned %T", msg)
	}
	tm.send(msg)

	if tm.state != stateComplete {
		t.Fatalf("state = %s, want complete", tm.state)
	}
	if _, err := os.Stat(tm.Paths().Results); err != nil {
		t.Errorf("results file: %v", err)
	}
	if filepath.Dir(tm.Paths().Results) != tm.dir {
		t.Errorf("results written to %s", tm.Paths().Results)
	}
	if formal.Reason() != model.ReasonSubmitted {
		t.Errorf("formal reason = %q", formal.Reason())
	}

	if cmd := tm.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q on the completion screen did not quit")
	}
}

func TestTimeoutEndsPhase(t *testing.T) {
	tm := newTestModel(t)
	tm.startPhase()
	tm.typeText("5")
	tm.nextFrame()

	tm.clock.Advance(time.Minute)
	tm.typeText("5")
	tm.nextFrame()
	practice := tm.session.Outcomes()[0]
	if practice.Reason != model.ReasonTimeout {
		t.Fatalf("reason = %q, want timeout", practice.Reason)
	}
	if len(practice.Answers) != 1 {
		t.Errorf("answers = %v, want the one given before the deadline", practice.Answers)
	}
}

func TestSaveFailureAllowsRetry(t *testing.T) {
	tm := newTestModel(t)
	tm.send(saveFailedMsg{Err: errors.New("disk full")})
	if tm.state != stateSaveFailed {
		t.Fatalf("state = %s", tm.state)
	}
	if tm.Err() == nil {
		t.Error("Err() = nil after failure")
	}
	cmd := tm.send(tea.KeyMsg{Type: tea.KeyEnter})
	if tm.state != stateSaving || cmd == nil {
		t.Errorf("retry: state = %s, cmd nil = %v", tm.state, cmd == nil)
	}
}

func TestAbortFromForm(t *testing.T) {
	tm := newTestModel(t)
	if cmd := tm.send(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Fatal("ctrl+c on the form did not quit")
	}
	if !tm.Aborted() {
		t.Error("Aborted() = false")
	}
}
