package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavelanni/rapm/internal/assessment"
	appI18n "github.com/pavelanni/rapm/internal/i18n"
	"github.com/pavelanni/rapm/internal/input"
	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/nav"
	"github.com/pavelanni/rapm/internal/results"
	"github.com/pavelanni/rapm/internal/section"
	"github.com/pavelanni/rapm/internal/timing"
)

// DefaultFrameInterval is roughly 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// DefaultInstructionDelay is how long an instruction screen stays up before
// its continue button appears.
const DefaultInstructionDelay = time.Second

type screenState int

const (
	stateForm screenState = iota
	statePhase
	stateSaving
	stateSaveFailed
	stateComplete
)

func (s screenState) String() string {
	switch s {
	case stateForm:
		return "form"
	case statePhase:
		return "phase"
	case stateSaving:
		return "saving"
	case stateSaveFailed:
		return "save_failed"
	case stateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Options configures a Model.
type Options struct {
	Phases    []model.Phase
	Navigator *nav.Navigator
	Writer    *results.Writer
	Archive   assessment.Archive // may be nil

	// Clock defaults to the system clock.
	Clock            timing.Clock
	FrameInterval    time.Duration
	InstructionDelay time.Duration
	OptionColumns    int

	// Participant pre-fills the form.
	Participant model.Participant
	// Context carries the display language.
	Context context.Context
	Keys    *KeyMap
}

// Model is the Bubble Tea model for one participant session: the
// metadata form, each phase in turn, saving and the completion screen.
type Model struct {
	opts   Options
	ctx    context.Context
	clock  timing.Clock
	keys   KeyMap
	layout Layout

	state   screenState
	form    formModel
	session *assessment.Session

	detector         input.EdgeDetector
	instructionShown time.Time
	screen           Screen

	// pending is the one event resolved against screen. Every frame clears it.
	pending section.Event

	paths   results.Paths
	err     error
	aborted bool
}

// New creates a model showing the participant form.
func New(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = timing.SystemClock{}
	}
	if opts.Navigator == nil {
		opts.Navigator = nav.New(nav.DefaultMaxVisible)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.InstructionDelay < 0 {
		opts.InstructionDelay = 0
	}
	keys := DefaultKeyMap
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	cache := newAssetCache()
	return &Model{
		opts:   opts,
		ctx:    opts.Context,
		clock:  opts.Clock,
		keys:   keys,
		layout: Layout{Columns: opts.OptionColumns, Exists: cache.Exists},
		state:  stateForm,
		form:   newForm(keys, opts.Participant),
	}
}

// Paths returns the files written for the session, if any.
func (m *Model) Paths() results.Paths { return m.paths }

// Err returns the last save error when the participant left without a
// successful save.
func (m *Model) Err() error { return m.err }

// Aborted reports whether the program was left before the session finished.
func (m *Model) Aborted() bool { return m.aborted }

// Session returns the running session, nil until the form is confirmed.
func (m *Model) Session() *assessment.Session { return m.session }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Width = msg.Width
		if m.state == statePhase {
			m.screen = m.render(m.clock.Now())
		}
		return m, nil

	case frameMsg:
		if m.state != statePhase {
			return m, nil
		}
		return m, m.frame()

	case savedMsg:
		m.paths = msg.Paths
		m.err = nil
		m.state = stateComplete
		slog.Info("session complete", "session", m.session.ID, "results", msg.Paths.Results)
		return m, nil

	case saveFailedMsg:
		m.err = msg.Err
		m.state = stateSaveFailed
		slog.Error("failed to save results", "error", msg.Err)
		return m, nil

	case tea.MouseMsg:
		if m.state == statePhase {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == stateForm {
		var cmd tea.Cmd
		m.form, _, cmd = m.form.update(m.ctx, msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateForm:
		if key.Matches(msg, m.keys.Abort) {
			m.aborted = true
			return m, tea.Quit
		}
		var (
			p   *model.Participant
			cmd tea.Cmd
		)
		m.form, p, cmd = m.form.update(m.ctx, msg)
		if p != nil {
			return m, m.start(*p)
		}
		return m, cmd

	case statePhase:
		if key.Matches(msg, m.keys.Abort) {
			slog.Debug("interrupt ignored during phase")
			return m, nil
		}
		if ev, ok := m.keyEvent(msg); ok {
			m.offer(ev)
		}
		return m, nil

	case stateSaveFailed:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.state = stateSaving
			return m, m.save()
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Abort):
			m.aborted = true
			return m, tea.Quit
		}

	case stateComplete:
		if key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Abort) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) keyEvent(msg tea.KeyMsg) (section.Event, bool) {
	ctrl := m.session.Current()
	if ctrl == nil {
		return section.NoEvent, false
	}
	if ctrl.State() == section.StateInstruction {
		if key.Matches(msg, m.keys.Confirm) {
			return section.Continue(), true
		}
		return section.NoEvent, false
	}
	if n := m.keys.optionFor(msg); n > 0 {
		return section.SelectOption(n), true
	}
	switch {
	case key.Matches(msg, m.keys.PageLeft):
		return section.PageLeft(), true
	case key.Matches(msg, m.keys.PageRight):
		return section.PageRight(), true
	case key.Matches(msg, m.keys.Confirm):
		return section.Submit(), true
	}
	return section.NoEvent, false
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	at := input.Point{X: msg.X, Y: msg.Y}
	var (
		click input.Click
		ok    bool
	)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		click, ok = m.detector.Sample(true, at)
	case tea.MouseActionRelease:
		click, ok = m.detector.Sample(false, at)
	case tea.MouseActionMotion:
		if !m.detector.Pressed() {
			return
		}
		click, ok = m.detector.Sample(true, at)
	}
	if !ok {
		return
	}
	if ev, hit := m.screen.Resolve(click.At, m.opts.Navigator); hit {
		m.offer(ev)
	}
}

// offer keeps ev for the next frame unless an event is already waiting.
// Later input was aimed at a screen that the waiting event may change.
func (m *Model) offer(ev section.Event) {
	if m.pending.Kind != section.EventNone {
		slog.Debug("input dropped, frame already has an event", "event", ev, "pending", m.pending)
		return
	}
	m.pending = ev
}

func (m *Model) start(p model.Participant) tea.Cmd {
	now := m.clock.Now()
	m.session = assessment.New(p, m.opts.Phases, m.opts.Navigator, now)
	m.state = statePhase
	m.instructionShown = now
	m.screen = m.render(now)
	return m.tick()
}

// frame runs one loop iteration: sample the clock, apply the pending event
// if any, then render.
func (m *Model) frame() tea.Cmd {
	now := m.clock.Now()
	ctrl := m.session.Current()

	ev := m.pending
	m.pending = section.NoEvent
	if ev.Kind == section.EventContinue && now.Sub(m.instructionShown) < m.opts.InstructionDelay {
		ev = section.NoEvent
	}
	ctrl.Step(now, ev)

	if ctrl.Finalized() {
		m.detector.Reset()
		if !m.session.Advance() {
			m.state = stateSaving
			return m.save()
		}
		m.instructionShown = now
	}
	m.screen = m.render(now)
	return m.tick()
}

func (m *Model) render(now time.Time) Screen {
	ctrl := m.session.Current()
	if ctrl == nil {
		return Screen{}
	}
	v := ctrl.View(now)
	if v.State == section.StateInstruction {
		return m.layout.Instruction(m.ctx, v, now.Sub(m.instructionShown) >= m.opts.InstructionDelay)
	}
	return m.layout.Active(m.ctx, v)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) save() tea.Cmd {
	sess, w, archive, clock := m.session, m.opts.Writer, m.opts.Archive, m.clock
	return func() tea.Msg {
		paths, err := sess.Save(w, archive, clock.Now())
		if err != nil {
			return saveFailedMsg{Err: err}
		}
		return savedMsg{Paths: paths}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.state {
	case stateForm:
		return m.form.view(m.ctx)
	case statePhase:
		return m.screen.Content
	case stateSaving:
		return "\n  " + dimStyle.Render(appI18n.T(m.ctx, "Saving")) + "\n"
	case stateSaveFailed:
		return "\n  " + errorStyle.Render(appI18n.Td(m.ctx, "SaveFailed", map[string]any{"Error": m.err})) +
			"\n\n  " + dimStyle.Render(appI18n.T(m.ctx, "RetryHint")) + "\n"
	case stateComplete:
		return "\n  " + titleStyle.Render(appI18n.T(m.ctx, "CompleteTitle")) +
			"\n\n  " + textStyle.Render(appI18n.T(m.ctx, "CompleteThanks")) +
			"\n\n  " + successStyle.Render(appI18n.Td(m.ctx, "ResultsSaved", map[string]any{"Path": m.paths.Results})) +
			"\n\n  " + dimStyle.Render(appI18n.T(m.ctx, "PressQuit")) + "\n"
	}
	return ""
}
