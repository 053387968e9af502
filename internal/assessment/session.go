// Package assessment sequences the phases of one participant session and
// persists the outcome exactly once.
package assessment

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/nav"
	"github.com/pavelanni/rapm/internal/results"
	"github.com/pavelanni/rapm/internal/section"
)

// ErrAlreadySaved is returned by Save after the first successful call.
var ErrAlreadySaved = errors.New("session already saved")

// ErrNotFinished is returned by Save while a phase is still open.
var ErrNotFinished = errors.New("session has unfinished phases")

// Archive receives every saved session alongside the files on disk.
type Archive interface {
	SaveSession(res model.SessionResult, resultsPath string) error
}

// Session runs the configured phases in order for one participant.
type Session struct {
	ID          string
	Participant model.Participant
	StartedAt   time.Time

	controllers []*section.Controller
	current     int
	saved       bool
	result      model.SessionResult
	paths       results.Paths
}

// New creates a session with one controller per phase. startedAt keys the
// output filenames.
func New(participant model.Participant, phases []model.Phase, navigator *nav.Navigator, startedAt time.Time) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		Participant: participant,
		StartedAt:   startedAt,
	}
	for _, ph := range phases {
		s.controllers = append(s.controllers, section.New(ph, navigator))
	}
	slog.Info("session created", "session", s.ID, "participant", participant.ID,
		"phases", len(phases))
	return s
}

// Current returns the controller of the open phase, or nil when done.
func (s *Session) Current() *section.Controller {
	if s.current >= len(s.controllers) {
		return nil
	}
	return s.controllers[s.current]
}

// PhaseIndex returns the position of the open phase.
func (s *Session) PhaseIndex() int { return s.current }

// PhaseCount returns the number of phases.
func (s *Session) PhaseCount() int { return len(s.controllers) }

// Advance moves past the current phase once it is finalized. It reports
// whether another phase is now open.
func (s *Session) Advance() bool {
	if c := s.Current(); c != nil && c.Finalized() {
		s.current++
	}
	return s.Current() != nil
}

// Done reports whether every phase has been finalized.
func (s *Session) Done() bool {
	for _, c := range s.controllers {
		if !c.Finalized() {
			return false
		}
	}
	return true
}

// Outcomes returns the frozen outcome of every phase in order.
func (s *Session) Outcomes() []model.PhaseOutcome {
	out := make([]model.PhaseOutcome, 0, len(s.controllers))
	for _, c := range s.controllers {
		out = append(out, c.Outcome())
	}
	return out
}

// Saved reports whether Save has succeeded.
func (s *Session) Saved() bool { return s.saved }

// Result returns the record built by Save.
func (s *Session) Result() model.SessionResult { return s.result }

// Paths returns the files written by Save.
func (s *Session) Paths() results.Paths { return s.paths }

// Save writes the results once every phase is finalized. A failure of the
// primary record is returned and Save may be retried; an archive failure is
// only logged. archive may be nil.
func (s *Session) Save(w *results.Writer, archive Archive, now time.Time) (results.Paths, error) {
	if s.saved {
		return s.paths, ErrAlreadySaved
	}
	if !s.Done() {
		return results.Paths{}, ErrNotFinished
	}

	res := results.BuildResult(s.ID, s.Participant, s.Outcomes(), s.StartedAt, now)
	paths, err := w.Save(res)
	if err != nil {
		return results.Paths{}, fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	s.saved = true
	s.result = res
	s.paths = paths

	if archive != nil {
		if err := archive.SaveSession(res, paths.Results); err != nil {
			slog.Warn("session not archived", "session", s.ID, "error", err)
		}
	}
	return paths, nil
}
