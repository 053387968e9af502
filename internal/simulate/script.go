// Package simulate replays a scripted participant against a simulated clock,
// exercising the same controllers and writers as an interactive run.
package simulate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/rapm/internal/config"
	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/section"
)

// Action names accepted in a script.
const (
	ActionContinue  = "continue"
	ActionSelect    = "select"
	ActionSubmit    = "submit"
	ActionPageLeft  = "page_left"
	ActionPageRight = "page_right"
	ActionJump      = "jump"
)

// Script is a participant plus the events to feed each phase in order.
// Phases without an entry receive no events and run until they time out.
type Script struct {
	Participant model.Participant `yaml:"participant" validate:"required"`
	Phases      []PhaseScript     `yaml:"phases" validate:"dive"`
}

// PhaseScript lists the events of one phase.
type PhaseScript struct {
	Events []ScriptEvent `yaml:"events" validate:"dive"`
}

// ScriptEvent fires on the first frame at least At seconds after the phase
// was opened. Value is the option number for select and the zero-based item
// index for jump.
type ScriptEvent struct {
	At     float64 `yaml:"at" validate:"gte=0"`
	Action string  `yaml:"action" validate:"required,oneof=continue select submit page_left page_right jump"`
	Value  int     `yaml:"value,omitempty" validate:"gte=0"`
}

// Event converts the scripted action to a controller event.
func (e ScriptEvent) Event() section.Event {
	switch e.Action {
	case ActionContinue:
		return section.Continue()
	case ActionSelect:
		return section.SelectOption(e.Value)
	case ActionSubmit:
		return section.Submit()
	case ActionPageLeft:
		return section.PageLeft()
	case ActionPageRight:
		return section.PageRight()
	case ActionJump:
		return section.Jump(e.Value)
	}
	return section.NoEvent
}

func (e ScriptEvent) offset() time.Duration {
	return time.Duration(e.At * float64(time.Second))
}

// ReadScript reads and validates a script file.
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if err := config.Validate(s); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

// WriteScript marshals s to YAML at path.
func WriteScript(path string, s *Script) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling script: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	return nil
}

// DefaultScript answers every item with its keyed option, or option 1 when
// no key is known, spending think seconds per item, and submits where the
// phase requires it.
func DefaultScript(participant model.Participant, phases []model.Phase, think float64) *Script {
	s := &Script{Participant: participant}
	for _, ph := range phases {
		ps := PhaseScript{Events: []ScriptEvent{{At: 0, Action: ActionContinue}}}
		at := 0.0
		for _, it := range ph.Items {
			at += think
			choice := 1
			if it.Correct != nil {
				choice = *it.Correct
			}
			ps.Events = append(ps.Events, ScriptEvent{At: at, Action: ActionSelect, Value: choice})
		}
		if ph.Policy.RequiresExplicitSubmit {
			ps.Events = append(ps.Events, ScriptEvent{At: at + think, Action: ActionSubmit})
		}
		s.Phases = append(s.Phases, ps)
	}
	return s
}
