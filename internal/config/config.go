// Package config handles reading and writing the assessment sequence file
// and turning it into validated phases.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/rapm/internal/model"
)

// Sequence is the top-level structure of the sequence file. JSON is valid
// YAML, so the older sequence.json layout loads unchanged.
type Sequence struct {
	Practice    PhaseConfig `yaml:"practice" json:"practice"`
	Formal      PhaseConfig `yaml:"formal" json:"formal"`
	AnswersFile string      `yaml:"answers_file,omitempty" json:"answers_file,omitempty"`

	// baseDir resolves relative asset and answer paths.
	baseDir string
}

// PhaseConfig is one phase as written in the sequence file.
type PhaseConfig struct {
	Set                  string             `yaml:"set"`
	Count                int                `yaml:"count,omitempty"`
	Pattern              string             `yaml:"pattern,omitempty"`
	Instruction          string             `yaml:"instruction,omitempty"`
	ButtonText           string             `yaml:"button_text,omitempty"`
	SubmitText           string             `yaml:"submit_text,omitempty"`
	TimeLimitMinutes     float64            `yaml:"time_limit_minutes"`
	DebugDurationSeconds float64            `yaml:"debug_duration_seconds,omitempty"`
	Policy               model.Policy       `yaml:"policy"`
	Timer                model.TimerDisplay `yaml:"timer,omitempty"`
	DebugTimer           model.TimerDisplay `yaml:"debug_timer,omitempty"`
	Items                []model.Item       `yaml:"items,omitempty"`
}

const (
	defaultPracticeDebugSeconds = 10
	defaultFormalDebugSeconds   = 25
)

// ReadSequence reads and parses the sequence file at path. Relative paths
// inside the file are resolved against the file's directory.
func ReadSequence(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sequence: %w", err)
	}

	var seq Sequence
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("parsing sequence: %w", err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving sequence directory: %w", err)
	}
	seq.baseDir = abs
	return &seq, nil
}

// WriteSequence writes seq to path, creating parent directories.
func WriteSequence(path string, seq *Sequence) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating sequence directory: %w", err)
	}
	data, err := yaml.Marshal(seq)
	if err != nil {
		return fmt.Errorf("marshalling sequence: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing sequence: %w", err)
	}
	return nil
}

// BaseDir returns the directory relative paths resolve against.
func (s *Sequence) BaseDir() string {
	return s.baseDir
}

// Resolve makes p absolute against the sequence directory.
func (s *Sequence) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || s.baseDir == "" {
		return p
	}
	return filepath.Join(s.baseDir, p)
}

// Phases builds the practice and formal phases in order. In debug mode each
// phase's duration and timer thresholds are replaced by their debug values
// before anything starts; the timing code is the same either way.
func (s *Sequence) Phases(debug bool) ([]model.Phase, error) {
	var key []int
	if s.AnswersFile != "" {
		k, err := LoadAnswers(s.Resolve(s.AnswersFile))
		if err != nil {
			return nil, fmt.Errorf("loading answer key: %w", err)
		}
		key = k
	}

	practiceCount := s.Practice.Count
	if len(s.Practice.Items) > 0 && s.Practice.Pattern == "" {
		practiceCount = len(s.Practice.Items)
	}

	practice, err := s.buildPhase(model.PhasePractice, s.Practice, key, 0, "P", defaultPracticeDebugSeconds, debug)
	if err != nil {
		return nil, err
	}
	formal, err := s.buildPhase(model.PhaseFormal, s.Formal, key, practiceCount, "F", defaultFormalDebugSeconds, debug)
	if err != nil {
		return nil, err
	}

	phases := []model.Phase{practice, formal}
	for _, ph := range phases {
		if err := ValidatePhase(ph); err != nil {
			return nil, err
		}
	}
	return phases, nil
}

func (s *Sequence) buildPhase(name model.PhaseName, pc PhaseConfig, key []int, keyStart int, prefix string, debugSeconds float64, debug bool) (model.Phase, error) {
	items := pc.Items
	if pc.Pattern != "" && pc.Count > 0 {
		items = BuildItems(s.Resolve(pc.Pattern), pc.Count, key, keyStart, prefix)
	} else {
		items = s.resolveItems(items)
	}
	if len(items) == 0 {
		return model.Phase{}, fmt.Errorf("phase %s: no items configured", name)
	}

	duration := time.Duration(pc.TimeLimitMinutes * float64(time.Minute))
	timer := pc.Timer
	if debug {
		if pc.DebugDurationSeconds > 0 {
			debugSeconds = pc.DebugDurationSeconds
		}
		duration = time.Duration(debugSeconds * float64(time.Second))
		timer = pc.DebugTimer
	}

	return model.Phase{
		Name:        name,
		Set:         pc.Set,
		Items:       items,
		Duration:    duration,
		Policy:      pc.Policy,
		Timer:       timer,
		Instruction: pc.Instruction,
		ButtonText:  pc.ButtonText,
		SubmitText:  pc.SubmitText,
	}, nil
}

func (s *Sequence) resolveItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i, it := range items {
		opts := make([]string, len(it.Options))
		for k, o := range it.Options {
			opts[k] = s.Resolve(o)
		}
		out[i] = model.Item{
			ID:       it.ID,
			Question: s.Resolve(it.Question),
			Options:  opts,
			Correct:  it.Correct,
		}
	}
	return out
}

// DefaultSequence returns the reference two-phase configuration: a 12-item
// practice set that finishes itself once complete, and a 36-item formal set
// that waits for an explicit submit.
func DefaultSequence() *Sequence {
	return &Sequence{
		AnswersFile: "answers.txt",
		Practice: PhaseConfig{
			Set:              "I",
			Count:            12,
			Pattern:          "stimuli/images/RAPM_p{XX}-{Y}.png",
			Instruction:      "Each puzzle has a piece missing. Choose the option that completes the pattern.\nYou have 10 minutes for the practice set.",
			ButtonText:       "Start practice",
			SubmitText:       "Finish practice",
			TimeLimitMinutes: 10,
			Policy:           model.Policy{AutoFinishOnAllAnswered: true},
		},
		Formal: PhaseConfig{
			Set:              "II",
			Count:            36,
			Pattern:          "stimuli/images/RAPM_t{XX}-{Y}.png",
			Instruction:      "The formal set has 36 puzzles and 40 minutes.\nYou may move between puzzles and change answers until you submit.",
			ButtonText:       "Start",
			SubmitText:       "Submit answers",
			TimeLimitMinutes: 40,
			Policy:           model.Policy{RequiresExplicitSubmit: true},
			Timer:            model.TimerDisplay{ShowBelow: 600, RedBelow: 60},
			DebugTimer:       model.TimerDisplay{ShowBelow: 20, RedBelow: 5},
		},
	}
}
