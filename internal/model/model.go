package model

import (
	"time"
)

// OptionCount is the number of answer options every item carries.
const OptionCount = 8

// PhaseName identifies one timed block of the assessment.
type PhaseName string

const (
	// PhasePractice is the warm-up block.
	PhasePractice PhaseName = "practice"
	// PhaseFormal is the scored block.
	PhaseFormal PhaseName = "formal"
)

// FinalizeReason records how a phase was closed.
type FinalizeReason string

const (
	ReasonNone      FinalizeReason = ""
	ReasonTimeout   FinalizeReason = "timeout"
	ReasonCompleted FinalizeReason = "completed"
	ReasonSubmitted FinalizeReason = "submitted"
)

// Item is one question: a prompt asset and eight option assets.
type Item struct {
	ID       string   `json:"id" yaml:"id" validate:"required"`
	Question string   `json:"question_image" yaml:"question_image"`
	Options  []string `json:"options" yaml:"options" validate:"len=8"`
	Correct  *int     `json:"correct,omitempty" yaml:"correct,omitempty" validate:"omitempty,min=1,max=8"`
}

// Policy controls how a phase may end besides timing out.
type Policy struct {
	AutoFinishOnAllAnswered bool `json:"auto_finish_on_all_answered" yaml:"auto_finish_on_all_answered"`
	RequiresExplicitSubmit  bool `json:"requires_explicit_submit" yaml:"requires_explicit_submit"`
}

// TimerDisplay tells the renderer when to show the countdown.
// Zero ShowBelow means always visible; zero RedBelow means never highlighted.
type TimerDisplay struct {
	ShowBelow float64 `json:"show_below,omitempty" yaml:"show_below,omitempty" validate:"gte=0"`
	RedBelow  float64 `json:"red_below,omitempty" yaml:"red_below,omitempty" validate:"gte=0"`
}

// Visible reports whether the countdown is drawn at the given remaining time.
func (t TimerDisplay) Visible(remaining float64) bool {
	return t.ShowBelow == 0 || remaining <= t.ShowBelow
}

// Urgent reports whether the countdown is drawn highlighted.
func (t TimerDisplay) Urgent(remaining float64) bool {
	return t.RedBelow > 0 && remaining <= t.RedBelow
}

// Phase is a fully built, immutable phase configuration.
type Phase struct {
	Name        PhaseName     `validate:"required,oneof=practice formal"`
	Set         string        // set identifier, e.g. "I" or "II"
	Items       []Item        `validate:"min=1,unique=ID,dive"`
	Duration    time.Duration `validate:"gt=0"`
	Policy      Policy
	Timer       TimerDisplay
	Instruction string
	ButtonText  string
	SubmitText  string
}

// Participant is the metadata collected before the session starts.
type Participant struct {
	ID      string `json:"participant_id" yaml:"participant_id" validate:"required,max=64"`
	Age     string `json:"age,omitempty" yaml:"age,omitempty"`
	Gender  string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Session string `json:"session,omitempty" yaml:"session,omitempty"`
	Notes   string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// PhaseOutcome is the frozen state of a finalized phase.
type PhaseOutcome struct {
	Phase        Phase
	Answers      map[string]int
	StartedAt    time.Time
	LastAnswered map[string]time.Time
	FinalizedAt  time.Time
	Reason       FinalizeReason
	Remaining    float64 // seconds left on the clock at finalize
}

// ResponseTime returns seconds from phase start to the item's last answer.
func (o PhaseOutcome) ResponseTime(itemID string) (float64, bool) {
	t, ok := o.LastAnswered[itemID]
	if !ok || o.StartedAt.IsZero() {
		return 0, false
	}
	return t.Sub(o.StartedAt).Seconds(), true
}

// ResponseRow is one line of the primary tabular record.
// Nil pointers are written as empty cells.
type ResponseRow struct {
	ParticipantID string   `json:"participant_id"`
	Phase         string   `json:"phase"`
	ItemID        string   `json:"item_id"`
	Answer        *int     `json:"answer"`
	Correct       *int     `json:"correct"`
	IsCorrect     *bool    `json:"is_correct"`
	ResponseTime  *float64 `json:"response_time_seconds"`
}

// PhaseSummary holds per-phase counts for the summary document.
type PhaseSummary struct {
	Name             string         `json:"name"`
	Set              string         `json:"set"`
	DurationSeconds  float64        `json:"duration_seconds"`
	ItemCount        int            `json:"n_items"`
	AnsweredCount    int            `json:"answered_count"`
	CorrectCount     int            `json:"correct_count"`
	RemainingSeconds float64        `json:"remaining_seconds_at_finalize"`
	FinalizedBy      FinalizeReason `json:"finalized_by"`
}

// Summary is the supplementary session document.
type Summary struct {
	SessionID    string         `json:"session_id,omitempty"`
	Participant  Participant    `json:"participant"`
	TimeCreated  time.Time      `json:"time_created"`
	Phases       []PhaseSummary `json:"phases"`
	TotalCorrect int            `json:"total_correct"`
	TotalItems   int            `json:"total_items"`
}

// SessionResult is produced once after both phases finalize.
type SessionResult struct {
	SessionID string
	StartedAt time.Time
	Rows      []ResponseRow
	Summary   Summary
}
