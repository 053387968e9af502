package model

import "time"

// ArchiveExport is the top-level JSON structure for archive export.
type ArchiveExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Sequence   string            `json:"sequence,omitempty"`
	Sessions   []ArchivedSession `json:"sessions"`
}

// ArchivedSession is one stored session with its responses.
type ArchivedSession struct {
	ID           string         `json:"id"`
	Participant  Participant    `json:"participant"`
	StartedAt    time.Time      `json:"started_at"`
	CreatedAt    time.Time      `json:"created_at"`
	ResultsPath  string         `json:"results_path,omitempty"`
	Phases       []PhaseSummary `json:"phases"`
	TotalCorrect int            `json:"total_correct"`
	TotalItems   int            `json:"total_items"`
	Responses    []ResponseRow  `json:"responses,omitempty"`
}

// SessionListEntry is a compact row for listing archived sessions.
type SessionListEntry struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	StartedAt     time.Time `json:"started_at"`
	TotalCorrect  int       `json:"total_correct"`
	TotalItems    int       `json:"total_items"`
}

// Operator is an account allowed to read the archive over HTTP.
type Operator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthToken is a bearer token issued to an operator at login.
type AuthToken struct {
	Hash       string // hex SHA-256 of the bearer token
	OperatorID int64
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
