// Package store archives completed sessions in SQLite so they can be listed,
// exported and served after the participant has gone.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pavelanni/rapm/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		participant_id TEXT NOT NULL,
		age TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		session_label TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		results_path TEXT NOT NULL DEFAULT '',
		total_correct INTEGER NOT NULL DEFAULT 0,
		total_items INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS session_phases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		set_name TEXT NOT NULL DEFAULT '',
		duration_seconds REAL NOT NULL,
		n_items INTEGER NOT NULL,
		answered_count INTEGER NOT NULL,
		correct_count INTEGER NOT NULL,
		remaining_seconds REAL NOT NULL,
		finalized_by TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		phase TEXT NOT NULL,
		item_id TEXT NOT NULL,
		answer INTEGER,
		correct INTEGER,
		is_correct INTEGER,
		response_time REAL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_responses_session ON responses(session_id, position);

	CREATE TABLE IF NOT EXISTS operators (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_tokens (
		token_hash TEXT PRIMARY KEY,
		operator_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at INTEGER NOT NULL,
		FOREIGN KEY (operator_id) REFERENCES operators(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSession archives a built session result in one transaction.
func (s *Store) SaveSession(res model.SessionResult, resultsPath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p := res.Summary.Participant
	_, err = tx.Exec(
		`INSERT INTO sessions (id, participant_id, age, gender, session_label, notes,
		 started_at, created_at, results_path, total_correct, total_items)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SessionID, p.ID, p.Age, p.Gender, p.Session, p.Notes,
		res.StartedAt, res.Summary.TimeCreated, resultsPath,
		res.Summary.TotalCorrect, res.Summary.TotalItems,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for i, ph := range res.Summary.Phases {
		_, err := tx.Exec(
			`INSERT INTO session_phases (session_id, position, name, set_name, duration_seconds,
			 n_items, answered_count, correct_count, remaining_seconds, finalized_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.SessionID, i, ph.Name, ph.Set, ph.DurationSeconds,
			ph.ItemCount, ph.AnsweredCount, ph.CorrectCount, ph.RemainingSeconds, string(ph.FinalizedBy),
		)
		if err != nil {
			return fmt.Errorf("insert phase %s: %w", ph.Name, err)
		}
	}

	for i, r := range res.Rows {
		_, err := tx.Exec(
			`INSERT INTO responses (session_id, position, phase, item_id, answer, correct, is_correct, response_time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			res.SessionID, i, r.Phase, r.ItemID, r.Answer, r.Correct, r.IsCorrect, r.ResponseTime,
		)
		if err != nil {
			return fmt.Errorf("insert response %s: %w", r.ItemID, err)
		}
	}

	return tx.Commit()
}

// ListSessions returns all archived sessions, newest first.
func (s *Store) ListSessions() ([]model.SessionListEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, participant_id, started_at, total_correct, total_items
		 FROM sessions ORDER BY started_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []model.SessionListEntry
	for rows.Next() {
		var e model.SessionListEntry
		if err := rows.Scan(&e.ID, &e.ParticipantID, &e.StartedAt, &e.TotalCorrect, &e.TotalItems); err != nil {
			return nil, err
		}
		sessions = append(sessions, e)
	}
	return sessions, rows.Err()
}

// SessionCount returns the number of archived sessions.
func (s *Store) SessionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, err
}

// GetSession returns one archived session with its phases and responses.
// Returns nil and no error if the id is unknown.
func (s *Store) GetSession(id string) (*model.ArchivedSession, error) {
	var a model.ArchivedSession
	p := &a.Participant
	err := s.db.QueryRow(
		`SELECT id, participant_id, age, gender, session_label, notes,
		 started_at, created_at, results_path, total_correct, total_items
		 FROM sessions WHERE id = ?`, id,
	).Scan(&a.ID, &p.ID, &p.Age, &p.Gender, &p.Session, &p.Notes,
		&a.StartedAt, &a.CreatedAt, &a.ResultsPath, &a.TotalCorrect, &a.TotalItems)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if a.Phases, err = s.getPhases(id); err != nil {
		return nil, fmt.Errorf("get phases: %w", err)
	}
	if a.Responses, err = s.GetResponses(id); err != nil {
		return nil, fmt.Errorf("get responses: %w", err)
	}
	return &a, nil
}

func (s *Store) getPhases(sessionID string) ([]model.PhaseSummary, error) {
	rows, err := s.db.Query(
		`SELECT name, set_name, duration_seconds, n_items, answered_count, correct_count,
		 remaining_seconds, finalized_by
		 FROM session_phases WHERE session_id = ? ORDER BY position`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var phases []model.PhaseSummary
	for rows.Next() {
		var ph model.PhaseSummary
		var reason string
		if err := rows.Scan(&ph.Name, &ph.Set, &ph.DurationSeconds, &ph.ItemCount,
			&ph.AnsweredCount, &ph.CorrectCount, &ph.RemainingSeconds, &reason); err != nil {
			return nil, err
		}
		ph.FinalizedBy = model.FinalizeReason(reason)
		phases = append(phases, ph)
	}
	return phases, rows.Err()
}

// GetResponses returns the per-item rows of a session in record order.
func (s *Store) GetResponses(sessionID string) ([]model.ResponseRow, error) {
	rows, err := s.db.Query(
		`SELECT r.phase, r.item_id, r.answer, r.correct, r.is_correct, r.response_time, s.participant_id
		 FROM responses r JOIN sessions s ON s.id = r.session_id
		 WHERE r.session_id = ? ORDER BY r.position`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ResponseRow
	for rows.Next() {
		var r model.ResponseRow
		var answer, correct sql.NullInt64
		var isCorrect sql.NullBool
		var rt sql.NullFloat64
		if err := rows.Scan(&r.Phase, &r.ItemID, &answer, &correct, &isCorrect, &rt, &r.ParticipantID); err != nil {
			return nil, err
		}
		if answer.Valid {
			v := int(answer.Int64)
			r.Answer = &v
		}
		if correct.Valid {
			v := int(correct.Int64)
			r.Correct = &v
		}
		if isCorrect.Valid {
			v := isCorrect.Bool
			r.IsCorrect = &v
		}
		if rt.Valid {
			v := rt.Float64
			r.ResponseTime = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// nowUTC is replaced in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }
