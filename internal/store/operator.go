package store

import (
	"database/sql"
	"log/slog"

	"github.com/pavelanni/rapm/internal/model"
)

// CreateOperator inserts a new operator account.
func (s *Store) CreateOperator(username, passwordHash string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO operators (username, password_hash, active, created_at) VALUES (?, ?, 1, ?)`,
		username, passwordHash, nowUTC(),
	)
	if err != nil {
		slog.Error("failed to create operator", "username", username, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created operator", "id", id, "username", username)
	return id, nil
}

// UpsertOperator creates the operator or replaces its password and
// reactivates it.
func (s *Store) UpsertOperator(username, passwordHash string) error {
	_, err := s.db.Exec(
		`INSERT INTO operators (username, password_hash, active, created_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash, active = 1`,
		username, passwordHash, nowUTC(),
	)
	return err
}

// GetOperatorByUsername returns an operator by username, or nil if unknown.
func (s *Store) GetOperatorByUsername(username string) (*model.Operator, error) {
	return s.scanOperator(s.db.QueryRow(
		`SELECT id, username, password_hash, active, created_at FROM operators WHERE username = ?`, username,
	))
}

// GetOperatorByID returns an operator by id, or nil if unknown.
func (s *Store) GetOperatorByID(id int64) (*model.Operator, error) {
	return s.scanOperator(s.db.QueryRow(
		`SELECT id, username, password_hash, active, created_at FROM operators WHERE id = ?`, id,
	))
}

func (s *Store) scanOperator(row *sql.Row) (*model.Operator, error) {
	var o model.Operator
	err := row.Scan(&o.ID, &o.Username, &o.PasswordHash, &o.Active, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// SetOperatorActive enables or disables an operator.
func (s *Store) SetOperatorActive(id int64, active bool) error {
	_, err := s.db.Exec(`UPDATE operators SET active = ? WHERE id = ?`, active, id)
	return err
}

// OperatorCount returns the number of operator accounts.
func (s *Store) OperatorCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM operators`).Scan(&count)
	return count, err
}
