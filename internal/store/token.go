package store

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/pavelanni/rapm/internal/model"
)

// AuthTokenTTL is how long a login token stays valid.
const AuthTokenTTL = 12 * time.Hour

// Only the SHA-256 of a bearer token is stored. Expiry is kept as Unix
// seconds so it compares as a number in SQL.

// CreateAuthToken issues a new bearer token for an operator and returns the
// raw value. It cannot be recovered from the archive afterwards.
func (s *Store) CreateAuthToken(operatorID int64) (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	raw := hex.EncodeToString(b[:])

	now := nowUTC()
	if _, err := s.db.Exec(
		`INSERT INTO auth_tokens (token_hash, operator_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		tokenHash(raw), operatorID, now, now.Add(AuthTokenTTL).Unix(),
	); err != nil {
		return "", err
	}
	return raw, nil
}

// GetAuthToken returns the live token record for a raw token, or nil when it
// is unknown or past its expiry. Expired rows are left for
// CleanupExpiredTokens.
func (s *Store) GetAuthToken(raw string) (*model.AuthToken, error) {
	var (
		t       model.AuthToken
		expires int64
	)
	err := s.db.QueryRow(
		`SELECT token_hash, operator_id, created_at, expires_at FROM auth_tokens
		 WHERE token_hash = ? AND expires_at > ?`,
		tokenHash(raw), nowUTC().Unix(),
	).Scan(&t.Hash, &t.OperatorID, &t.CreatedAt, &expires)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.ExpiresAt = time.Unix(expires, 0).UTC()
	return &t, nil
}

// DeleteAuthToken revokes a raw token. Unknown tokens are not an error.
func (s *Store) DeleteAuthToken(raw string) error {
	_, err := s.db.Exec(`DELETE FROM auth_tokens WHERE token_hash = ?`, tokenHash(raw))
	return err
}

// RevokeOperatorTokens removes every token issued to the named operator and
// returns how many there were.
func (s *Store) RevokeOperatorTokens(username string) (int64, error) {
	return s.execCount(
		`DELETE FROM auth_tokens WHERE operator_id IN (SELECT id FROM operators WHERE username = ?)`,
		username,
	)
}

// CleanupExpiredTokens removes expired tokens and returns how many were
// removed.
func (s *Store) CleanupExpiredTokens() (int64, error) {
	return s.execCount(`DELETE FROM auth_tokens WHERE expires_at <= ?`, nowUTC().Unix())
}

func (s *Store) execCount(query string, args ...any) (int64, error) {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func tokenHash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
