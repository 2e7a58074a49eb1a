package session

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"ops-dashboard/models"

	"github.com/google/uuid"
)

// DefaultTTL is how long a session stays valid after sign-in.
const DefaultTTL = 30 * 24 * time.Hour

// Store keeps sessions in the sessions table so they survive restarts.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewStore(db *sql.DB, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		db:  db,
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Create(userID, email string) (*models.Session, error) {
	now := s.now()
	sess := &models.Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		Email:      email,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
		LastUsedAt: now,
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, user_id, email, expires_at, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.UserID, sess.Email, sess.ExpiresAt, sess.CreatedAt, sess.LastUsedAt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns a live session and records its use. Unknown or expired ids
// return nil without an error.
func (s *Store) Get(sessionID string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRow(`
		SELECT id, user_id, email, expires_at, created_at, last_used_at
		FROM sessions WHERE id = ?
	`, sessionID).Scan(&sess.ID, &sess.UserID, &sess.Email, &sess.ExpiresAt, &sess.CreatedAt, &sess.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if now.After(sess.ExpiresAt) {
		return nil, nil
	}

	sess.LastUsedAt = now
	if _, err := s.db.Exec(`UPDATE sessions SET last_used_at = ? WHERE id = ?`, now, sessionID); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetByUserID returns the user's most recently used live session.
func (s *Store) GetByUserID(userID string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRow(`
		SELECT id, user_id, email, expires_at, created_at, last_used_at
		FROM sessions
		WHERE user_id = ? AND expires_at > ?
		ORDER BY last_used_at DESC
		LIMIT 1
	`, userID, s.now()).Scan(&sess.ID, &sess.UserID, &sess.Email, &sess.ExpiresAt, &sess.CreatedAt, &sess.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Delete(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

func (s *Store) CleanupExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, s.now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanupRoutine purges expired sessions every interval until ctx ends.
func (s *Store) StartCleanupRoutine(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.CleanupExpired()
				if err != nil {
					logger.Error("session cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Debug("expired sessions removed", "count", n)
				}
			}
		}
	}()
}
