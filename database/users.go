package database

import (
	"database/sql"
	"strings"
	"time"

	"ops-dashboard/models"
)

// ==================== USER OPERATIONS ====================

const userColumns = `id, email, password_hash, calendar_id, calendar_token, calendar_refresh,
	calendar_expiry, calendar_linked_at, created_at, last_login_at`

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var expiry, linkedAt sql.NullTime
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.CalendarID, &user.CalendarToken, &user.CalendarRefresh,
		&expiry, &linkedAt, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		user.CalendarExpiry = expiry.Time
	}
	if linkedAt.Valid {
		user.CalendarLinkedAt = linkedAt.Time
	}
	return &user, nil
}

// CreateUser inserts a new account. Emails are stored lower-cased.
func (r *Repository) CreateUser(user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := r.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.LastLoginAt = now

	_, err := r.db.Exec(`
		INSERT INTO users (id, email, password_hash, created_at, last_login_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.LastLoginAt, now)
	return err
}

func (r *Repository) GetUser(userID string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *Repository) TouchLogin(userID string) error {
	now := r.now()
	_, err := r.db.Exec(`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`, now, now, userID)
	return err
}

// UpdateCalendarLink stores the Google Calendar export target and credentials.
func (r *Repository) UpdateCalendarLink(userID, calendarID, accessToken, refreshToken string, expiry time.Time) error {
	now := r.now()
	_, err := r.db.Exec(`
		UPDATE users SET
			calendar_id = ?,
			calendar_token = ?,
			calendar_refresh = ?,
			calendar_expiry = ?,
			calendar_linked_at = ?,
			updated_at = ?
		WHERE id = ?
	`, calendarID, accessToken, refreshToken, nullTime(&expiry), now, now, userID)
	return err
}

// UpdateCalendarToken persists a refreshed OAuth token. An empty refresh token
// keeps the stored one, matching how Google omits it on refresh.
func (r *Repository) UpdateCalendarToken(userID, accessToken, refreshToken string, expiry time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users SET
			calendar_token = ?,
			calendar_refresh = CASE WHEN ? = '' THEN calendar_refresh ELSE ? END,
			calendar_expiry = ?,
			updated_at = ?
		WHERE id = ?
	`, accessToken, refreshToken, refreshToken, nullTime(&expiry), r.now(), userID)
	return err
}

func (r *Repository) calendarConnected(userID string) (bool, error) {
	user, err := r.GetUser(userID)
	if err != nil {
		return false, err
	}
	return user.CalendarConnected(), nil
}
