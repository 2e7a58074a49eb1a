package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at"`

	// Google Calendar export. Empty when the user never connected one.
	CalendarID       string    `json:"calendar_id,omitempty"`
	CalendarToken    string    `json:"-"`
	CalendarRefresh  string    `json:"-"`
	CalendarExpiry   time.Time `json:"-"`
	CalendarLinkedAt time.Time `json:"calendar_linked_at,omitempty"`
}

// CalendarConnected reports whether events should be exported for this user.
func (u *User) CalendarConnected() bool {
	return u != nil && u.CalendarID != "" && (u.CalendarToken != "" || u.CalendarRefresh != "")
}

type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
}

// ConnectCalendarRequest links a Google Calendar for event export.
type ConnectCalendarRequest struct {
	CalendarID   string `json:"calendar_id" validate:"required,max=255"`
	AccessToken  string `json:"access_token" validate:"required_without=RefreshToken"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty" validate:"gte=0"`
	Import       bool   `json:"import,omitempty"`
}
