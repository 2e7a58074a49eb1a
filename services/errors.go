package services

import "errors"

// Common service-level errors
var (
	// Auth errors
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnauthorized       = errors.New("unauthorized access")

	// Folder errors
	ErrFolderNotFound      = errors.New("folder not found")
	ErrFolderAlreadyExists = errors.New("folder already exists")

	// Sync errors
	ErrEventNotFound       = errors.New("event not found")
	ErrCalendarUnavailable = errors.New("google calendar sync is not configured")
)
