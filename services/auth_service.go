package services

import (
	"strings"

	"ops-dashboard/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication business logic
type AuthService struct {
	repo         AuthRepository
	sessionStore SessionStore
	cost         int
}

// NewAuthService creates a new auth service
func NewAuthService(repo AuthRepository, sessionStore SessionStore) *AuthService {
	return &AuthService{
		repo:         repo,
		sessionStore: sessionStore,
		cost:         bcrypt.DefaultCost,
	}
}

// LoginResponse contains the session and the signed-in user
type LoginResponse struct {
	Session *models.Session
	User    *models.User
}

// SignUp registers a new account and opens a session for it
func (as *AuthService) SignUp(email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := as.repo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.cost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := as.repo.CreateUser(user); err != nil {
		return nil, err
	}

	sess, err := as.sessionStore.Create(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Session: sess, User: user}, nil
}

// SignIn checks the password and opens a session. Unknown emails and wrong
// passwords fail the same way.
func (as *AuthService) SignIn(email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := as.repo.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := as.repo.TouchLogin(user.ID); err != nil {
		return nil, err
	}

	sess, err := as.sessionStore.Create(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Session: sess, User: user}, nil
}

// SignOut ends a session. Unknown sessions are ignored.
func (as *AuthService) SignOut(sessionID string) error {
	return as.sessionStore.Delete(sessionID)
}

// Me returns the user behind a session
func (as *AuthService) Me(sessionID string) (*models.User, error) {
	sess, err := as.sessionStore.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	user, err := as.repo.GetUser(sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}
