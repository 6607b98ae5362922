// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"trackit/internal/auth"
	"trackit/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password
	// was incorrect. It deliberately does not reveal which.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingCredentials indicates a login request without both fields.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrRegistration covers unexpected failures while persisting a new user.
	ErrRegistration = errors.New("an error occurred during registration")

	// Registration validation failures, in the order they are checked.
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// AuthService composes user validation, password verification, and session
// token issuance.
type AuthService struct {
	users  domain.UserRepository
	tokens *auth.Tokens
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, tokens *auth.Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register validates the submitted account details and persists a new user.
// Checks run in a fixed order and the first failure wins.
func (s *AuthService) Register(ctx context.Context, username, password, email string) error {
	if strings.TrimSpace(username) == "" {
		return ErrUsernameRequired
	}
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if len(username) < 3 {
		return ErrUsernameTooShort
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return ErrRegistration
	}
	if taken {
		return ErrUsernameTaken
	}
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return ErrRegistration
	}
	if taken {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ErrRegistration
	}
	// The store's unique constraints are the final arbiter under a racing
	// duplicate registration.
	if _, err := s.users.Create(ctx, username, string(hash), email); err != nil {
		return ErrRegistration
	}
	return nil
}

// Login verifies the user's password and issues a session token. The
// password is verified twice: against the stored hash, then through an
// independent authentication pass.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if err := s.authenticate(ctx, username, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.Username)
}

// authenticate is the second, independent credential check: it re-resolves
// the user and compares the password against the freshly loaded hash.
func (s *AuthService) authenticate(ctx context.Context, username, password string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticate validates a bearer token and resolves it to a live user.
// Every failure collapses to auth.ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*domain.User, error) {
	subject, err := s.tokens.ParseSubject(raw)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.users.GetByUsername(ctx, subject)
	if err != nil || user == nil {
		return nil, auth.ErrInvalidToken
	}

	if !s.tokens.Valid(raw, user.Username) {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

// LoginWithUser issues a session token for an already authenticated user
// (e.g. via SSO), auto-provisioning the account if it does not exist.
func (s *AuthService) LoginWithUser(ctx context.Context, username string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		// SSO users have no local password.
		user, err = s.users.Create(ctx, username, "", username)
		if err != nil {
			// Try getting again if creation failed due to race (e.g. unique constraint)
			user, err = s.users.GetByUsername(ctx, username)
			if err != nil || user == nil {
				return "", err
			}
		}
	}
	return s.tokens.Issue(user.Username)
}
