// Package auth implements login, registration and token refresh. It is the
// only package that reads or writes password hashes.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/storage"
	"github.com/domunity/backend/pkg/logger"
)

const minPasswordLength = 6

// Session is the result of a successful login.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         user.User
}

// Service orchestrates the credential store and the token service.
type Service struct {
	users  storage.UserStore
	tokens *TokenService
	log    *logger.Logger
}

// New creates a configured auth service.
func New(users storage.UserStore, tokens *TokenService, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{users: users, tokens: tokens, log: log}
}

// Login verifies the credentials and issues a token pair. Unknown emails and
// wrong passwords produce the same generic failure.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperrors.InvalidCredentials()
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, apperrors.InvalidCredentials()
		}
		return Session{}, apperrors.Store(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, apperrors.InvalidCredentials()
	}
	if !u.Active {
		return Session{}, apperrors.InvalidCredentials()
	}

	access, err := s.tokens.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return Session{}, apperrors.Internal(err)
	}
	refresh, err := s.tokens.IssueRefreshToken(u.ID)
	if err != nil {
		return Session{}, apperrors.Internal(err)
	}

	s.log.WithField("user_id", u.ID).Info("user logged in")
	return Session{AccessToken: access, RefreshToken: refresh, User: u}, nil
}

// Register creates a user and its profile. The password is hashed with a
// fresh random salt before anything touches the store.
func (s *Service) Register(ctx context.Context, email, password, fullName, phone string) (user.User, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, apperrors.Validation("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return user.User{}, apperrors.Validation("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, apperrors.Internal(err)
	}

	created, err := s.users.CreateUserWithProfile(ctx, user.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Phone:        strings.TrimSpace(phone),
		Role:         user.RoleUser,
		Active:       true,
	}, user.Profile{})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return user.User{}, apperrors.DuplicateEmail()
		}
		return user.User{}, apperrors.Store(err)
	}

	s.log.WithField("user_id", created.ID).Info("user registered")
	return created, nil
}

// Refresh validates a refresh token and issues a new access token for the
// same user. The user is re-loaded so deactivated accounts cannot refresh.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return "", apperrors.Unauthorized("invalid refresh token")
	}

	u, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return "", apperrors.Unauthorized("invalid refresh token")
	}
	if !u.Active {
		return "", apperrors.Unauthorized("invalid refresh token")
	}

	access, err := s.tokens.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return access, nil
}

// ForgotPassword acknowledges a reset request. The response never reveals
// whether the email exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.Validation("email is required")
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		s.log.WithField("email", email).Info("password reset requested")
	}
	return nil
}

// Authenticate resolves a bearer token to its active user. Both transport
// adapters call this before any authenticated use case runs.
func (s *Service) Authenticate(ctx context.Context, token string) (user.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		s.log.WithError(err).Debug("token validation failed")
		return user.User{}, apperrors.Unauthorized("invalid or expired token")
	}

	u, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return user.User{}, apperrors.Unauthorized("invalid or expired token")
	}
	if !u.Active {
		return user.User{}, apperrors.Unauthorized("account is disabled")
	}
	return u, nil
}

// RequireAdmin rejects non-admin users with a forbidden error.
func RequireAdmin(u user.User) error {
	if !u.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}
