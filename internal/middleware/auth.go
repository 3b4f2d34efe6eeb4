package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/pkg/logger"
)

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.User, error)
}

// AuthMiddleware validates bearer tokens and attaches the resolved user to
// the request context. Paths in skipPaths pass through unauthenticated.
type AuthMiddleware struct {
	auth      Authenticator
	log       *logger.Logger
	skipPaths map[string]bool
}

// NewAuthMiddleware builds the authentication middleware.
func NewAuthMiddleware(auth Authenticator, log *logger.Logger, skipPaths []string) *AuthMiddleware {
	if log == nil {
		log = logger.NewDefault("middleware")
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &AuthMiddleware{auth: auth, log: log, skipPaths: skip}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		token, err := BearerToken(r)
		if err != nil {
			m.respondError(w, err)
			return
		}

		u, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			m.log.WithError(err).Debug("token validation failed")
			m.respondError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Unauthorized("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperrors.Unauthorized("invalid authorization header format")
	}
	return parts[1], nil
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, err error) {
	svcErr := apperrors.GetServiceError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": svcErr.Message})
}
