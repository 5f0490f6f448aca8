// internal/auth/middleware.go
// Bearer-token authentication for the couples API and the game socket

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// Middleware provides authentication middleware
type Middleware struct {
	jwtSecret string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtSecret: jwtSecret}
}

// Authenticate verifies the JWT access token and adds the user id to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		userID, err := m.VerifyToken(token)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// VerifyToken validates an access token and returns its user id
func (m *Middleware) VerifyToken(token string) (int64, error) {
	claims, err := utils.ValidateJWT(token, m.jwtSecret)
	if err != nil {
		return 0, err
	}
	if claims.Type != "access" {
		return 0, errInvalidTokenType
	}
	return claims.UserID, nil
}

var errInvalidTokenType = errors.New("invalid token type")

// ExtractToken reads "Bearer <token>" from the Authorization header.
// Browsers cannot set headers on websocket upgrades, so the token query parameter is also accepted.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return parts[1]
	}
	return r.URL.Query().Get("token")
}

// WithUserID stores the authenticated user id on ctx
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
