package server

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyUsername stores the authenticated username
	ContextKeyUsername ContextKey = "username"
)

// UserID retrieves the authenticated user ID from the context.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(ContextKeyUserID).(string)
	return userID
}

// RequireAuth validates the Bearer access token before any protected
// handler runs. Only access tokens pass: an MFA-satisfied token in the
// Authorization header is rejected like any other invalid token.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "missing or malformed Authorization header"})
				return
			}

			claims, err := s.tokens.VerifyAccessToken(rawToken)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "invalid or expired token"})
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyUsername, claims.Username)
			next(w, r.WithContext(ctx))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
