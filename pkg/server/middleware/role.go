package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// roleKey carries the caller's role claim through the request context.
const roleKey contextKey = "role"

// RoleAuthenticator is middleware that validates signed role tokens.
// Tokens are HS256 JWTs carrying a "role" claim; the gateway never
// issues them, it only verifies what the authorization collaborator
// minted.
type RoleAuthenticator struct {
	key []byte
}

// NewRoleAuthenticator creates a new role authenticator middleware
func NewRoleAuthenticator(key []byte) *RoleAuthenticator {
	return &RoleAuthenticator{key: key}
}

// RoleFromContext returns the authenticated role, if any.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok && role != ""
}

// WithRole returns a context carrying the role claim. Exposed for
// handler tests that bypass the middleware.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func (a *RoleAuthenticator) parseRole(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader {
		return "", false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.key, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	role, _ := claims["role"].(string)
	return role, role != ""
}

// Middleware requires a valid role token and stores the role claim in
// the request context.
func (a *RoleAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := a.parseRole(r)
		if !ok {
			unauthorized(w, "Unauthorized access")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
	})
}

// RequireRole requires a valid role token whose role claim matches.
func (a *RoleAuthenticator) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := a.parseRole(r)
			if !ok || got != role {
				unauthorized(w, "Unauthorized access")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), got)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
