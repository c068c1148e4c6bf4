// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// AgentIDKey is the context key for the authenticated agent id.
	AgentIDKey ContextKey = "agent_id"
	// AgentNameKey is the context key for the authenticated agent name.
	AgentNameKey ContextKey = "agent_name"
)

// Claims represents JWT claims. The subject is the agent id.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// Auth creates JWT authentication middleware.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil || !token.Valid {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AgentIDKey, claims.Subject)
			ctx = context.WithValue(ctx, AgentNameKey, claims.Name)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAgentID gets the authenticated agent id from context.
func GetAgentID(ctx context.Context) string {
	if v := ctx.Value(AgentIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetAgentName gets the authenticated agent name from context.
func GetAgentName(ctx context.Context) string {
	if v := ctx.Value(AgentNameKey); v != nil {
		return v.(string)
	}
	return ""
}
