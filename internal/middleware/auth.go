// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Neeraj110/chatApp/internal/model"
)

// ContextKey is a type for context keys.
type ContextKey string

// UserKey is the context key holding the authenticated *model.User.
const UserKey ContextKey = "user"

// TokenCookie is the cookie carrying the session JWT.
const TokenCookie = "token"

// UserLoader resolves an authenticated subject to a user record.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// Auth authenticates requests from the session cookie or a bearer token and
// loads the full user record into the request context.
func Auth(jwtSecret string, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized(w, "Unauthorized - No token provided")
				return
			}

			id, err := ParseToken(token, jwtSecret)
			if err != nil {
				unauthorized(w, "Unauthorized - Invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), id)
			if err != nil {
				unauthorized(w, "Unauthorized - Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest extracts the session token from the cookie or the
// Authorization header, cookie first.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// ParseToken verifies an HMAC-signed JWT and returns its subject as an
// object id.
func ParseToken(tokenString, jwtSecret string) (primitive.ObjectID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !token.Valid {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}
	return primitive.ObjectIDFromHex(claims.Subject)
}

// GetUser returns the authenticated user from the context, or nil.
func GetUser(ctx context.Context) *model.User {
	if u, ok := ctx.Value(UserKey).(*model.User); ok {
		return u
	}
	return nil
}

// WithUser returns a context carrying the user, for tests and the socket
// upgrade path.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
