package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Neeraj110/chatApp/internal/model"
)

const testSecret = "test-secret"

type singleUserLoader struct {
	user model.User
}

func (l *singleUserLoader) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	if id != l.user.ID {
		return nil, mongo.ErrNoDocuments
	}
	u := l.user
	return &u, nil
}

func signToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func authHandler(loader UserLoader, captured **model.User) http.Handler {
	return Auth(testSecret, loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthFromCookie(t *testing.T) {
	user := model.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
	loader := &singleUserLoader{user: user}

	var got *model.User
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: signToken(t, user.ID.Hex(), time.Hour)})
	rec := httptest.NewRecorder()

	authHandler(loader, &got).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.ID != user.ID {
		t.Error("handler did not receive the authenticated user")
	}
}

func TestAuthFromBearerHeader(t *testing.T) {
	user := model.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
	loader := &singleUserLoader{user: user}

	var got *model.User
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, user.ID.Hex(), time.Hour))
	rec := httptest.NewRecorder()

	authHandler(loader, &got).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.ID != user.ID {
		t.Error("handler did not receive the authenticated user")
	}
}

func TestAuthRejections(t *testing.T) {
	user := model.User{ID: primitive.NewObjectID()}
	loader := &singleUserLoader{user: user}

	cases := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no token", func(r *http.Request) {}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not-a-jwt")
		}},
		{"expired token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, user.ID.Hex(), -time.Hour))
		}},
		{"unknown subject", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, primitive.NewObjectID().Hex(), time.Hour))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got *model.User
			req := httptest.NewRequest("GET", "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()

			authHandler(loader, &got).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if got != nil {
				t.Error("handler ran despite failed auth")
			}
		})
	}
}
