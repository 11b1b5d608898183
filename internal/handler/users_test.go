package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Neeraj110/chatApp/internal/handler"
	"github.com/Neeraj110/chatApp/internal/middleware"
	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/internal/service"
	"github.com/Neeraj110/chatApp/internal/testutil"
	"github.com/Neeraj110/chatApp/pkg/logger"
)

// envelope mirrors the wire response for decoding in tests.
type envelope struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	Data          json.RawMessage `json:"data"`
	Conversation  json.RawMessage `json:"conversation"`
	Conversations json.RawMessage `json:"conversations"`
	Messages      json.RawMessage `json:"messages"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return env
}

func newUserHandler(t *testing.T) (*handler.UserHandler, *testutil.UserStore) {
	t.Helper()
	users := testutil.NewUserStore()
	svc := service.NewUserService(users, testutil.NewMediaStore(), nil, "test-secret", time.Hour, logger.NewNop())
	return handler.NewUserHandler(svc, time.Hour, false), users
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestRegisterEndpoint(t *testing.T) {
	h, _ := newUserHandler(t)

	body := `{"name":"Alice","email":"Alice@Example.com","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\n%s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "User registered successfully" {
		t.Errorf("envelope = %+v", env)
	}
	var profile struct {
		Email    string `json:"email"`
		AuthType string `json:"authType"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("data field: %v", err)
	}
	if profile.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lowercase", profile.Email)
	}
	if sessionCookie(rec) != nil {
		t.Error("register set a session cookie; only login should")
	}
}

func TestRegisterEndpointValidation(t *testing.T) {
	h, _ := newUserHandler(t)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"short name", `{"name":"Al","email":"a@b.com","password":"secret"}`, "Name must be at least 3 characters"},
		{"bad email", `{"name":"Alice","email":"not-an-email","password":"secret"}`, "Please enter a valid email"},
		{"short password", `{"name":"Alice","email":"a@b.com","password":"abc"}`, "Password must be at least 4 characters"},
		{"malformed body", `{]`, "Invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env := decodeEnvelope(t, rec); env.Success || env.Message != tc.want {
				t.Errorf("envelope = %+v, want message %q", env, tc.want)
			}
		})
	}
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	h, users := newUserHandler(t)
	users.Seed(model.User{Name: "Alice", Email: "alice@example.com"})

	body := `{"name":"Other","email":"alice@example.com","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "User with this email already exists" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestLoginEndpointSetsCookie(t *testing.T) {
	h, _ := newUserHandler(t)

	register := httptest.NewRequest(http.MethodPost, "/api/users/register",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"secret"}`))
	h.Register(httptest.NewRecorder(), register)

	req := httptest.NewRequest(http.MethodPost, "/api/users/login",
		strings.NewReader(`{"email":"alice@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	if env := decodeEnvelope(t, rec); env.Message != "Login successful" {
		t.Errorf("message = %q", env.Message)
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("login did not set the session cookie")
	}
	if cookie.Value == "" || !cookie.HttpOnly || cookie.Path != "/" {
		t.Errorf("cookie = %+v, want non-empty httpOnly cookie on /", cookie)
	}
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	h, _ := newUserHandler(t)

	register := httptest.NewRequest(http.MethodPost, "/api/users/register",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"secret"}`))
	h.Register(httptest.NewRecorder(), register)

	req := httptest.NewRequest(http.MethodPost, "/api/users/login",
		strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Success || env.Message != "Invalid email or password" {
		t.Errorf("envelope = %+v", env)
	}
	if sessionCookie(rec) != nil {
		t.Error("failed login set a session cookie")
	}
}

func TestGoogleLoginEndpointRequiresCode(t *testing.T) {
	h, _ := newUserHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users/google-login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Authorization code is required" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestLogoutEndpointClearsCookie(t *testing.T) {
	h, _ := newUserHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("cookie = %+v, want expired session cookie", cookie)
	}
}

func TestUpdateProfileEndpointRequiresField(t *testing.T) {
	h, users := newUserHandler(t)
	alice := users.Seed(model.User{Name: "Alice", Email: "alice@example.com"})

	req := httptest.NewRequest(http.MethodPatch, "/api/users/profile", strings.NewReader(`{}`))
	req = testutil.WithUser(req, &alice)
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "At least one field (name or email) must be provided" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestAllUsersEndpoint(t *testing.T) {
	h, users := newUserHandler(t)
	alice := users.Seed(model.User{Name: "Alice", Email: "alice@example.com"})
	users.Seed(model.User{Name: "Bob", Email: "bob@example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/users/allUsers", nil)
	req = testutil.WithUser(req, &alice)
	rec := httptest.NewRecorder()
	h.AllUsers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var got []model.PublicUser
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("data field: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Bob" {
		t.Errorf("users = %+v, want Bob only", got)
	}
}
