package handler

import (
	"net/http"
	"time"

	"github.com/Neeraj110/chatApp/internal/middleware"
	"github.com/Neeraj110/chatApp/internal/service"
)

// maxAvatarBytes bounds avatar multipart uploads.
const maxAvatarBytes = 5 << 20

// UserHandler handles authentication and profile endpoints.
type UserHandler struct {
	users     *service.UserService
	cookieTTL time.Duration
	secure    bool
}

// NewUserHandler creates a new user handler. secure controls the session
// cookie's Secure flag.
func NewUserHandler(users *service.UserService, cookieTTL time.Duration, secure bool) *UserHandler {
	return &UserHandler{users: users, cookieTTL: cookieTTL, secure: secure}
}

// Register handles POST /api/users/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body")
		return
	}

	name, err := middleware.ValidateName(req.Name)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	email, err := middleware.ValidateEmail(req.Email)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := middleware.ValidatePassword(req.Password); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), name, email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Success: true,
		Message: "User registered successfully",
		Data:    user.OwnProfile(),
	})
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body")
		return
	}

	email, err := middleware.ValidateEmail(req.Email)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.Password == "" {
		writeValidationError(w, "Password is required")
		return
	}

	user, token, err := h.users.Login(r.Context(), email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Login successful",
		Data:    user.OwnProfile(),
	})
}

// GoogleLogin handles POST /api/users/google-login. The body carries the
// authorization code from the client-side OAuth flow.
func (h *UserHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil || req.Code == "" {
		writeValidationError(w, "Authorization code is required")
		return
	}

	user, token, err := h.users.GoogleLogin(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "User logged in successfully",
		Data:    user.OwnProfile(),
	})
}

// Logout handles POST /api/users/logout.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "User logged out successfully",
	})
}

// Profile handles GET /api/users/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Data:    user.OwnProfile(),
	})
}

// UpdateProfile handles PATCH /api/users/profile. Either field may be
// omitted; at least one is required.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body")
		return
	}
	if req.Name == "" && req.Email == "" {
		writeValidationError(w, "At least one field (name or email) must be provided")
		return
	}

	name, email := "", ""
	var err error
	if req.Name != "" {
		if name, err = middleware.ValidateName(req.Name); err != nil {
			writeValidationError(w, err.Error())
			return
		}
	}
	if req.Email != "" {
		if email, err = middleware.ValidateEmail(req.Email); err != nil {
			writeValidationError(w, err.Error())
			return
		}
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, name, email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Profile updated successfully",
		Data:    updated.OwnProfile(),
	})
}

// UpdateAvatar handles PATCH /api/users/avatar, a multipart request with an
// "avatar" file field.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeValidationError(w, "No avatar file provided")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeValidationError(w, "No avatar file provided")
		return
	}
	defer file.Close()

	updated, err := h.users.UpdateAvatar(r.Context(), user.ID, file, header)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Avatar updated successfully",
		Data:    updated.OwnProfile(),
	})
}

// DeleteAccount handles DELETE /api/users/account.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := h.users.DeleteAccount(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Account deleted successfully",
	})
}

// AllUsers handles GET /api/users/allUsers, returning everyone except the
// requester.
func (h *UserHandler) AllUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	users, err := h.users.ListOthers(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Users fetched successfully",
		Data:    users,
	})
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
