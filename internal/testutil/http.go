package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Neeraj110/chatApp/internal/middleware"
	"github.com/Neeraj110/chatApp/internal/model"
)

// WithUser attaches an authenticated user to the request, bypassing the auth
// middleware.
func WithUser(r *http.Request, u *model.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

// WithURLParam attaches a chi route parameter to the request so handlers that
// call chi.URLParam work outside a router.
func WithURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}
