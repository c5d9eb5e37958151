package service

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func ptr[T any](v T) *T {
	return &v
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}
