package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/reychango/reychango-server/internal/auth"
	"github.com/reychango/reychango-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyIdentity contextKey = "identity"

// requireAuth is middleware that verifies the bearer token and attaches the caller's identity.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := s.services.Auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if !result.Authenticated {
			response.HandleError(w, result.Error, s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyIdentity, result.Identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getIdentity returns the authenticated caller, or nil outside requireAuth.
func getIdentity(ctx context.Context) *auth.Identity {
	if identity, ok := ctx.Value(contextKeyIdentity).(*auth.Identity); ok {
		return identity
	}
	return nil
}

// recoverer turns a handler panic into a 500 envelope.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			s.logger.Error("Handler panicked",
				"panic", fmt.Sprint(rec),
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"stack_trace", string(debug.Stack()),
			)
			response.InternalError(w, "Error interno del servidor", s.logger)
		}()

		next.ServeHTTP(w, r)
	})
}
