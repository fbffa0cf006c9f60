package api

import (
	"net/http"

	"github.com/reychango/reychango-server/internal/auth"
	domainerrors "github.com/reychango/reychango-server/internal/errors"
	"github.com/reychango/reychango-server/internal/http/response"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,max=1024"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.services.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Sesión iniciada", result, s.logger)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	if identity == nil {
		response.HandleError(w, domainerrors.ErrUnauthorized, s.logger)
		return
	}

	if err := s.services.Auth.Logout(r.Context(), identity.SessionID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Sesión cerrada", nil, s.logger)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	if identity == nil {
		response.HandleError(w, domainerrors.ErrUnauthorized, s.logger)
		return
	}

	response.Success(w, "", auth.Identity{
		UID:       identity.UID,
		Email:     identity.Email,
		SessionID: identity.SessionID,
	}, s.logger)
}
