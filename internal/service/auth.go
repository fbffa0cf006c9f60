package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reychango/reychango-server/internal/auth"
	"github.com/reychango/reychango-server/internal/domain"
	domainerrors "github.com/reychango/reychango-server/internal/errors"
	"github.com/reychango/reychango-server/internal/store"
)

// AdminUID is the subject of every admin token. The site has a single administrator.
const AdminUID = "admin"

// SessionRepository persists admin sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// AdminCredentials identifies the administrator allowed to sign in.
type AdminCredentials struct {
	Email        string
	PasswordHash string // argon2id, see auth.HashPassword
}

// LoginResult is returned by a successful sign-in.
type LoginResult struct {
	AccessToken string        `json:"accessToken"`
	ExpiresAt   time.Time     `json:"expiresAt"`
	User        auth.Identity `json:"user"`
}

// AuthResult is the outcome of authenticating a request.
type AuthResult struct {
	Authenticated bool
	Identity      *auth.Identity
	StatusCode    int
	Error         *domainerrors.Error
}

// AuthService signs the administrator in and out and verifies bearer tokens.
type AuthService struct {
	sessions SessionRepository
	tokens   *auth.TokenService
	admin    AdminCredentials
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(sessions SessionRepository, tokens *auth.TokenService, admin AdminCredentials, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if admin.Email == "" || admin.PasswordHash == "" {
		logger.Warn("admin credentials not configured; sign-in is disabled")
	}
	return &AuthService{sessions: sessions, tokens: tokens, admin: admin, logger: logger}
}

// Login checks the admin credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := domainerrors.InvalidCredentials("invalid email or password")
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return nil, invalid
	}

	// The hash is checked even for an unknown email so both failures cost the same.
	valid, err := auth.VerifyPassword(s.admin.PasswordHash, password)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to verify password")
	}
	if !valid || !strings.EqualFold(strings.TrimSpace(email), s.admin.Email) {
		s.logger.Warn("failed admin sign-in", "email", email)
		return nil, invalid
	}

	identity := auth.Identity{UID: AdminUID, Email: s.admin.Email, SessionID: uuid.NewString()}
	issued, err := s.tokens.GenerateAccessToken(identity)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to issue token")
	}

	session := &domain.Session{
		ID:        identity.SessionID,
		UID:       identity.UID,
		Email:     identity.Email,
		TokenID:   issued.TokenID,
		CreatedAt: time.Now(),
		ExpiresAt: issued.ExpiresAt,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("admin signed in", "session_id", session.ID)
	return &LoginResult{AccessToken: issued.Token, ExpiresAt: issued.ExpiresAt, User: identity}, nil
}

// Verify decrypts token, checks its claims and confirms its session is still open.
func (s *AuthService) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	session, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if domainerrors.Is(err, store.ErrSessionNotFound) {
			return nil, domainerrors.Unauthorized("session has ended")
		}
		return nil, err
	}
	if session.TokenID != claims.TokenID {
		return nil, domainerrors.Unauthorized("session has ended")
	}

	return &auth.Identity{UID: claims.UID, Email: claims.Email, SessionID: claims.SessionID}, nil
}

// Authenticate verifies the Authorization header of a request.
func (s *AuthService) Authenticate(ctx context.Context, header string) AuthResult {
	token, err := auth.ExtractBearer(header)
	if err != nil {
		return unauthenticated(domainerrors.Unauthorized(err.Error()))
	}

	identity, err := s.Verify(ctx, token)
	if err != nil {
		var domainErr *domainerrors.Error
		if domainerrors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeUnauthorized {
			return unauthenticated(domainErr)
		}
		s.logger.Error("failed to verify session", "error", err)
		code := domainerrors.CodeOf(err)
		return AuthResult{StatusCode: code.HTTPStatus(), Error: domainerrors.Wrap(err, code, "failed to verify session")}
	}

	return AuthResult{Authenticated: true, Identity: identity, StatusCode: http.StatusOK}
}

// Logout closes a session. Its token stops working immediately.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("admin signed out", "session_id", sessionID)
	return nil
}

// Session returns the open session behind token.
func (s *AuthService) Session(ctx context.Context, token string) (*domain.Session, error) {
	identity, err := s.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.sessions.GetSession(ctx, identity.SessionID)
}

func unauthenticated(err *domainerrors.Error) AuthResult {
	return AuthResult{StatusCode: http.StatusUnauthorized, Error: err}
}
