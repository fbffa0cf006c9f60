package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reychango/reychango-server/internal/ratelimit"
)

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/auth/login", map[string]any{
		"email":    testAdminEmail,
		"password": "otra cosa",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	env := decodeEnvelope(t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error)
}

func TestLogin_MissingFields(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/auth/login", map[string]any{"email": testAdminEmail})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "MISSING_REQUIRED_FIELDS", decodeEnvelope(t, resp.Body.Bytes()).Error)
}

func TestSessionAndLogout(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t)

	resp := ts.api.Get("/api/auth/session", token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	data := decodeEnvelope(t, resp.Body.Bytes()).Data.(map[string]any)
	assert.Equal(t, testAdminEmail, data["email"])
	assert.NotEmpty(t, data["sessionId"])

	resp = ts.api.Post("/api/auth/logout", token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The token is still well-formed and unexpired, but its session is gone.
	resp = ts.api.Get("/api/auth/session", token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, resp.Body.Bytes()).Error)
}

func TestLogin_RateLimited(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)

	ts := setupTestServer(t, func(_ *testServer, s *Services) {
		s.LoginLimiter = limiter
	})

	body := map[string]any{"email": testAdminEmail, "password": "mal"}
	for range 2 {
		resp := ts.api.Post("/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeEnvelope(t, resp.Body.Bytes()).Error)

	// Other clients have their own bucket.
	resp = ts.api.Post("/api/auth/login", "X-Forwarded-For: 203.0.113.9", body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
