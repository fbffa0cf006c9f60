package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reychango/reychango-server/internal/auth"
)

func TestRecoverer_WritesEnvelope(t *testing.T) {
	ts := setupTestServer(t)
	ts.router.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	resp := ts.api.Get("/boom")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	env := decodeEnvelope(t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", env.Error)
}

func TestRequireAuth_AttachesIdentity(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t)

	var got *auth.Identity
	handler := ts.requireAuth(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = getIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", token[len("Authorization: "):])
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, testAdminEmail, got.Email)
	assert.NotEmpty(t, got.SessionID)
}

func TestRequireAuth_RejectsWithoutCallingNext(t *testing.T) {
	ts := setupTestServer(t)

	called := false
	handler := ts.requireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetIdentity_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, getIdentity(req.Context()))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.2"}, "10.0.0.2:80", "203.0.113.2"},
		{"remote addr", nil, "198.51.100.7:5555", "198.51.100.7"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"no port", nil, "198.51.100.8", "198.51.100.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
