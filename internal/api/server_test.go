package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reychango/reychango-server/internal/auth"
	"github.com/reychango/reychango-server/internal/docstore"
	"github.com/reychango/reychango-server/internal/http/response"
	"github.com/reychango/reychango-server/internal/service"
	"github.com/reychango/reychango-server/internal/store"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "una contraseña larga"
	testSiteURL       = "https://blog.example"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	db    *docstore.Client
	store *store.Store
}

// readOnly serves content in read-only mode.
func readOnly(ts *testServer, s *Services) {
	s.Content = service.NewContentService(ts.store, service.ModeReadOnly, nil)
}

// setupTestServer creates a server over an in-memory store with a configured admin.
func setupTestServer(t *testing.T, opts ...func(*testServer, *Services)) *testServer {
	t.Helper()
	return newTestServer(t, docstore.Options{InMemory: true}, opts...)
}

// newTestServer is setupTestServer over a store opened with dbOpts.
func newTestServer(t *testing.T, dbOpts docstore.Options, opts ...func(*testServer, *Services)) *testServer {
	t.Helper()

	db, err := docstore.Open(dbOpts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	repo, err := store.New(context.Background(), db, logger)
	require.NoError(t, err)

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(hex.EncodeToString(key), time.Hour)
	require.NoError(t, err)

	hash, err := auth.HashPassword(testAdminPassword)
	require.NoError(t, err)

	services := &Services{
		Content: service.NewContentService(repo, service.ModeServer, logger),
		Auth: service.NewAuthService(repo, tokens, service.AdminCredentials{
			Email:        testAdminEmail,
			PasswordHash: hash,
		}, logger),
		DB: repo,
	}

	ts := &testServer{db: db, store: repo}
	for _, opt := range opts {
		opt(ts, services)
	}

	ts.Server = NewServer(services, Config{SiteURL: testSiteURL}, logger)
	ts.api = humatest.Wrap(t, ts.Server.API())
	return ts
}

// login signs the admin in and returns an Authorization header argument.
func (ts *testServer) login(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/auth/login", map[string]any{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var env struct {
		Data service.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.AccessToken)
	return "Authorization: Bearer " + env.Data.AccessToken
}

func decodeEnvelope(t *testing.T, body []byte) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func TestServer_UnknownRouteIsEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/nada")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeEnvelope(t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error)
}

func TestServer_MethodNotAllowedIsEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/posts/save", map[string]any{})

	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	env := decodeEnvelope(t, resp.Body.Bytes())
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.Error)
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Do(http.MethodOptions, "/api/posts",
		"Origin: https://otro.example",
		"Access-Control-Request-Method: GET",
	)

	assert.Less(t, resp.Code, 300)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}
