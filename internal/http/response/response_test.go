package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reychango/reychango-server/internal/errors"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, "Post saved", map[string]string{"id": "abc", "slug": "hola"}, discard)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Post saved", body["message"])
	assert.Equal(t, map[string]any{"id": "abc", "slug": "hola"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestJSON_SuccessFollowsStatus(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusNotFound, []string{"x"}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", discard) }, http.StatusBadRequest, "VALIDATION"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no", discard) }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "gone", discard) }, http.StatusNotFound, "NOT_FOUND"},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, discard) }, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"rate limited", func(w http.ResponseWriter) { TooManyRequests(w, "slow down", discard) }, http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "boom", nil) }, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["error"])
			assert.NotContains(t, body, "data")
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", domainerrors.NotFound("post not found"), http.StatusNotFound, "NOT_FOUND", "post not found"},
		{"missing fields", domainerrors.MissingRequiredFields("missing", []string{"title"}), http.StatusBadRequest, "MISSING_REQUIRED_FIELDS", "missing"},
		{"permission", domainerrors.PermissionDenied("read only"), http.StatusForbidden, "PERMISSION_DENIED", "read only"},
		{"network", domainerrors.Wrap(errors.New("closed"), domainerrors.CodeNetwork, "store down"), http.StatusServiceUnavailable, "NETWORK_ERROR", "store down"},
		{"not implemented", domainerrors.NotImplemented("later"), http.StatusNotImplemented, "NOT_IMPLEMENTED", "later"},
		{"plain error", errors.New("secret detail"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discard)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestHandleError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, domainerrors.MissingRequiredFields("missing", []string{"slug", "title"}), discard)

	assert.Equal(t, []any{"slug", "title"}, decode(t, w)["details"])
}
