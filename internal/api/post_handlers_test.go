package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reychango/reychango-server/internal/domain"
)

func TestSavePost_CreatesAndUpdatesBySlug(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t)

	body := map[string]any{
		"title":   "Hola mundo",
		"slug":    "hola-mundo",
		"content": "Primer **post**.",
		"date":    "2024-03-05",
		"tags":    []string{"intro"},
	}
	resp := ts.api.Post("/api/posts/save", token, body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope(t, resp.Body.Bytes())
	assert.True(t, env.Success)
	data := env.Data.(map[string]any)
	firstID := data["id"]
	assert.NotEmpty(t, firstID)
	assert.Equal(t, "hola-mundo", data["slug"])

	body["title"] = "Hola de nuevo"
	resp = ts.api.Post("/api/posts/save", token, body)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, firstID, decodeEnvelope(t, resp.Body.Bytes()).Data.(map[string]any)["id"])

	posts, err := ts.store.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hola de nuevo", posts[0].Title)
}

func TestSavePost_DerivesSlugFromTitle(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t)

	resp := ts.api.Post("/api/posts/save", token, map[string]any{
		"title":   "Canción de otoño",
		"content": "Texto",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "cancion-de-otono", decodeEnvelope(t, resp.Body.Bytes()).Data.(map[string]any)["slug"])
}

func TestSavePost_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{
			name: "missing content",
			body: map[string]any{"title": "Hola", "slug": "hola"},
			code: "MISSING_REQUIRED_FIELDS",
		},
		{
			name: "missing title and slug",
			body: map[string]any{"content": "Texto"},
			code: "MISSING_REQUIRED_FIELDS",
		},
		{
			name: "uppercase slug",
			body: map[string]any{"title": "Hola", "slug": "Hola", "content": "Texto"},
			code: "INVALID_SLUG_FORMAT",
		},
		{
			name: "slug with spaces",
			body: map[string]any{"title": "Hola", "slug": "hola mundo", "content": "Texto"},
			code: "INVALID_SLUG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)
			token := ts.login(t)

			resp := ts.api.Post("/api/posts/save", token, tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			env := decodeEnvelope(t, resp.Body.Bytes())
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error)

			empty, err := ts.store.CollectionEmpty(context.Background(), "posts")
			require.NoError(t, err)
			assert.True(t, empty)
		})
	}
}

func TestSavePost_RequiresAuth(t *testing.T) {
	tests := []struct {
		name   string
		header []any
	}{
		{"missing header", nil},
		{"wrong scheme", []any{"Authorization: Basic abc"}},
		{"bad token", []any{"Authorization: Bearer v4.local.nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)

			args := append(tt.header, map[string]any{"title": "x", "slug": "x", "content": "x"})
			resp := ts.api.Post("/api/posts/save", args...)

			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, resp.Body.Bytes()).Error)
		})
	}
}

func TestSavePost_ReadOnlyMode(t *testing.T) {
	ts := setupTestServer(t, readOnly)
	token := ts.login(t)

	resp := ts.api.Post("/api/posts/save", token, map[string]any{"title": "x", "slug": "x", "content": "x"})

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "PERMISSION_DENIED", decodeEnvelope(t, resp.Body.Bytes()).Error)
}

func TestSavePost_MalformedBody(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t)

	resp := ts.api.Post("/api/posts/save", token, strings.NewReader("{no es json"))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decodeEnvelope(t, resp.Body.Bytes()).Error)
}

func TestGetPost(t *testing.T) {
	ts := setupTestServer(t)
	_, err := ts.store.SavePost(context.Background(), &domain.Post{
		Title: "Hola", Slug: "hola", Content: "Texto", Date: "2024-03-05",
	})
	require.NoError(t, err)

	resp := ts.api.Get("/api/posts/hola")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var post domain.Post
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &post))
	assert.Equal(t, "Hola", post.Title)
	assert.Equal(t, "5 de marzo de 2024", post.FormattedDate)
	assert.NotEmpty(t, post.CreatedAt)
}

func TestGetPost_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/posts/nada")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decodeEnvelope(t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error)
}

func TestGetPost_StoreDown(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.db.Close())

	resp := ts.api.Get("/api/posts/hola")

	assert.GreaterOrEqual(t, resp.Code, http.StatusInternalServerError)
	assert.Equal(t, "NETWORK_ERROR", decodeEnvelope(t, resp.Body.Bytes()).Error)
}

func TestListPosts_DegradesToEmpty(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.db.Close())

	resp := ts.api.Get("/api/posts")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
}

func TestDeletePost(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.login(t)
	_, err := ts.store.SavePost(context.Background(), &domain.Post{Title: "Hola", Slug: "hola", Content: "x"})
	require.NoError(t, err)

	resp := ts.api.Delete("/api/posts/hola", token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decodeEnvelope(t, resp.Body.Bytes()).Success)

	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/posts/hola").Code)
}

func TestLikePost_Concurrent(t *testing.T) {
	ts := setupTestServer(t)
	_, err := ts.store.SavePost(context.Background(), &domain.Post{Title: "Hola", Slug: "hola", Content: "x"})
	require.NoError(t, err)

	const likes = 20
	var wg sync.WaitGroup
	for range likes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := ts.api.Post("/api/posts/hola/like")
			assert.Equal(t, http.StatusOK, resp.Code)
		}()
	}
	wg.Wait()

	post, err := ts.store.GetPostBySlug(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, likes, post.Likes)
}

func TestLikePost_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/posts/nada/like")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, resp.Body.Bytes()).Error)
}

func TestPopularTags(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	for i, tags := range [][]string{{"a", "b"}, {"a"}, {"c"}, {"a", "b", "c"}} {
		slug := string(rune('p' + i))
		_, err := ts.store.SavePost(ctx, &domain.Post{Title: slug, Slug: slug, Content: "x", Tags: tags})
		require.NoError(t, err)
	}

	resp := ts.api.Get("/api/tags/popular?limit=3")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var tags []domain.TagCount
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tags))
	require.Len(t, tags, 3)
	assert.Equal(t, domain.TagCount{Name: "a", Count: 3}, tags[0])
	assert.ElementsMatch(t, []domain.TagCount{{Name: "b", Count: 2}, {Name: "c", Count: 2}}, tags[1:])
}
