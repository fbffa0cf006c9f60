package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/reychango/reychango-server/internal/domain"
	domainerrors "github.com/reychango/reychango-server/internal/errors"
	"github.com/reychango/reychango-server/internal/http/response"
	"github.com/reychango/reychango-server/internal/store"
	"github.com/reychango/reychango-server/internal/util"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/posts",
		Summary:     "List posts",
		Description: "Returns every post, newest first, with a display date",
		Tags:        []string{"Posts"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/posts/{slug}",
		Summary:     "Get post",
		Description: "Returns a single post by slug",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "popularTags",
		Method:      http.MethodGet,
		Path:        "/api/tags/popular",
		Summary:     "Popular tags",
		Description: "Returns the most used tags with their post counts",
		Tags:        []string{"Posts"},
	}, s.handlePopularTags)
}

// === DTOs ===

// ListPostsOutput wraps the post list for huma.
type ListPostsOutput struct {
	Body []*domain.Post
}

// GetPostInput contains parameters for getting a post.
type GetPostInput struct {
	Slug string `path:"slug" doc:"Post slug"`
}

// PostOutput wraps a single post for huma.
type PostOutput struct {
	Body *domain.Post
}

// PopularTagsInput contains parameters for the tag ranking.
type PopularTagsInput struct {
	Limit int `query:"limit" doc:"Maximum number of tags; 0 or less uses the default"`
}

// PopularTagsOutput wraps the tag ranking for huma.
type PopularTagsOutput struct {
	Body []domain.TagCount
}

// SavePostRequest is the body of POST /api/posts/save.
type SavePostRequest struct {
	ID         string   `json:"id,omitempty"`
	Title      string   `json:"title" validate:"required"`
	Slug       string   `json:"slug" validate:"required,slug"`
	Content    string   `json:"content" validate:"required"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Author     string   `json:"author,omitempty"`
	Date       string   `json:"date,omitempty"`
	CoverImage string   `json:"coverImage,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// SaveResponse is the data of a successful save.
type SaveResponse struct {
	ID   string `json:"id"`
	Slug string `json:"slug,omitempty"`
}

// LikeResponse is the data of a successful like.
type LikeResponse struct {
	Likes int `json:"likes"`
}

// === Handlers ===

func (s *Server) handleListPosts(ctx context.Context, _ *struct{}) (*ListPostsOutput, error) {
	return &ListPostsOutput{Body: s.services.Content.GetPosts(ctx)}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *GetPostInput) (*PostOutput, error) {
	post, err := s.services.Content.FindPostBySlug(ctx, input.Slug)
	if err != nil {
		if domainerrors.Is(err, store.ErrPostNotFound) {
			return nil, domainerrors.NotFound("Post no encontrado")
		}
		s.logger.Error("Failed to get post", "slug", input.Slug, "error", err)
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handlePopularTags(ctx context.Context, input *PopularTagsInput) (*PopularTagsOutput, error) {
	return &PopularTagsOutput{Body: s.services.Content.GetPopularTags(ctx, input.Limit)}, nil
}

func (s *Server) handleSavePost(w http.ResponseWriter, r *http.Request) {
	var req SavePostRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	// The editor may leave the slug for the server to derive from the title.
	if req.Slug == "" && req.Title != "" {
		req.Slug = util.Slugify(req.Title)
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.services.Content.SavePost(r.Context(), &domain.Post{
		ID:         req.ID,
		Slug:       req.Slug,
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Author:     req.Author,
		Date:       req.Date,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Post guardado correctamente", SaveResponse{ID: result.ID, Slug: result.Slug}, s.logger)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := s.services.Content.DeletePost(r.Context(), slug); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Post eliminado correctamente", nil, s.logger)
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	likes, err := s.services.Content.LikePost(r.Context(), slug)
	if err != nil {
		if domainerrors.Is(err, store.ErrPostNotFound) {
			response.NotFound(w, "Post no encontrado", s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "", LikeResponse{Likes: likes}, s.logger)
}
