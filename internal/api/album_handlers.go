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
)

func (s *Server) registerAlbumRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAlbums",
		Method:      http.MethodGet,
		Path:        "/api/albums",
		Summary:     "List albums",
		Description: "Returns every album with the number of photos in it, including albums only referenced by photos",
		Tags:        []string{"Albums"},
	}, s.handleListAlbums)
}

// ListAlbumsOutput wraps the album list for huma.
type ListAlbumsOutput struct {
	Body []*domain.Album
}

// SaveAlbumRequest is the body of POST /api/albums/save.
// OldName renames the album and moves its photos.
type SaveAlbumRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"coverImage,omitempty"`
	OldName     string `json:"oldName,omitempty"`
}

// CascadeResponse reports how many photos an album change touched.
type CascadeResponse struct {
	Matched int `json:"matched"`
	Updated int `json:"updated"`
}

func (s *Server) handleListAlbums(ctx context.Context, _ *struct{}) (*ListAlbumsOutput, error) {
	return &ListAlbumsOutput{Body: s.services.Content.GetAlbums(ctx)}, nil
}

// handleGetAlbum is reserved; single-album reads go through /api/photos?album=.
func (s *Server) handleGetAlbum(w http.ResponseWriter, _ *http.Request) {
	response.HandleError(w, domainerrors.NotImplemented("No implementado"), s.logger)
}

func (s *Server) handleSaveAlbum(w http.ResponseWriter, r *http.Request) {
	var req SaveAlbumRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.services.Content.SaveAlbum(r.Context(), &domain.Album{
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		OldName:     req.OldName,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Álbum guardado correctamente", CascadeResponse{Matched: result.Matched, Updated: result.Updated}, s.logger)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	result, err := s.services.Content.DeleteAlbum(r.Context(), name)
	if err != nil {
		if domainerrors.Is(err, store.ErrAlbumEmpty) {
			response.NotFound(w, "Álbum no encontrado", s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Álbum eliminado correctamente", CascadeResponse{Matched: result.Matched, Updated: result.Updated}, s.logger)
}
