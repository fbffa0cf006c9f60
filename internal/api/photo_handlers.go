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

func (s *Server) registerPhotoRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPhotos",
		Method:      http.MethodGet,
		Path:        "/api/photos",
		Summary:     "List photos",
		Description: "Returns every photo, newest first, optionally filtered by album",
		Tags:        []string{"Photos"},
	}, s.handleListPhotos)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPhoto",
		Method:      http.MethodGet,
		Path:        "/api/photos/{id}",
		Summary:     "Get photo",
		Description: "Returns a single photo by id",
		Tags:        []string{"Photos"},
	}, s.handleGetPhoto)
}

// ListPhotosInput contains parameters for listing photos.
type ListPhotosInput struct {
	Album string `query:"album" doc:"Only photos in this album"`
}

// ListPhotosOutput wraps the photo list for huma.
type ListPhotosOutput struct {
	Body []*domain.Photo
}

// GetPhotoInput contains parameters for getting a photo.
type GetPhotoInput struct {
	ID string `path:"id" doc:"Photo ID"`
}

// PhotoOutput wraps a single photo for huma.
type PhotoOutput struct {
	Body *domain.Photo
}

// SavePhotoRequest is the body of POST /api/photos/save.
// Optional fields are pointers: a field sent as "" clears the stored value, an
// omitted field keeps it.
type SavePhotoRequest struct {
	ID           string  `json:"id,omitempty"`
	Title        string  `json:"title" validate:"required"`
	URL          string  `json:"url" validate:"required,url"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
	Description  *string `json:"description,omitempty"`
	Date         *string `json:"date,omitempty"`
	Album        *string `json:"album,omitempty"`
}

// photo returns the photo described by the request and the names of the fields it sent.
func (req *SavePhotoRequest) photo() (*domain.Photo, []string) {
	photo := &domain.Photo{ID: req.ID, Title: req.Title, URL: req.URL}
	present := []string{"title", "url"}

	optional := []struct {
		name  string
		value *string
		dst   *string
	}{
		{"thumbnailUrl", req.ThumbnailURL, &photo.ThumbnailURL},
		{"description", req.Description, &photo.Description},
		{"date", req.Date, &photo.Date},
		{"album", req.Album, &photo.Album},
	}
	for _, f := range optional {
		if f.value != nil {
			*f.dst = *f.value
			present = append(present, f.name)
		}
	}
	return photo, present
}

func (s *Server) handleListPhotos(ctx context.Context, input *ListPhotosInput) (*ListPhotosOutput, error) {
	if input.Album != "" {
		return &ListPhotosOutput{Body: s.services.Content.GetPhotosByAlbum(ctx, input.Album)}, nil
	}
	return &ListPhotosOutput{Body: s.services.Content.GetPhotos(ctx)}, nil
}

func (s *Server) handleGetPhoto(ctx context.Context, input *GetPhotoInput) (*PhotoOutput, error) {
	photo, err := s.services.Content.FindPhotoByID(ctx, input.ID)
	if err != nil {
		if domainerrors.Is(err, store.ErrPhotoNotFound) {
			return nil, domainerrors.NotFound("Foto no encontrada")
		}
		s.logger.Error("Failed to get photo", "id", input.ID, "error", err)
		return nil, err
	}
	return &PhotoOutput{Body: photo}, nil
}

func (s *Server) handleSavePhoto(w http.ResponseWriter, r *http.Request) {
	var req SavePhotoRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	photo, present := req.photo()
	result, err := s.services.Content.SavePhoto(r.Context(), photo, present...)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Foto guardada correctamente", SaveResponse{ID: result.ID}, s.logger)
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.services.Content.DeletePhoto(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Foto eliminada correctamente", nil, s.logger)
}
