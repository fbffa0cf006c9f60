package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reychango/reychango-server/internal/domain"
	"github.com/reychango/reychango-server/internal/http/response"
)

func (s *Server) registerConfigRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSocialLinks",
		Method:      http.MethodGet,
		Path:        "/api/config/social",
		Summary:     "Get social links",
		Description: "Returns the profile links shown in the site footer",
		Tags:        []string{"Site"},
	}, s.handleGetSocialLinks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFriendLinks",
		Method:      http.MethodGet,
		Path:        "/api/config/friends",
		Summary:     "Get friend links",
		Description: "Returns the blogroll",
		Tags:        []string{"Site"},
	}, s.handleGetFriendLinks)
}

// SocialLinksOutput wraps the social links for huma.
type SocialLinksOutput struct {
	Body *domain.SocialLinks
}

// FriendLinksOutput wraps the blogroll for huma.
type FriendLinksOutput struct {
	Body FriendLinksBody
}

// FriendLinksBody is the blogroll document.
type FriendLinksBody struct {
	Links []domain.FriendLink `json:"links"`
}

// SocialLinksRequest is the body of POST /api/config/social. Every field is optional;
// only the ones sent are changed.
type SocialLinksRequest struct {
	Facebook          *string `json:"facebook,omitempty" validate:"omitempty,url"`
	FacebookSecondary *string `json:"facebookSecondary,omitempty" validate:"omitempty,url"`
	Instagram         *string `json:"instagram,omitempty" validate:"omitempty,url"`
	Threads           *string `json:"threads,omitempty" validate:"omitempty,url"`
	Bluesky           *string `json:"bluesky,omitempty" validate:"omitempty,url"`
	Mastodon          *string `json:"mastodon,omitempty" validate:"omitempty,url"`
}

// FriendLinksRequest is the body of POST /api/config/friends. It replaces the blogroll.
type FriendLinksRequest struct {
	Links []domain.FriendLink `json:"links" validate:"dive"`
}

func (s *Server) handleGetSocialLinks(ctx context.Context, _ *struct{}) (*SocialLinksOutput, error) {
	return &SocialLinksOutput{Body: s.services.Content.GetSocialLinks(ctx)}, nil
}

func (s *Server) handleGetFriendLinks(ctx context.Context, _ *struct{}) (*FriendLinksOutput, error) {
	return &FriendLinksOutput{Body: FriendLinksBody{Links: s.services.Content.GetFriendLinks(ctx)}}, nil
}

func (s *Server) handleSaveSocialLinks(w http.ResponseWriter, r *http.Request) {
	var req SocialLinksRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	// Merge over the stored links so that omitted fields keep their value.
	links := s.services.Content.GetSocialLinks(r.Context())
	for field, value := range map[*string]*string{
		&links.Facebook:          req.Facebook,
		&links.FacebookSecondary: req.FacebookSecondary,
		&links.Instagram:         req.Instagram,
		&links.Threads:           req.Threads,
		&links.Bluesky:           req.Bluesky,
		&links.Mastodon:          req.Mastodon,
	} {
		if value != nil {
			*field = *value
		}
	}

	if err := s.services.Content.SaveSocialLinks(r.Context(), links); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Enlaces guardados correctamente", links, s.logger)
}

func (s *Server) handleSaveFriendLinks(w http.ResponseWriter, r *http.Request) {
	var req FriendLinksRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if req.Links == nil {
		req.Links = []domain.FriendLink{}
	}

	if err := s.services.Content.SaveFriendLinks(r.Context(), req.Links); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Enlaces guardados correctamente", FriendLinksBody{Links: req.Links}, s.logger)
}
