package store

import (
	"context"

	"github.com/reychango/reychango-server/internal/docstore"
	"github.com/reychango/reychango-server/internal/domain"
)

// Documents of the site_config collection.
const (
	docSocialLinks = "social_links"
	docFriendLinks = "friend_links"
)

// GetSocialLinks returns the stored social links over empty defaults.
func (s *Store) GetSocialLinks(ctx context.Context) (*domain.SocialLinks, error) {
	links := &domain.SocialLinks{}
	snap, err := s.db.Collection(CollectionSiteConfig).Doc(docSocialLinks).Get(ctx)
	if docstore.IsNotFound(err) {
		return links, nil
	}
	if err != nil {
		return nil, storeError(err, "failed to get social links")
	}

	stored, err := decode[domain.SocialLinks](snap)
	if err != nil {
		return nil, storeError(err, "failed to decode social links")
	}
	return stored, nil
}

// SaveSocialLinks merges links into the stored social links.
func (s *Store) SaveSocialLinks(ctx context.Context, links *domain.SocialLinks) error {
	err := s.db.Collection(CollectionSiteConfig).Doc(docSocialLinks).Set(ctx, docstore.Data{
		"facebook":          links.Facebook,
		"facebookSecondary": links.FacebookSecondary,
		"instagram":         links.Instagram,
		"threads":           links.Threads,
		"bluesky":           links.Bluesky,
		"mastodon":          links.Mastodon,
		"updatedAt":         docstore.ServerTimestamp,
	}, docstore.MergeAll)
	return storeError(err, "failed to save social links")
}

// GetFriendLinks returns the blogroll. It is empty when nothing was saved.
func (s *Store) GetFriendLinks(ctx context.Context) ([]domain.FriendLink, error) {
	snap, err := s.db.Collection(CollectionSiteConfig).Doc(docFriendLinks).Get(ctx)
	if docstore.IsNotFound(err) {
		return []domain.FriendLink{}, nil
	}
	if err != nil {
		return nil, storeError(err, "failed to get friend links")
	}

	doc, err := decode[struct {
		Links []domain.FriendLink `json:"links"`
	}](snap)
	if err != nil {
		return nil, storeError(err, "failed to decode friend links")
	}
	if doc.Links == nil {
		return []domain.FriendLink{}, nil
	}
	return doc.Links, nil
}

// SaveFriendLinks replaces the blogroll.
func (s *Store) SaveFriendLinks(ctx context.Context, links []domain.FriendLink) error {
	items := make([]any, 0, len(links))
	for _, l := range links {
		items = append(items, map[string]any{
			"name":        l.Name,
			"url":         l.URL,
			"description": l.Description,
		})
	}
	err := s.db.Collection(CollectionSiteConfig).Doc(docFriendLinks).Set(ctx, docstore.Data{
		"links":     items,
		"updatedAt": docstore.ServerTimestamp,
	}, docstore.MergeAll)
	return storeError(err, "failed to save friend links")
}
