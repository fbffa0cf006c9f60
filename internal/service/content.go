package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/reychango/reychango-server/internal/domain"
	domainerrors "github.com/reychango/reychango-server/internal/errors"
	"github.com/reychango/reychango-server/internal/store"
)

// Mode is the execution context the content service runs in.
type Mode string

// Execution modes.
const (
	// ModeServer allows writes.
	ModeServer Mode = "server"
	// ModeReadOnly serves reads only; every write is rejected with ErrServerOnly.
	ModeReadOnly Mode = "readonly"
)

// ErrServerOnly is returned by write methods outside server mode.
var ErrServerOnly = domainerrors.PermissionDenied("write operations are only available in server mode")

// ContentRepository is the persistence the content service reads and writes through.
type ContentRepository interface {
	ListPosts(ctx context.Context) ([]*domain.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error)
	SavePost(ctx context.Context, post *domain.Post) (*store.SaveResult, error)
	DeletePostBySlug(ctx context.Context, slug string) error
	LikePost(ctx context.Context, slugOrID string) (int, error)
	PopularTags(ctx context.Context, limit int) ([]domain.TagCount, error)

	ListPhotos(ctx context.Context) ([]*domain.Photo, error)
	GetPhotoByID(ctx context.Context, id string) (*domain.Photo, error)
	SavePhoto(ctx context.Context, photo *domain.Photo, present ...string) (*store.SaveResult, error)
	DeletePhoto(ctx context.Context, id string) error

	ListAlbumsWithCounts(ctx context.Context) ([]*domain.Album, error)
	SaveAlbum(ctx context.Context, album *domain.Album) (*store.CascadeResult, error)
	DeleteAlbum(ctx context.Context, name string) (*store.CascadeResult, error)

	GetSocialLinks(ctx context.Context) (*domain.SocialLinks, error)
	SaveSocialLinks(ctx context.Context, links *domain.SocialLinks) error
	GetFriendLinks(ctx context.Context) ([]domain.FriendLink, error)
	SaveFriendLinks(ctx context.Context, links []domain.FriendLink) error
}

// ContentService sits between the HTTP layer and the repository. Reads are sorted and
// formatted for display and never fail: a repository error is logged here and an
// empty result is returned. Writes return typed errors.
type ContentService struct {
	repo   ContentRepository
	mode   Mode
	logger *slog.Logger
}

// NewContentService creates a content service.
func NewContentService(repo ContentRepository, mode Mode, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{repo: repo, mode: mode, logger: logger}
}

// Mode returns the execution mode.
func (s *ContentService) Mode() Mode {
	return s.mode
}

// GetPosts returns every post, newest first, with formattedDate set.
func (s *ContentService) GetPosts(ctx context.Context) []*domain.Post {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		s.logger.Error("failed to load posts", "error", err)
		return []*domain.Post{}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return newer(posts[i].Date, posts[j].Date)
	})
	for _, p := range posts {
		p.FormattedDate = FormatDate(p.Date)
	}
	return posts
}

// GetPostBySlug returns the post with slug, or nil when it does not exist or cannot be read.
func (s *ContentService) GetPostBySlug(ctx context.Context, slug string) *domain.Post {
	post, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		if !domainerrors.Is(err, store.ErrPostNotFound) {
			s.logger.Error("failed to load post", "slug", slug, "error", err)
		}
		return nil
	}
	post.FormattedDate = FormatDate(post.Date)
	return post
}

// FindPostBySlug is GetPostBySlug for callers that must tell absence from failure.
// It returns store.ErrPostNotFound or the repository error unchanged.
func (s *ContentService) FindPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	post, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	post.FormattedDate = FormatDate(post.Date)
	return post, nil
}

// GetPopularTags returns the most used tags, or an empty list on failure.
func (s *ContentService) GetPopularTags(ctx context.Context, limit int) []domain.TagCount {
	tags, err := s.repo.PopularTags(ctx, limit)
	if err != nil {
		s.logger.Error("failed to aggregate tags", "error", err)
		return []domain.TagCount{}
	}
	return tags
}

// GetPhotos returns every photo, newest first, with formattedDate set.
func (s *ContentService) GetPhotos(ctx context.Context) []*domain.Photo {
	photos, err := s.repo.ListPhotos(ctx)
	if err != nil {
		s.logger.Error("failed to load photos", "error", err)
		return []*domain.Photo{}
	}

	sort.SliceStable(photos, func(i, j int) bool {
		return newer(photos[i].Date, photos[j].Date)
	})
	for _, p := range photos {
		p.FormattedDate = FormatDate(p.Date)
	}
	return photos
}

// GetPhotosByAlbum filters GetPhotos by exact album name.
func (s *ContentService) GetPhotosByAlbum(ctx context.Context, album string) []*domain.Photo {
	all := s.GetPhotos(ctx)
	out := make([]*domain.Photo, 0, len(all))
	for _, p := range all {
		if p.Album == album {
			out = append(out, p)
		}
	}
	return out
}

// GetPhotoByID scans GetPhotos for id. This is linear in the number of photos.
func (s *ContentService) GetPhotoByID(ctx context.Context, id string) *domain.Photo {
	for _, p := range s.GetPhotos(ctx) {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindPhotoByID reads a single photo, returning store.ErrPhotoNotFound or the repository error.
func (s *ContentService) FindPhotoByID(ctx context.Context, id string) (*domain.Photo, error) {
	photo, err := s.repo.GetPhotoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	photo.FormattedDate = FormatDate(photo.Date)
	return photo, nil
}

// GetAlbums returns albums with photo counts, or an empty list on failure.
func (s *ContentService) GetAlbums(ctx context.Context) []*domain.Album {
	albums, err := s.repo.ListAlbumsWithCounts(ctx)
	if err != nil {
		s.logger.Error("failed to load albums", "error", err)
		return []*domain.Album{}
	}
	return albums
}

// GetSocialLinks returns the social links, or empty defaults on failure.
func (s *ContentService) GetSocialLinks(ctx context.Context) *domain.SocialLinks {
	links, err := s.repo.GetSocialLinks(ctx)
	if err != nil {
		s.logger.Error("failed to load social links", "error", err)
		return &domain.SocialLinks{}
	}
	return links
}

// GetFriendLinks returns the blogroll, or an empty list on failure.
func (s *ContentService) GetFriendLinks(ctx context.Context) []domain.FriendLink {
	links, err := s.repo.GetFriendLinks(ctx)
	if err != nil {
		s.logger.Error("failed to load friend links", "error", err)
		return []domain.FriendLink{}
	}
	return links
}

// SavePost creates or updates a post.
func (s *ContentService) SavePost(ctx context.Context, post *domain.Post) (*store.SaveResult, error) {
	if err := s.requireServer("save post"); err != nil {
		return nil, err
	}
	post.FormattedDate = ""
	return s.repo.SavePost(ctx, post)
}

// DeletePost deletes the post with slug.
func (s *ContentService) DeletePost(ctx context.Context, slug string) error {
	if err := s.requireServer("delete post"); err != nil {
		return err
	}
	return s.repo.DeletePostBySlug(ctx, slug)
}

// LikePost adds a like and returns the new count.
func (s *ContentService) LikePost(ctx context.Context, slugOrID string) (int, error) {
	if err := s.requireServer("like post"); err != nil {
		return 0, err
	}
	return s.repo.LikePost(ctx, slugOrID)
}

// SavePhoto creates or merges a photo. present names the fields the client sent.
func (s *ContentService) SavePhoto(ctx context.Context, photo *domain.Photo, present ...string) (*store.SaveResult, error) {
	if err := s.requireServer("save photo"); err != nil {
		return nil, err
	}
	photo.FormattedDate = ""
	return s.repo.SavePhoto(ctx, photo, present...)
}

// DeletePhoto deletes a photo by id.
func (s *ContentService) DeletePhoto(ctx context.Context, id string) error {
	if err := s.requireServer("delete photo"); err != nil {
		return err
	}
	return s.repo.DeletePhoto(ctx, id)
}

// SaveAlbum upserts an album, cascading a rename to its photos.
func (s *ContentService) SaveAlbum(ctx context.Context, album *domain.Album) (*store.CascadeResult, error) {
	if err := s.requireServer("save album"); err != nil {
		return nil, err
	}
	return s.repo.SaveAlbum(ctx, album)
}

// DeleteAlbum moves the album's photos to "Sin álbum" and deletes it.
func (s *ContentService) DeleteAlbum(ctx context.Context, name string) (*store.CascadeResult, error) {
	if err := s.requireServer("delete album"); err != nil {
		return nil, err
	}
	return s.repo.DeleteAlbum(ctx, name)
}

// SaveSocialLinks merges the social links.
func (s *ContentService) SaveSocialLinks(ctx context.Context, links *domain.SocialLinks) error {
	if err := s.requireServer("save social links"); err != nil {
		return err
	}
	return s.repo.SaveSocialLinks(ctx, links)
}

// SaveFriendLinks replaces the blogroll.
func (s *ContentService) SaveFriendLinks(ctx context.Context, links []domain.FriendLink) error {
	if err := s.requireServer("save friend links"); err != nil {
		return err
	}
	return s.repo.SaveFriendLinks(ctx, links)
}

func (s *ContentService) requireServer(op string) error {
	if s.mode == ModeServer {
		return nil
	}
	s.logger.Warn("write rejected outside server mode", "operation", op, "mode", s.mode)
	return ErrServerOnly
}

// newer orders dates newest first; unparseable dates sort last.
func newer(a, b string) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	switch {
	case okA && okB:
		return ta.After(tb)
	default:
		return okA && !okB
	}
}
