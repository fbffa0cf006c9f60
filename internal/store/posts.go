package store

import (
	"context"

	"github.com/reychango/reychango-server/internal/docstore"
	"github.com/reychango/reychango-server/internal/domain"
	"github.com/reychango/reychango-server/internal/util"
)

// SaveResult identifies the document written by a save.
type SaveResult struct {
	ID      string `json:"id"`
	Slug    string `json:"slug,omitempty"`
	Created bool   `json:"created"`
}

// ListPosts returns every post ordered by date, newest first.
// Timestamps are returned as ISO-8601 strings.
func (s *Store) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	snaps, err := s.db.Collection(CollectionPosts).OrderBy("date", docstore.Desc).Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list posts")
	}
	return decodeAll(s, snaps, func(p *domain.Post, id string) { p.ID = id }), nil
}

// GetPostBySlug returns the post with the given slug, or ErrPostNotFound.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	snap, err := s.findPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrPostNotFound
	}
	return s.decodePost(snap)
}

// GetPostByID returns the post stored under id, or ErrPostNotFound.
func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	snap, err := s.db.Collection(CollectionPosts).Doc(id).Get(ctx)
	if err != nil {
		switch docstore.KindOf(err) {
		case docstore.KindNotFound, docstore.KindInvalidArgument:
			return nil, ErrPostNotFound
		}
		return nil, storeError(err, "failed to get post")
	}
	return s.decodePost(snap)
}

// SavePost writes a post. An id updates that post; otherwise an existing post
// with the same slug is updated in place; otherwise a new post is inserted.
// Inserts stamp createdAt and updatedAt, updates stamp only updatedAt.
func (s *Store) SavePost(ctx context.Context, post *domain.Post) (*SaveResult, error) {
	fields := postFields(post)
	fields["updatedAt"] = docstore.ServerTimestamp

	posts := s.db.Collection(CollectionPosts)

	if post.ID != "" {
		if err := posts.Doc(post.ID).Update(ctx, fields); err != nil {
			if docstore.IsNotFound(err) {
				return nil, ErrPostNotFound
			}
			return nil, storeError(err, "failed to update post")
		}
		return &SaveResult{ID: post.ID, Slug: post.Slug}, nil
	}

	if post.Slug != "" {
		existing, err := s.findPostBySlug(ctx, post.Slug)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := posts.Doc(existing.ID).Update(ctx, fields); err != nil {
				return nil, storeError(err, "failed to update post")
			}
			return &SaveResult{ID: existing.ID, Slug: post.Slug}, nil
		}
	}

	fields["createdAt"] = docstore.ServerTimestamp
	fields["likes"] = max(post.Likes, 0)
	ref, err := posts.Add(ctx, fields)
	if err != nil {
		return nil, storeError(err, "failed to create post")
	}
	s.logger.Info("post created", "id", ref.ID, "slug", post.Slug)
	return &SaveResult{ID: ref.ID, Slug: post.Slug, Created: true}, nil
}

// DeletePost removes the post stored under id. Deleting a missing post succeeds.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := s.db.Collection(CollectionPosts).Doc(id).Delete(ctx); err != nil {
		return storeError(err, "failed to delete post")
	}
	return nil
}

// DeletePostBySlug removes the post with the given slug. An unknown slug is a no-op.
func (s *Store) DeletePostBySlug(ctx context.Context, slug string) error {
	snap, err := s.findPostBySlug(ctx, slug)
	if err != nil || snap == nil {
		return err
	}
	return s.DeletePost(ctx, snap.ID)
}

// LikePost atomically adds one like to the post identified by slug, falling back to
// treating the value as a document id. It returns the new like count.
func (s *Store) LikePost(ctx context.Context, slugOrID string) (int, error) {
	snap, err := s.findPostBySlug(ctx, slugOrID)
	if err != nil {
		return 0, err
	}

	postID := slugOrID
	if snap != nil {
		postID = snap.ID
	}

	doc := s.db.Collection(CollectionPosts).Doc(postID)
	if err := doc.Update(ctx, docstore.Data{"likes": docstore.Increment(1)}); err != nil {
		switch docstore.KindOf(err) {
		case docstore.KindNotFound, docstore.KindInvalidArgument:
			return 0, ErrPostNotFound
		}
		return 0, storeError(err, "failed to like post")
	}

	updated, err := doc.Get(ctx)
	if err != nil {
		return 0, storeError(err, "failed to read likes")
	}
	likes, _ := updated.Data()["likes"].(int64)
	return int(likes), nil
}

// findPostBySlug returns the first post with slug, or nil when there is none.
func (s *Store) findPostBySlug(ctx context.Context, slug string) (*docstore.Snapshot, error) {
	if slug == "" {
		return nil, nil
	}
	snaps, err := s.db.Collection(CollectionPosts).Where("slug", "==", slug).Limit(1).Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to look up post")
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}

func (s *Store) decodePost(snap *docstore.Snapshot) (*domain.Post, error) {
	post, err := decode[domain.Post](snap)
	if err != nil {
		return nil, storeError(err, "failed to decode post")
	}
	post.ID = snap.ID
	return post, nil
}

// postFields returns the persisted fields of post. The id, the like counter,
// server timestamps and the display-only formatted date are never written from here.
func postFields(post *domain.Post) docstore.Data {
	tags := make([]string, 0, len(post.Tags))
	for _, t := range post.Tags {
		if t != "" {
			tags = append(tags, t)
		}
	}

	excerpt := post.Excerpt
	if excerpt == "" && post.Content != "" {
		excerpt = util.Excerpt(post.Content, util.ExcerptLength)
	}

	return docstore.Data{
		"title":      post.Title,
		"slug":       post.Slug,
		"content":    post.Content,
		"excerpt":    excerpt,
		"author":     post.Author,
		"date":       post.Date,
		"coverImage": post.CoverImage,
		"tags":       tags,
	}
}
