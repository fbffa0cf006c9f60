// Package store is the content repository: posts, photos, albums, site configuration
// and admin sessions persisted in the document store.
package store

import (
	"context"
	"log/slog"

	"github.com/reychango/reychango-server/internal/docstore"
)

// Collection names.
const (
	CollectionPosts      = "posts"
	CollectionPhotos     = "photos"
	CollectionAlbums     = "albums"
	CollectionSiteConfig = "site_config"
	CollectionSessions   = "sessions"
)

// cascadeConcurrency bounds the number of photo updates an album rename or delete runs at once.
const cascadeConcurrency = 8

// Store is the content repository. It is safe for concurrent use.
type Store struct {
	db     *docstore.Client
	logger *slog.Logger
}

// New creates a repository over db and declares the indexes its queries rely on.
func New(ctx context.Context, db *docstore.Client, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	indexes := []struct{ collection, field string }{
		{CollectionPosts, "slug"},
		{CollectionPhotos, "album"},
		{CollectionAlbums, "name"},
	}
	for _, idx := range indexes {
		if err := db.EnsureIndex(ctx, idx.collection, idx.field); err != nil {
			return nil, storeError(err, "failed to prepare "+idx.collection+" index")
		}
	}

	return &Store{db: db, logger: logger}, nil
}

// CollectionEmpty reports whether the named collection holds no documents.
func (s *Store) CollectionEmpty(ctx context.Context, collection string) (bool, error) {
	empty, err := s.db.Collection(collection).Empty(ctx)
	if err != nil {
		return false, storeError(err, "failed to inspect "+collection)
	}
	return empty, nil
}

// Ping checks that the underlying store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return storeError(s.db.Ping(ctx), "document store unreachable")
}
