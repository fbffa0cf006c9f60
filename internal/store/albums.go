package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/reychango/reychango-server/internal/docstore"
	"github.com/reychango/reychango-server/internal/domain"
	domainerrors "github.com/reychango/reychango-server/internal/errors"
)

// CascadeFailure records a photo that an album cascade could not update.
type CascadeFailure struct {
	PhotoID string `json:"photoId"`
	Error   string `json:"error"`
}

// CascadeResult reports the outcome of rewriting the album of many photos.
// Updates are independent; a failure does not roll back the others.
type CascadeResult struct {
	Matched int              `json:"matched"`
	Updated int              `json:"updated"`
	Failed  []CascadeFailure `json:"failed,omitempty"`
}

// ListAlbums returns every album document. Count is not computed here.
func (s *Store) ListAlbums(ctx context.Context) ([]*domain.Album, error) {
	snaps, err := s.db.Collection(CollectionAlbums).Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list albums")
	}
	return decodeAll(s, snaps, func(a *domain.Album, id string) { a.ID = id }), nil
}

// ListAlbumsWithCounts returns albums with the number of photos in each, sorted by name.
// Albums referenced by photos but without a document of their own (including the
// "Sin álbum" fallback) are reported too.
func (s *Store) ListAlbumsWithCounts(ctx context.Context) ([]*domain.Album, error) {
	albums, err := s.ListAlbums(ctx)
	if err != nil {
		return nil, err
	}

	photos, err := s.db.Collection(CollectionPhotos).Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to count album photos")
	}

	counts := make(map[string]int)
	for _, snap := range photos {
		name, _ := snap.Data()["album"].(string)
		if name == "" {
			name = domain.NoAlbum
		}
		counts[name]++
	}

	byName := make(map[string]*domain.Album, len(albums))
	for _, a := range albums {
		a.Count = counts[a.Name]
		byName[a.Name] = a
	}
	for name, n := range counts {
		if _, ok := byName[name]; !ok {
			a := &domain.Album{Name: name, Count: n}
			byName[name] = a
			albums = append(albums, a)
		}
	}

	sort.Slice(albums, func(i, j int) bool { return albums[i].Name < albums[j].Name })
	return albums, nil
}

// SaveAlbum upserts the album document. When the album is renamed, every photo in the
// old album is moved to the new name; photos in other albums are left alone.
// Renaming onto a name that already has a document merges into that document.
// The rename is best effort: the result lists the photos that could not be updated
// and the error is non-nil if there were any.
func (s *Store) SaveAlbum(ctx context.Context, album *domain.Album) (*CascadeResult, error) {
	if album.Name == "" {
		return nil, domainerrors.MissingRequiredFields("album name is required", []string{"name"})
	}

	existing, err := s.findAlbum(ctx, album.Name)
	if err != nil {
		return nil, err
	}
	var previous *docstore.Snapshot
	if album.IsRename() {
		if previous, err = s.findAlbum(ctx, album.OldName); err != nil {
			return nil, err
		}
		if existing == nil {
			existing = previous
		}
	}

	fields := docstore.Data{
		"name":        album.Name,
		"description": album.Description,
		"coverImage":  album.CoverImage,
		"updatedAt":   docstore.ServerTimestamp,
	}
	albums := s.db.Collection(CollectionAlbums)
	if existing != nil {
		err = albums.Doc(existing.ID).Set(ctx, fields, docstore.MergeAll)
	} else {
		fields["createdAt"] = docstore.ServerTimestamp
		_, err = albums.Add(ctx, fields)
	}
	if err != nil {
		return nil, storeError(err, "failed to save album")
	}
	// Renaming onto an existing album merges the two; only the target document survives.
	if previous != nil && previous.ID != existing.ID {
		if err := albums.Doc(previous.ID).Delete(ctx); err != nil {
			return nil, storeError(err, "failed to merge album")
		}
	}

	if !album.IsRename() {
		return &CascadeResult{}, nil
	}

	result, err := s.rewriteAlbum(ctx, album.OldName, album.Name)
	if err != nil {
		return result, err
	}
	s.logger.Info("album renamed", "from", album.OldName, "to", album.Name, "photos", result.Updated)
	return result, nil
}

// DeleteAlbum moves every photo of the album to "Sin álbum" and, when all of them
// were moved, deletes the album document. It fails with ErrAlbumEmpty when no photo
// belongs to the album.
func (s *Store) DeleteAlbum(ctx context.Context, name string) (*CascadeResult, error) {
	result, err := s.rewriteAlbum(ctx, name, domain.NoAlbum)
	if err != nil {
		return result, err
	}
	if result.Matched == 0 {
		return result, ErrAlbumEmpty
	}

	existing, err := s.findAlbum(ctx, name)
	if err != nil {
		return result, err
	}
	if existing != nil {
		if err := s.db.Collection(CollectionAlbums).Doc(existing.ID).Delete(ctx); err != nil {
			return result, storeError(err, "failed to delete album")
		}
	}
	s.logger.Info("album deleted", "name", name, "photos", result.Updated)
	return result, nil
}

// rewriteAlbum sets album = to on every photo whose album is from.
func (s *Store) rewriteAlbum(ctx context.Context, from, to string) (*CascadeResult, error) {
	snaps, err := s.db.Collection(CollectionPhotos).Where("album", "==", from).Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to find album photos")
	}

	result := &CascadeResult{Matched: len(snaps)}
	if len(snaps) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cascadeConcurrency)
	photos := s.db.Collection(CollectionPhotos)
	for _, snap := range snaps {
		photoID := snap.ID
		g.Go(func() error {
			err := photos.Doc(photoID).Update(gctx, docstore.Data{
				"album":     to,
				"updatedAt": docstore.ServerTimestamp,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, CascadeFailure{PhotoID: photoID, Error: err.Error()})
				return nil
			}
			result.Updated++
			return nil
		})
	}
	_ = g.Wait()

	if len(result.Failed) > 0 {
		sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].PhotoID < result.Failed[j].PhotoID })
		s.logger.Warn("album cascade incomplete", "from", from, "to", to,
			"matched", result.Matched, "updated", result.Updated, "failed", len(result.Failed))
		return result, domainerrors.Database(fmt.Sprintf("failed to update %d of %d photos", len(result.Failed), result.Matched)).
			WithDetails(result.Failed)
	}
	return result, nil
}

// findAlbum returns the album document with name, or nil when there is none.
func (s *Store) findAlbum(ctx context.Context, name string) (*docstore.Snapshot, error) {
	snaps, err := s.db.Collection(CollectionAlbums).Where("name", "==", name).Limit(1).Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to look up album")
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}
