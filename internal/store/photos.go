package store

import (
	"context"

	"github.com/reychango/reychango-server/internal/docstore"
	"github.com/reychango/reychango-server/internal/domain"
)

// ListPhotos returns every photo ordered by date, newest first.
func (s *Store) ListPhotos(ctx context.Context) ([]*domain.Photo, error) {
	snaps, err := s.db.Collection(CollectionPhotos).OrderBy("date", docstore.Desc).Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list photos")
	}
	return decodeAll(s, snaps, func(p *domain.Photo, id string) { p.ID = id }), nil
}

// GetPhotoByID returns the photo stored under id, or ErrPhotoNotFound.
func (s *Store) GetPhotoByID(ctx context.Context, id string) (*domain.Photo, error) {
	snap, err := s.db.Collection(CollectionPhotos).Doc(id).Get(ctx)
	if err != nil {
		switch docstore.KindOf(err) {
		case docstore.KindNotFound, docstore.KindInvalidArgument:
			return nil, ErrPhotoNotFound
		}
		return nil, storeError(err, "failed to get photo")
	}
	photo, err := decode[domain.Photo](snap)
	if err != nil {
		return nil, storeError(err, "failed to decode photo")
	}
	photo.ID = snap.ID
	return photo, nil
}

// ListPhotosByAlbum returns the photos whose album is exactly album, newest first.
func (s *Store) ListPhotosByAlbum(ctx context.Context, album string) ([]*domain.Photo, error) {
	snaps, err := s.db.Collection(CollectionPhotos).
		Where("album", "==", album).
		OrderBy("date", docstore.Desc).
		Documents(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list album photos")
	}
	return decodeAll(s, snaps, func(p *domain.Photo, id string) { p.ID = id }), nil
}

// SavePhoto inserts a photo when it has no id. With an id it merges into the stored
// photo, creating it if needed.
//
// present names the JSON fields the caller supplied; exactly those are written, so an
// empty value clears the stored one. Without present, only non-empty fields are written.
func (s *Store) SavePhoto(ctx context.Context, photo *domain.Photo, present ...string) (*SaveResult, error) {
	photos := s.db.Collection(CollectionPhotos)
	fields := photoFields(photo, present)
	fields["updatedAt"] = docstore.ServerTimestamp

	if photo.ID != "" {
		if err := photos.Doc(photo.ID).Set(ctx, fields, docstore.MergeAll); err != nil {
			return nil, storeError(err, "failed to update photo")
		}
		return &SaveResult{ID: photo.ID}, nil
	}

	fields["createdAt"] = docstore.ServerTimestamp
	ref, err := photos.Add(ctx, fields)
	if err != nil {
		return nil, storeError(err, "failed to create photo")
	}
	return &SaveResult{ID: ref.ID, Created: true}, nil
}

// DeletePhoto removes the photo stored under id. Deleting a missing photo succeeds.
func (s *Store) DeletePhoto(ctx context.Context, id string) error {
	if err := s.db.Collection(CollectionPhotos).Doc(id).Delete(ctx); err != nil {
		return storeError(err, "failed to delete photo")
	}
	return nil
}

func photoFields(p *domain.Photo, present []string) docstore.Data {
	all := map[string]string{
		"title":        p.Title,
		"description":  p.Description,
		"date":         p.Date,
		"url":          p.URL,
		"thumbnailUrl": p.ThumbnailURL,
		"album":        p.Album,
	}

	fields := docstore.Data{}
	if len(present) == 0 {
		for name, value := range all {
			if value != "" {
				fields[name] = value
			}
		}
		return fields
	}
	for _, name := range present {
		if value, ok := all[name]; ok {
			fields[name] = value
		}
	}
	return fields
}
