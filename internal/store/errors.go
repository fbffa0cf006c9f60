package store

import (
	"github.com/reychango/reychango-server/internal/docstore"
	domainerrors "github.com/reychango/reychango-server/internal/errors"
)

// Sentinel errors. Each matches only itself under errors.Is; all carry NOT_FOUND, so
// handlers can map them by code.
var (
	ErrPostNotFound    = domainerrors.Sentinel(domainerrors.CodeNotFound, "post not found")
	ErrPhotoNotFound   = domainerrors.Sentinel(domainerrors.CodeNotFound, "photo not found")
	ErrAlbumEmpty      = domainerrors.Sentinel(domainerrors.CodeNotFound, "no photos reference this album")
	ErrSessionNotFound = domainerrors.Sentinel(domainerrors.CodeNotFound, "session not found")
)

// storeError converts a docstore failure into a coded domain error.
func storeError(err error, msg string) error {
	if err == nil {
		return nil
	}

	code := domainerrors.CodeDatabase
	switch docstore.KindOf(err) {
	case docstore.KindPermissionDenied:
		code = domainerrors.CodePermissionDenied
	case docstore.KindUnavailable, docstore.KindCanceled:
		code = domainerrors.CodeNetwork
	case docstore.KindNotFound:
		code = domainerrors.CodeNotFound
	}
	return domainerrors.Wrap(err, code, msg)
}
