package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reychango/reychango-server/internal/docstore"
)

func setupTestStore(t *testing.T) (*Store, *docstore.Client) {
	t.Helper()
	return openTestStore(t, docstore.Options{Path: t.TempDir()})
}

func openTestStore(t *testing.T, opts docstore.Options) (*Store, *docstore.Client) {
	t.Helper()

	db, err := docstore.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := New(context.Background(), db, nil)
	require.NoError(t, err)
	return s, db
}
