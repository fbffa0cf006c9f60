package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/reychango/reychango-server/internal/config"
	"github.com/reychango/reychango-server/internal/docstore"
	"github.com/reychango/reychango-server/internal/logger"
	"github.com/reychango/reychango-server/internal/store"
)

// DocStoreHandle wraps the document store client with shutdown capability.
type DocStoreHandle struct {
	*docstore.Client
}

// Shutdown implements do.Shutdownable.
func (h *DocStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideDocStore opens the document store under the data path, or in memory when configured.
func ProvideDocStore(i do.Injector) (*DocStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := docstore.Options{
		InMemory:   cfg.Data.InMemory,
		SyncWrites: cfg.IsProduction(),
		Logger:     log.Component("docstore"),
	}
	if !opts.InMemory {
		opts.Path = cfg.Data.DBPath()
	}

	client, err := docstore.Open(opts)
	if err != nil {
		return nil, err
	}

	log.Info("Document store opened", "path", opts.Path, "in_memory", opts.InMemory)

	return &DocStoreHandle{Client: client}, nil
}

// ProvideStore provides the content repository.
func ProvideStore(i do.Injector) (*store.Store, error) {
	dbHandle := do.MustInvoke[*DocStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.New(context.Background(), dbHandle.Client, log.Component("store"))
}
