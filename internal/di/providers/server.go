package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/reychango/reychango-server/internal/api"
	"github.com/reychango/reychango-server/internal/config"
	"github.com/reychango/reychango-server/internal/logger"
	"github.com/reychango/reychango-server/internal/service"
	"github.com/reychango/reychango-server/internal/store"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPI provides the HTTP handler with every route registered.
func ProvideAPI(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiters := do.MustInvoke[*RateLimiters](i)

	services := &api.Services{
		Content:      do.MustInvoke[*service.ContentService](i),
		Auth:         do.MustInvoke[*service.AuthService](i),
		DB:           do.MustInvoke[*store.Store](i),
		LoginLimiter: limiters.Login,
		LikeLimiter:  limiters.Like,
	}

	return api.NewServer(services, api.Config{
		SiteURL:     cfg.Site.URL,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, log.Component("api")), nil
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "site_url", cfg.Site.URL)

	return &HTTPServerHandle{Server: srv}, nil
}
