// Package api provides the HTTP surface of the site: typed read operations
// registered with huma and envelope-shaped write handlers on chi.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/reychango/reychango-server/internal/http/response"
	"github.com/reychango/reychango-server/internal/ratelimit"
	"github.com/reychango/reychango-server/internal/service"
	"github.com/reychango/reychango-server/internal/validation"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the dependencies the handlers call into.
type Services struct {
	Content *service.ContentService
	Auth    *service.AuthService
	DB      Pinger

	// Optional per-client limits. A nil limiter disables limiting for its routes.
	LoginLimiter *ratelimit.KeyedRateLimiter
	LikeLimiter  *ratelimit.KeyedRateLimiter
}

// Config holds the HTTP-facing settings.
type Config struct {
	// SiteURL is the public origin used in the sitemap, without a trailing slash.
	SiteURL     string
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services  *Services
	cfg       Config
	validator *validation.Validator
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	s := &Server{
		services:  services,
		cfg:       cfg,
		validator: validation.New(),
		router:    router,
		logger:    logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Reychango API", "1.0.0")
	humaConfig.Info.Description = "Blog posts, photo gallery and site configuration"
	// Bodies are served as plain JSON without a $schema link.
	humaConfig.CreateHooks = nil
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(router, humaConfig)

	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(s.recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Recurso no encontrado", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})

	// Typed reads.
	s.registerHealthRoutes()
	s.registerPostRoutes()
	s.registerPhotoRoutes()
	s.registerAlbumRoutes()
	s.registerConfigRoutes()

	// Envelope writes.
	s.router.Group(func(r chi.Router) {
		r.Use(s.rateLimit(s.services.LikeLimiter))
		r.Post("/api/posts/{slug}/like", s.handleLikePost)
	})
	s.router.Group(func(r chi.Router) {
		r.Use(s.rateLimit(s.services.LoginLimiter))
		r.Post("/api/auth/login", s.handleLogin)
	})
	s.router.Get("/api/albums/{name}", s.handleGetAlbum)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/api/posts/save", s.handleSavePost)
		r.Delete("/api/posts/{slug}", s.handleDeletePost)

		r.Post("/api/photos/save", s.handleSavePhoto)
		r.Delete("/api/photos/{id}", s.handleDeletePhoto)

		r.Post("/api/albums/save", s.handleSaveAlbum)
		r.Delete("/api/albums/{name}", s.handleDeleteAlbum)

		r.Post("/api/config/social", s.handleSaveSocialLinks)
		r.Post("/api/config/friends", s.handleSaveFriendLinks)

		r.Post("/api/auth/logout", s.handleLogout)
		r.Get("/api/auth/session", s.handleGetSession)
	})

	s.router.Get("/sitemap.xml", s.handleSitemap)
}
