// Package di provides dependency injection configuration for the Reychango server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/reychango/reychango-server/internal/api"
	"github.com/reychango/reychango-server/internal/auth"
	"github.com/reychango/reychango-server/internal/config"
	"github.com/reychango/reychango-server/internal/di/providers"
	"github.com/reychango/reychango-server/internal/logger"
	"github.com/reychango/reychango-server/internal/service"
	"github.com/reychango/reychango-server/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()
	Register(injector)
	return injector
}

// Register adds every provider to injector.
func Register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideDocStore)
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideContentService)
	do.Provide(injector, providers.ProvideAuthService)

	// Workers
	do.Provide(injector, providers.ProvideMaintenance)
	do.Provide(injector, providers.ProvideRateLimiters)

	// Server
	do.Provide(injector, providers.ProvideAPI)
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector do.Injector) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.DocStoreHandle](injector)
	_ = do.MustInvoke[*store.Store](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.ContentService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)

	// Workers
	_ = do.MustInvoke[*providers.MaintenanceHandle](injector)
	_ = do.MustInvoke[*providers.RateLimiters](injector)

	// Server
	_ = do.MustInvoke[*api.Server](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
