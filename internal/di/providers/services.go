package providers

import (
	"github.com/samber/do/v2"

	"github.com/reychango/reychango-server/internal/auth"
	"github.com/reychango/reychango-server/internal/config"
	"github.com/reychango/reychango-server/internal/logger"
	"github.com/reychango/reychango-server/internal/service"
	"github.com/reychango/reychango-server/internal/store"
)

// ProvideContentService provides the content read facade and write gate.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	repo := do.MustInvoke[*store.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewContentService(repo, service.Mode(cfg.App.Mode), log.Component("content")), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	repo := do.MustInvoke[*store.Store](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(repo, tokenService, service.AdminCredentials{
		Email:        cfg.Auth.AdminEmail,
		PasswordHash: cfg.Auth.AdminPasswordHash,
	}, log.Component("auth")), nil
}
