package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/reychango/reychango-server/internal/config"
	"github.com/reychango/reychango-server/internal/jobs"
	"github.com/reychango/reychango-server/internal/logger"
	"github.com/reychango/reychango-server/internal/ratelimit"
	"github.com/reychango/reychango-server/internal/store"
)

// Per-client request budgets.
const (
	loginRPS   = 5.0 / 60
	loginBurst = 5
	likeRPS    = 0.5
	likeBurst  = 10
)

// MaintenanceHandle runs the periodic store maintenance tasks.
type MaintenanceHandle struct {
	*jobs.Scheduler
}

// ProvideMaintenance schedules value-log GC and expired session cleanup.
func ProvideMaintenance(i do.Injector) (*MaintenanceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	dbHandle := do.MustInvoke[*DocStoreHandle](i)
	repo := do.MustInvoke[*store.Store](i)

	scheduler := jobs.NewScheduler(log.Logger)

	gc := jobs.TaskFunc{TaskName: "docstore-gc", Fn: func(ctx context.Context) error {
		rewritten, err := dbHandle.CollectGarbage(ctx)
		if err != nil {
			return err
		}
		if rewritten > 0 {
			log.Info("Value log garbage collected", "files_rewritten", rewritten)
		}
		return nil
	}}

	sessions := jobs.TaskFunc{TaskName: "session-cleanup", Fn: func(ctx context.Context) error {
		count, err := repo.DeleteExpiredSessions(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			log.Info("Session cleanup completed", "deleted", count)
		}
		return nil
	}}

	if err := scheduler.Register(cfg.Maintenance.GCSchedule, gc); err != nil {
		return nil, err
	}
	if err := scheduler.Register(cfg.Maintenance.SessionCleanupSchedule, sessions); err != nil {
		return nil, err
	}

	// Initial cleanup on startup.
	scheduler.RunNow(sessions)
	scheduler.Start()

	return &MaintenanceHandle{Scheduler: scheduler}, nil
}

// RateLimiters holds the per-client limiters of the public write endpoints.
type RateLimiters struct {
	Login *ratelimit.KeyedRateLimiter
	Like  *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (r *RateLimiters) Shutdown() error {
	r.Login.Stop()
	r.Like.Stop()
	return nil
}

// ProvideRateLimiters provides the login and like limiters.
func ProvideRateLimiters(i do.Injector) (*RateLimiters, error) {
	return &RateLimiters{
		Login: ratelimit.New(loginRPS, loginBurst),
		Like:  ratelimit.New(likeRPS, likeBurst),
	}, nil
}
