package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
)

type AuthJobs struct {
	store auth.RevocationStore
	now   func() time.Time
}

func NewAuthJobs(store auth.RevocationStore) *AuthJobs {
	return &AuthJobs{store: store, now: time.Now}
}

func (j *AuthJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("purge_revoked_tokens", interval, j.PurgeRevokedTokens)
}

func (j *AuthJobs) PurgeRevokedTokens(ctx context.Context) error {
	purged, err := j.store.PurgeExpired(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to purge revoked tokens: %w", err)
	}
	if purged > 0 {
		slog.Info("Cron: Purged expired revoked tokens", "count", purged)
	}
	return nil
}
