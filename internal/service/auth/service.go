package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

type AuthServiceImpl struct {
	auth.RevocationStore
	notifier notification.Service
	loc      *time.Location
	now      func() time.Time
}

func NewAuthService(store auth.RevocationStore, notifier notification.Service, loc *time.Location) auth.AuthService {
	if loc == nil {
		loc = time.Local
	}
	return &AuthServiceImpl{
		RevocationStore: store,
		notifier:        notifier,
		loc:             loc,
		now:             time.Now,
	}
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.LogoutRequest) error {
	if req.Token == "" {
		return auth.ErrMissingToken
	}

	expiresAt := req.ExpiresAt
	if expiresAt.IsZero() {
		// Tokens without exp stay revoked for a day.
		expiresAt = a.now().Add(24 * time.Hour)
	}

	if err := a.RevocationStore.Revoke(ctx, req.Token, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if a.notifier != nil {
		now := a.now()
		text := fmt.Sprintf("*User Logout Successful* 🟥\n"+
			"\n👮 Name: %s (%s)\n"+
			"\n📧 Email: %s\n"+
			"\n🕒 Date & Time: %s, %s",
			req.Name, req.Role, req.Email,
			now.In(a.loc).Format(utils.ReportDateLayout), utils.FormatClock(&now, a.loc),
		)
		if err := a.notifier.Notify(ctx, notification.TopicSecurity, text); err != nil {
			slog.Warn("Failed to queue logout notification", "email", req.Email, "error", err)
		}
	}

	return nil
}
