package auth

import (
	"context"
	"time"
)

type AuthService interface {
	// Logout revokes the token until it would have expired anyway.
	Logout(ctx context.Context, req LogoutRequest) error
}

// RevocationStore remembers revoked tokens until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)

	// PurgeExpired drops entries whose expiry is not after now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
