package postgresql

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type revokedTokenRepository struct {
	db *database.DB
}

// NewRevokedTokenRepository stores revocations in revoked_tokens so that every
// API instance sees a logout.
func NewRevokedTokenRepository(db *database.DB) auth.RevocationStore {
	return &revokedTokenRepository{db: db}
}

// hashToken hashes the input string using SHA256 and encodes the result in base64.
func hashToken(input string) string {
	hash := sha256.Sum256([]byte(input))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func (r *revokedTokenRepository) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO revoked_tokens (token_hash, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_hash) DO UPDATE SET expires_at = GREATEST(revoked_tokens.expires_at, EXCLUDED.expires_at)
	`
	if _, err := q.Exec(ctx, query, hashToken(token), expiresAt.UTC()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *revokedTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_hash = $1 AND expires_at > NOW())`

	var revoked bool
	if err := q.QueryRow(ctx, query, hashToken(token)).Scan(&revoked); err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return revoked, nil
}

func (r *revokedTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge revoked tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
