package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret")

	token, expiresAt, err := svc.GenerateAccessToken(auth.Claims{
		EmployeeID: "emp-1",
		Name:       "Alice",
		Email:      "alice@example.com",
		Role:       "user",
	}, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	got, err := ClaimsFromMap(claims)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", got.EmployeeID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "user", got.Role)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("secret")

	token, expiresIn, err := svc.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	id, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", id)
}

func TestSSETokenRejectsAccessToken(t *testing.T) {
	svc := NewJWTService("secret")

	token, _, err := svc.GenerateAccessToken(auth.Claims{EmployeeID: "emp-1"}, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestSSETokenRejectsOtherSecret(t *testing.T) {
	token, _, err := NewJWTService("one").GenerateSSEToken("emp-1")
	require.NoError(t, err)

	_, err = NewJWTService("two").ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestClaimsFromMap(t *testing.T) {
	_, err := ClaimsFromMap(map[string]interface{}{"type": "sse", "employee_id": "x"})
	assert.Error(t, err)

	_, err = ClaimsFromMap(map[string]interface{}{"role": "user"})
	assert.Error(t, err)
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	store := NewMemoryRevocationStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "token-a", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "token-b", now.Add(-time.Minute)))

	revoked, err := store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entries no longer count")

	revoked, err = store.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, 1, store.Len())

	purged, err = store.PurgeExpired(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryRevocationStoreKeepsLatestExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryRevocationStore()

	require.NoError(t, store.Revoke(ctx, "t", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "t", now.Add(time.Minute)))

	purged, err := store.PurgeExpired(ctx, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)
}
