package jwt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// MemoryRevocationStore keeps revoked tokens in process until their expiry.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	key := tokenKey(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.revoked[key]; ok && current.After(expiresAt) {
		return nil
	}
	s.revoked[key] = expiresAt
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.revoked[tokenKey(token)]
	if !ok {
		return false, nil
	}
	// An expired entry no longer matters: the token itself is rejected on exp.
	return expiresAt.After(s.now()), nil
}

func (s *MemoryRevocationStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for key, expiresAt := range s.revoked {
		if !expiresAt.After(now) {
			delete(s.revoked, key)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of tracked tokens.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revoked)
}
