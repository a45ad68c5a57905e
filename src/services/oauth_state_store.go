package services

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/fintrack/backend/src/security"
)

// OAuthStateStore issues single-use sign-in state values.
type OAuthStateStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewOAuthStateStore(ttl time.Duration) *OAuthStateStore {
	return &OAuthStateStore{
		cache: cache.New(ttl, ttl),
		ttl:   ttl,
	}
}

func (s *OAuthStateStore) Issue() (string, error) {
	state, err := security.RandomToken()
	if err != nil {
		return "", err
	}
	s.cache.Set(state, 1, s.ttl)
	return state, nil
}

// Consume reports whether state was issued and not yet used, and burns it.
func (s *OAuthStateStore) Consume(state string) bool {
	if state == "" {
		return false
	}
	// Decrement is atomic, so only one caller can observe the 1 -> 0 step.
	remaining, err := s.cache.DecrementInt(state, 1)
	if err != nil {
		return false
	}
	s.cache.Delete(state)
	return remaining == 0
}
