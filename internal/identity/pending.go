package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"curator-bot/pkg/redis"
)

// PendingVerification is the server-side half of one in-flight OAuth dance:
// which Telegram user started it and the PKCE verifier for the exchange.
type PendingVerification struct {
	UserID       int64  `json:"user_id"`
	CodeVerifier string `json:"code_verifier"`
}

// PendingStore keeps in-flight verifications in Redis, keyed by the OAuth
// state token, expiring after the configured TTL.
type PendingStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewPendingStore(client *redis.Client, ttl time.Duration) *PendingStore {
	return &PendingStore{
		redis: client,
		ttl:   ttl,
	}
}

func (s *PendingStore) Put(ctx context.Context, state string, pending PendingVerification) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending verification: %w", err)
	}
	if err := s.redis.Set(ctx, pendingKey(state), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save pending verification: %w", err)
	}
	return nil
}

func (s *PendingStore) Get(ctx context.Context, state string) (PendingVerification, error) {
	data, err := s.redis.Get(ctx, pendingKey(state))
	if err != nil {
		return PendingVerification{}, fmt.Errorf("failed to get pending verification: %w", err)
	}

	var pending PendingVerification
	if err := json.Unmarshal(data, &pending); err != nil {
		return PendingVerification{}, fmt.Errorf("failed to unmarshal pending verification: %w", err)
	}
	return pending, nil
}

func (s *PendingStore) Delete(ctx context.Context, state string) error {
	return s.redis.Del(ctx, pendingKey(state))
}

func pendingKey(state string) string {
	return fmt.Sprintf("oauth:state:%s", state)
}
