package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"curator-bot/internal/questionnaire"
	"curator-bot/pkg/redis"
)

// SessionStore keeps per-user questionnaire sessions in Redis as JSON,
// keyed by Telegram user ID. Sessions expire after the configured TTL.
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		redis: client,
		ttl:   ttl,
	}
}

// Get loads a user's session. An absent key yields a fresh session, not an
// error.
func (s *SessionStore) Get(ctx context.Context, userID int64) (questionnaire.Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(userID))
	if errors.Is(err, redis.ErrNotFound) {
		return questionnaire.NewSession(userID), nil
	}
	if err != nil {
		return questionnaire.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session questionnaire.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return questionnaire.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.Answers == nil {
		session.Answers = make(map[string]string)
	}
	return session, nil
}

// Put stores a user's session, refreshing its TTL.
func (s *SessionStore) Put(ctx context.Context, session questionnaire.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKey(session.UserID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear drops a user's session.
func (s *SessionStore) Clear(ctx context.Context, userID int64) error {
	if err := s.redis.Del(ctx, sessionKey(userID)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}
