package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound means the refresh session was revoked or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore tracks live refresh-token sessions in redis. A refresh token
// is only honored while its session record exists; logout deletes the
// record, and the TTL mirrors the refresh token's own expiry.
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{redis: client, ttl: ttl}
}

// Save records a new session keyed by the refresh token's JWT ID.
func (s *SessionStore) Save(ctx context.Context, sessionID string, userID uuid.UUID) error {
	return s.redis.Set(ctx, sessionKeyPrefix+sessionID, userID.String(), s.ttl).Err()
}

// Validate checks the session exists and belongs to the user.
func (s *SessionStore) Validate(ctx context.Context, sessionID string, userID uuid.UUID) error {
	stored, err := s.redis.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return err
	}

	if stored != userID.String() {
		return ErrSessionNotFound
	}

	return nil
}

// Delete revokes a session. Deleting an absent session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
