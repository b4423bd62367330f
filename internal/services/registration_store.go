package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const registrationKeyPrefix = "regpending:"

// ErrRegistrationNotFound means no pending registration exists for the
// token: it was never started, already consumed, or the TTL ran out.
var ErrRegistrationNotFound = errors.New("pending registration not found")

// PendingRegistration holds registration data between the request and the
// OTP verification. No user row exists until verification succeeds.
type PendingRegistration struct {
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// RegistrationStore keeps pending registrations in redis under random
// tokens with a TTL, so abandoned attempts vanish on their own.
type RegistrationStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRegistrationStore constructs a RegistrationStore. The TTL doubles as
// the OTP validity window for registration codes.
func NewRegistrationStore(client *redis.Client, ttl time.Duration) *RegistrationStore {
	return &RegistrationStore{redis: client, ttl: ttl}
}

// Put stores a pending registration and returns its opaque token.
func (s *RegistrationStore) Put(ctx context.Context, pending PendingRegistration) (string, error) {
	token, err := generateRegistrationToken()
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(pending)
	if err != nil {
		return "", err
	}

	if err := s.redis.Set(ctx, registrationKeyPrefix+token, encoded, s.ttl).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Get fetches the pending registration for a token without consuming it.
func (s *RegistrationStore) Get(ctx context.Context, token string) (*PendingRegistration, error) {
	data, err := s.redis.Get(ctx, registrationKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	var pending PendingRegistration
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, err
	}

	return &pending, nil
}

// Delete discards the pending registration once it has been consumed.
func (s *RegistrationStore) Delete(ctx context.Context, token string) error {
	return s.redis.Del(ctx, registrationKeyPrefix+token).Err()
}

// TTL returns the configured validity window.
func (s *RegistrationStore) TTL() time.Duration {
	return s.ttl
}

func generateRegistrationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
