package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRegistrationStore_PutGetDelete(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRegistrationStore(client, 10*time.Minute)
	ctx := context.Background()

	pending := PendingRegistration{
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		Phone:     "+123456789",
		Code:      "123456",
		CreatedAt: time.Now(),
	}

	token, err := store.Put(ctx, pending)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, pending.Email, got.Email)
	assert.Equal(t, pending.Code, got.Code)

	// Get does not consume.
	_, err = store.Get(ctx, token)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationStore_TokensAreUnique(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRegistrationStore(client, 10*time.Minute)
	ctx := context.Background()

	a, err := store.Put(ctx, PendingRegistration{Email: "a@example.com"})
	require.NoError(t, err)
	b, err := store.Put(ctx, PendingRegistration{Email: "b@example.com"})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRegistrationStore_TTLExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRegistrationStore(client, 10*time.Minute)
	ctx := context.Background()

	token, err := store.Put(ctx, PendingRegistration{Email: "ada@example.com"})
	require.NoError(t, err)

	mr.FastForward(10*time.Minute + time.Second)

	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationStore_UnknownToken(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRegistrationStore(client, 10*time.Minute)

	_, err := store.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}
