package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned when a session id is unknown or revoked
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Store tracks live sessions in Redis. A bearer token only resolves to a
// user while its session key exists; logout deletes the key, revoking the
// token server-side before its JWT expiry.
type Store struct {
	rdb *redis.Client
}

// NewStore creates a session store backed by the given Redis client
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Put records a live session for the user with the given TTL
func (s *Store) Put(ctx context.Context, sessionID string, userID int, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, keyPrefix+sessionID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Resolve returns the user id of a live session, or ErrNotFound
func (s *Store) Resolve(ctx context.Context, sessionID string) (int, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve session: %w", err)
	}

	uid, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return uid, nil
}

// Revoke deletes a session. Deleting an unknown session is not an error.
func (s *Store) Revoke(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
