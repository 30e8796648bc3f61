package chatstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/farm-shop/internal/chat"
)

const keyPrefix = "chat:session:"

// RedisStore keeps sessions in Redis as JSON with a sliding TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore returns a store on client. Every write refreshes the TTL of
// the session.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

func stateKey(id string) string { return keyPrefix + id + ":state" }
func userKey(id string) string  { return keyPrefix + id + ":user" }

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*chat.State, error) {
	data, err := s.client.Get(ctx, stateKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load chat state: %w", err)
	}
	var state chat.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode chat state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, state chat.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode chat state: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, stateKey(sessionID), data, s.ttl)
		if s.ttl > 0 {
			pipe.Expire(ctx, userKey(sessionID), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save chat state: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, stateKey(sessionID), userKey(sessionID)).Err()
}

func (s *RedisStore) LoadUser(ctx context.Context, sessionID string) (*chat.SessionUser, error) {
	data, err := s.client.Get(ctx, userKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	var user chat.SessionUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &user, nil
}

func (s *RedisStore) SaveUser(ctx context.Context, sessionID string, user chat.SessionUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	return s.client.Set(ctx, userKey(sessionID), data, s.ttl).Err()
}

func (s *RedisStore) ClearUser(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, userKey(sessionID)).Err()
}
