package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with a TTL, so state survives process
// restarts and multiple bot instances see the same cursor.
type RedisStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisStore(client *redisv9.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (State, bool, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err == redisv9.Nil {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("redis get session failed: %w", err)
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, false, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return st, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, st State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

func (s *RedisStore) redisKey(key string) string {
	return "search:session:" + key
}
