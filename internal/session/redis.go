package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/gridironhq/league-analyst/internal/model"
)

const keyPrefix = "session:"

// RedisStore persists sessions as Redis lists, one per session ID. Redis
// keys are independent, so per-session isolation comes for free.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A non-zero ttl expires idle
// sessions; zero keeps them forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns the session's turns, oldest first.
func (s *RedisStore) Get(ctx context.Context, id string) ([]model.Turn, error) {
	raw, err := s.client.LRange(ctx, keyPrefix+id, 0, -1).Result()
	if err != nil {
		return nil, eris.Wrap(err, "session: redis lrange")
	}
	turns := make([]model.Turn, 0, len(raw))
	for _, item := range raw {
		var turn model.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, eris.Wrap(err, "session: decode turn")
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Append pushes one turn onto the session list and refreshes its TTL.
func (s *RedisStore) Append(ctx context.Context, id string, turn model.Turn) error {
	raw, err := json.Marshal(turn)
	if err != nil {
		return eris.Wrap(err, "session: encode turn")
	}
	key := keyPrefix + id
	if err := s.client.RPush(ctx, key, raw).Err(); err != nil {
		return eris.Wrap(err, "session: redis rpush")
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return eris.Wrap(err, "session: redis expire")
		}
	}
	return nil
}

// Reset deletes the session list. The ID is immediately reusable.
func (s *RedisStore) Reset(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return eris.Wrap(err, "session: redis del")
	}
	return nil
}
