package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

type redisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Store that keeps the session under key.
// A zero ttl stores the session without expiry.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.With().Str("component", "session-redis").Logger(),
	}
}

func (r *redisStore) Save(ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", r.key).Msg("failed to save session")
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *redisStore) Load(ctx context.Context) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("key", r.key).Msg("failed to load session")
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		r.logger.Warn().Err(err).Str("key", r.key).Msg("discarding unreadable session")
		return nil, nil
	}
	return &s, nil
}

func (r *redisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
