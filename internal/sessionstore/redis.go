package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

// RedisStore keeps each record as a JSON string with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

var _ placequiz.SessionStore = (*RedisStore)(nil)

func (s *RedisStore) Put(ctx context.Context, id string, rec placequiz.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (placequiz.Record, bool, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return placequiz.Record{}, false, nil
	}
	if err != nil {
		return placequiz.Record{}, false, fmt.Errorf("reading session %s: %w", id, err)
	}

	var rec placequiz.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return placequiz.Record{}, false, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return rec, true, nil
}
