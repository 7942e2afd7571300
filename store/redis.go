package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldValue        = "value"
	fieldCreated      = "created"
	fieldLastModified = "last_modified"
)

// RedisStore keeps each record in a hash named "<namespace>:<key>".
type RedisStore struct {
	client    *redis.Client
	namespace string
	now       clock
}

var _ Connector = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, now: utcNow}
}

// NewRedisClient parses url and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) recordKey(key string) string {
	return s.namespace + ":" + key
}

func (s *RedisStore) Fetch(ctx context.Context, key string) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, s.recordKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.recordKey(key), err)
	}
	value, ok := fields[fieldValue]
	if !ok {
		return nil, nil
	}

	rec := &Record{Key: key, Value: value}
	if rec.Created, err = time.Parse(time.RFC3339Nano, fields[fieldCreated]); err != nil {
		return nil, fmt.Errorf("parsing created of %s: %w", s.recordKey(key), err)
	}
	if rec.LastModified, err = time.Parse(time.RFC3339Nano, fields[fieldLastModified]); err != nil {
		return nil, fmt.Errorf("parsing last_modified of %s: %w", s.recordKey(key), err)
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, key, value string) error {
	now := s.now().Format(time.RFC3339Nano)
	id := s.recordKey(key)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, id, fieldCreated, now)
		pipe.HSet(ctx, id, fieldValue, value, fieldLastModified, now)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", id, err)
	}
	return nil
}
