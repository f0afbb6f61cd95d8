package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/curlyarrow/curlyarrow/pkg/snapshot"
)

// defaultRedisPrefix namespaces snapshot keys so the store can share a
// Redis instance with other applications.
const defaultRedisPrefix = "curlyarrow:snapshot:"

// RedisConfig configures a Redis-backed snapshot store.
type RedisConfig struct {
	// Addr is the Redis server address, e.g. "localhost:6379".
	Addr string

	// Password is the Redis password. Empty means no auth.
	Password string

	// DB is the Redis database number.
	DB int

	// Prefix is prepended to every key. Empty means the default
	// "curlyarrow:snapshot:" prefix.
	Prefix string
}

// RedisStore stores snapshots in Redis, one JSON value per snapshot.
// Use it when multiple server instances need to share saved snapshots.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

// Save stores a snapshot, replacing any snapshot with the same ID.
// Snapshots do not expire.
func (s *RedisStore) Save(ctx context.Context, sn snapshot.Snapshot) error {
	if sn.ID == "" {
		return ErrMissingID
	}
	data, err := snapshot.Marshal(sn)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sn.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by ID.
func (s *RedisStore) Load(ctx context.Context, id string) (snapshot.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("redis get: %w", err)
	}
	sn, err := snapshot.Unmarshal(data)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return sn, nil
}

// List scans the key prefix and returns every stored snapshot ordered by
// creation time, then ID. Values that do not parse as snapshots are
// skipped.
func (s *RedisStore) List(ctx context.Context) ([]snapshot.Snapshot, error) {
	var sns []snapshot.Snapshot
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			// Deleted between scan and get.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}
		sn, err := snapshot.Unmarshal(data)
		if err != nil {
			continue
		}
		sns = append(sns, sn)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sortSnapshots(sns)
	return sns, nil
}

// Delete removes a snapshot.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
