package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces fxboard keys in a shared redis
const DefaultRedisPrefix = "fxboard"

// RedisMedium implements Medium on a redis server. Every key is stored as a
// plain string value under "<prefix>:<key>".
type RedisMedium struct {
	client *redis.Client
	prefix string
}

// NewRedisMedium connects to redis and verifies the connection with PING
func NewRedisMedium(ctx context.Context, opts *redis.Options, prefix string) (*RedisMedium, error) {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &RedisMedium{client: client, prefix: prefix}, nil
}

func (m *RedisMedium) key(key string) string {
	return m.prefix + ":" + key
}

func (m *RedisMedium) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.client.Get(ctx, m.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, m.wrap(err)
	}
	return data, nil
}

func (m *RedisMedium) Set(ctx context.Context, key string, data []byte) error {
	return m.wrap(m.client.Set(ctx, m.key(key), data, 0).Err())
}

func (m *RedisMedium) Delete(ctx context.Context, key string) error {
	return m.wrap(m.client.Del(ctx, m.key(key)).Err())
}

func (m *RedisMedium) Close() error {
	return m.client.Close()
}

func (m *RedisMedium) wrap(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return err
}
