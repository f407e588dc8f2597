package persistence

import (
	"context"
	"errors"
	"fmt"

	"flowboard/domain/core/aggregates"

	"github.com/redis/go-redis/v9"
)

// boardsSet indexes every key written, relative to the store prefix
const boardsSet = "boards"

// RedisStore keeps each board as a string value under prefix+key
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// DialRedis connects and pings the server
func DialRedis(ctx context.Context, addr, password string, db int, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client, prefix), nil
}

func (s *RedisStore) makeKey(key string) string {
	return s.prefix + "board:" + key
}

// Load implements ports.DocumentStore
func (s *RedisStore) Load(ctx context.Context, key string) (*aggregates.DocumentState, error) {
	data, err := s.client.Get(ctx, s.makeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return decode(data)
}

// Save implements ports.DocumentStore
func (s *RedisStore) Save(ctx context.Context, key string, state aggregates.DocumentState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.makeKey(key), data, 0)
		pipe.SAdd(ctx, s.prefix+boardsSet, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// Keys lists stored board keys
func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, s.prefix+boardsSet).Result()
}

// Close implements ports.ClosableStore
func (s *RedisStore) Close() error {
	return s.client.Close()
}
