package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Хранилище ключ-значение поверх Redis
type KVRedisStorage struct {
	client *redis.Client
}

func NewKVRedisStorage(url string) (*KVRedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return &KVRedisStorage{client: redis.NewClient(opts)}, nil
}

func (s *KVRedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}

	return value, true, nil
}

func (s *KVRedisStorage) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *KVRedisStorage) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *KVRedisStorage) Close() error {
	return s.client.Close()
}
