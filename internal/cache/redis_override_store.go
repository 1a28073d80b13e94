package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "film-ticket-desk/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

type RedisOverrideStoreImpl struct {
	client *redis.Client
}

func NewRedisOverrideStore(client *redis.Client) OverrideStore {
	return &RedisOverrideStoreImpl{
		client: client,
	}
}

func (s *RedisOverrideStoreImpl) Get(ctx context.Context, filmID int) (int, error) {
	val, err := s.client.Get(ctx, OverrideKey(filmID)).Result()
	if errors.Is(err, redis.Nil) {
		return -1, apperrors.ErrOverrideNotFound
	}
	if err != nil {
		return -1, err
	}

	remaining, err := strconv.Atoi(val)
	if err != nil {
		return -1, fmt.Errorf("invalid override %q: %v", val, err)
	}
	return remaining, nil
}

// Set 不設 TTL，override 直到被刪除前都有效
func (s *RedisOverrideStoreImpl) Set(ctx context.Context, filmID int, remaining int) error {
	return s.client.Set(ctx, OverrideKey(filmID), strconv.Itoa(remaining), 0).Err()
}

func (s *RedisOverrideStoreImpl) Delete(ctx context.Context, filmID int) error {
	return s.client.Del(ctx, OverrideKey(filmID)).Err()
}
