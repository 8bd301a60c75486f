package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func refreshKey(tokenHash string) string { return "refresh:" + tokenHash }

func currentListKey(userID uuid.UUID) string { return "current_list:" + userID.String() }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) SaveRefreshToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, refreshKey(tokenHash), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *RedisStore) ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, bool, error) {
	val, err := s.rdb.GetDel(ctx, refreshKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("consume refresh token: %w", err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return userID, true, nil
}

func (s *RedisStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return s.rdb.Del(ctx, refreshKey(tokenHash)).Err()
}

func (s *RedisStore) SetCurrentList(ctx context.Context, userID, listID uuid.UUID) error {
	return s.rdb.Set(ctx, currentListKey(userID), listID.String(), 0).Err()
}

func (s *RedisStore) CurrentList(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	val, err := s.rdb.Get(ctx, currentListKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("read current list: %w", err)
	}
	listID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return listID, true, nil
}

func (s *RedisStore) ClearCurrentList(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, currentListKey(userID)).Err()
}
