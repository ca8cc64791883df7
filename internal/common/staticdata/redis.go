package staticdata

import (
	"context"

	"rynko-workers/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each node's data in one hash at NodeKey(nodeID).
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, nodeID, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, NodeKey(nodeID), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewStaticDataFailedError("get", err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, nodeID, key, value string) error {
	if err := s.client.HSet(ctx, NodeKey(nodeID), key, value).Err(); err != nil {
		return errors.NewStaticDataFailedError("set", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, nodeID, key string) error {
	if err := s.client.HDel(ctx, NodeKey(nodeID), key).Err(); err != nil {
		return errors.NewStaticDataFailedError("delete", err)
	}
	return nil
}
