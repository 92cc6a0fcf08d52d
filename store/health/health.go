package health

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lendcore/core"

	"github.com/go-redis/redis"
)

type healthCache struct {
	Redis *redis.Client
}

// New health cache in redis
func New(redis *redis.Client) core.IHealthCache {
	return &healthCache{
		Redis: redis,
	}
}

func (s *healthCache) Save(ctx context.Context, health *core.Health, ttl time.Duration) error {
	data, err := json.Marshal(health)
	if err != nil {
		return err
	}

	return s.Redis.Set(s.healthKey(health.ObligationID, health.Version, health.Requirement), data, ttl).Err()
}

func (s *healthCache) Find(ctx context.Context, obligationID string, version int64, req core.RequirementType) (*core.Health, error) {
	data, err := s.Redis.Get(s.healthKey(obligationID, version, req)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}

		return nil, err
	}

	var health core.Health
	if err := json.Unmarshal(data, &health); err != nil {
		return nil, err
	}

	return &health, nil
}

func (s *healthCache) healthKey(obligationID string, version int64, req core.RequirementType) string {
	return fmt.Sprintf("lendcore:health:%s:%d:%s", obligationID, version, req)
}
