package risk

import (
	"context"
	"time"

	"lendcore/core"

	"github.com/fox-one/pkg/logger"
)

// WithCache serves health reports from cache for ttl, risk decisions are never cached
func WithCache(engine core.IRiskEngine, cache core.IHealthCache, ttl time.Duration) core.IRiskEngine {
	if cache == nil || ttl <= 0 {
		return engine
	}

	return &cacheEngine{
		IRiskEngine: engine,
		cache:       cache,
		ttl:         ttl,
	}
}

type cacheEngine struct {
	core.IRiskEngine
	cache core.IHealthCache
	ttl   time.Duration
}

func (e *cacheEngine) Health(ctx context.Context, obligation *core.Obligation, banks map[string]*core.Bank, req core.RequirementType, now time.Time) (*core.Health, error) {
	log := logger.FromContext(ctx)

	if health, err := e.cache.Find(ctx, obligation.ObligationID, obligation.Version, req); err != nil {
		log.WithError(err).Warnln("health cache: find")
	} else if health != nil {
		return health, nil
	}

	health, err := e.IRiskEngine.Health(ctx, obligation, banks, req, now)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Save(ctx, health, e.ttl); err != nil {
		log.WithError(err).Warnln("health cache: save")
	}

	return health, nil
}
