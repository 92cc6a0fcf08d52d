package oracle

import (
	"context"
	"time"

	"lendcore/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache readings for ttl, concurrent misses of one oracle share a single read
func Cache(oracle core.IPriceOracle, ttl time.Duration) core.IPriceOracle {
	if ttl <= 0 {
		return oracle
	}

	return &cacheOracle{
		IPriceOracle: oracle,
		cache:        gcache.New(1024).LRU().Expiration(ttl).Build(),
		sf:           &singleflight.Group{},
	}
}

type cacheOracle struct {
	core.IPriceOracle
	cache gcache.Cache
	sf    *singleflight.Group
}

func (o *cacheOracle) Read(ctx context.Context, oracleID string) (*core.OracleReading, error) {
	if v, err := o.cache.Get(oracleID); err == nil {
		if r, ok := v.(*core.OracleReading); ok {
			return r, nil
		}
	}

	v, err, _ := o.sf.Do(oracleID, func() (interface{}, error) {
		r, err := o.IPriceOracle.Read(ctx, oracleID)
		if err != nil {
			return nil, err
		}

		_ = o.cache.Set(oracleID, r)
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.OracleReading), nil
}
