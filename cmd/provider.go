package cmd

import (
	"time"

	"lendcore/core"
	"lendcore/service/adapter"
	bankservice "lendcore/service/bank"
	"lendcore/service/external"
	obligationservice "lendcore/service/obligation"
	"lendcore/service/oracle"
	"lendcore/service/risk"
	"lendcore/store/bank"
	"lendcore/store/batch"
	"lendcore/store/event"
	"lendcore/store/health"
	"lendcore/store/obligation"
	"lendcore/store/price"
	"lendcore/store/settings"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/go-redis/redis"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

// provideRedis nil when no redis is configured
func provideRedis() *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
}

func provideConfig() *core.Config {
	return &cfg
}

// ---------------store-----------------------------------------

type stores struct {
	properties  property.Store
	banks       core.IBankStore
	obligations core.IObligationStore
	prices      core.IPriceStore
	events      core.IEventStore
	settings    core.IStakedSettingsStore
	batches     core.IBatchStore
}

func provideStores(database *db.DB) *stores {
	s := &stores{
		properties:  propertystore.New(database),
		banks:       bank.New(database),
		obligations: obligation.New(database),
		prices:      price.New(database),
		events:      event.New(database),
	}

	s.settings = settings.New(s.properties)
	s.batches = batch.New(database, s.banks, s.obligations)
	return s
}

// ------------------service------------------------------------

type services struct {
	oracle      core.IPriceOracle
	risk        core.IRiskEngine
	banks       core.IBankService
	obligations core.IObligationService
	adapter     core.IExternalAdapter
}

func provideServices(s *stores) *services {
	c := provideConfig()

	o := oracle.Cache(oracle.New(s.prices), time.Duration(c.Oracle.CacheTTL)*time.Second)
	engine := risk.New(o, c)
	if client := provideRedis(); client != nil {
		engine = risk.WithCache(engine, health.New(client), time.Duration(c.Redis.HealthTTL)*time.Second)
	}

	srv := &services{
		oracle:      o,
		risk:        engine,
		banks:       bankservice.New(s.banks, s.settings, s.batches, c),
		obligations: obligationservice.New(s.banks, s.obligations, s.batches, engine, c),
	}

	if c.External.Endpoint != "" {
		srv.adapter = adapter.New(s.banks, s.obligations, s.batches, external.New(c.External.Endpoint), engine, c)
	}

	return srv
}
