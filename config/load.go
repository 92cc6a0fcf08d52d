package config

import (
	"lendcore/core"
)

const (
	defaultMaxBalances         = 16
	defaultOracleMaxAge        = 60
	defaultKeeperSchedule      = "@every 1m"
	defaultKeeperConcurrency   = 8
	defaultPriceSyncSchedule   = "@every 10s"
	defaultHealthCacheDuration = 5
)

func withDefaults(cfg *core.Config) {
	if cfg.App.Location == "" {
		cfg.App.Location = "UTC"
	}

	if cfg.App.MaxBalances <= 0 {
		cfg.App.MaxBalances = defaultMaxBalances
	}

	if cfg.Risk.MaxConfidenceRatio <= 0 {
		cfg.Risk.MaxConfidenceRatio = 0.05
	}

	if cfg.Risk.AppreciationTolerance <= 0 {
		cfg.Risk.AppreciationTolerance = 0.01
	}

	if cfg.Risk.ValuationTolerance <= 0 {
		cfg.Risk.ValuationTolerance = 0.0001
	}

	if cfg.Risk.DefaultOracleMaxAge <= 0 {
		cfg.Risk.DefaultOracleMaxAge = defaultOracleMaxAge
	}

	if cfg.Keeper.Schedule == "" {
		cfg.Keeper.Schedule = defaultKeeperSchedule
	}

	if cfg.Keeper.Concurrency <= 0 {
		cfg.Keeper.Concurrency = defaultKeeperConcurrency
	}

	if cfg.Oracle.Schedule == "" {
		cfg.Oracle.Schedule = defaultPriceSyncSchedule
	}

	if cfg.Redis.HealthTTL <= 0 {
		cfg.Redis.HealthTTL = defaultHealthCacheDuration
	}
}
