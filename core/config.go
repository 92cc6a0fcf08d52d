package core

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config lendcore config
type Config struct {
	App      App       `json:"app"`
	DB       db.Config `json:"db"`
	Risk     Risk      `json:"risk"`
	Oracle   Oracle    `json:"oracle"`
	Keeper   Keeper    `json:"keeper"`
	Redis    Redis     `json:"redis"`
	External External  `json:"external"`
	Log      Log       `json:"log"`
}

// App app config
type App struct {
	Location string `json:"location"`
	// slots per obligation
	MaxBalances int `json:"max_balances"`
}

// Risk valuation parameters
type Risk struct {
	// a reading whose confidence exceeds this fraction of its price is unusable
	MaxConfidenceRatio float64 `json:"max_confidence_ratio"`
	// approximate equality band for appreciation rates
	AppreciationTolerance float64 `json:"appreciation_tolerance"`
	// approximate equality band for external valuations, in asset units
	ValuationTolerance float64 `json:"valuation_tolerance"`
	// seconds, used when a bank has no oracle max age
	DefaultOracleMaxAge int64 `json:"default_oracle_max_age"`
}

// Oracle price oracle config
type Oracle struct {
	// seconds a reading stays cached, zero disables the cache
	CacheTTL int64 `json:"cache_ttl"`
	// upstream price feed, empty disables the price sync worker
	Endpoint string `json:"endpoint"`
	Schedule string `json:"schedule"`
}

// Keeper permissionless keeper config
type Keeper struct {
	Schedule string `json:"schedule"`
	// banks accrued in parallel
	Concurrency int `json:"concurrency"`
}

// External http gateway of the external lending market, empty disables wrapped banks
type External struct {
	Endpoint string `json:"endpoint"`
}

// Redis health report cache, disabled when addr is empty
type Redis struct {
	Addr string `json:"addr"`
	DB   int    `json:"db"`
	// seconds a health report stays cached
	HealthTTL int64 `json:"health_ttl"`
}

// Log log output config
type Log struct {
	File       string `json:"file"`
	MaxSize    int    `json:"max_size"`
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"`
}

// Decimals tolerances as decimals
func (r Risk) Decimals() (maxConfidenceRatio, appreciationTolerance, valuationTolerance decimal.Decimal) {
	return decimal.NewFromFloat(r.MaxConfidenceRatio),
		decimal.NewFromFloat(r.AppreciationTolerance),
		decimal.NewFromFloat(r.ValuationTolerance)
}
