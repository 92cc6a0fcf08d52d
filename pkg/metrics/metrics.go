package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LendingMetrics counters and gauges of the lending core
type LendingMetrics struct {
	riskDecisions    *prometheus.CounterVec
	mutations        *prometheus.CounterVec
	accruals         *prometheus.CounterVec
	appreciationRate *prometheus.GaugeVec
	utilization      *prometheus.GaugeVec
	oracleErrors     *prometheus.CounterVec
}

var (
	lendingOnce     sync.Once
	lendingRegistry *LendingMetrics
)

// Lending process wide metrics, registered on first use
func Lending() *LendingMetrics {
	lendingOnce.Do(func() {
		lendingRegistry = &LendingMetrics{
			riskDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lendcore_risk_decisions_total",
				Help: "Risk engine decisions by mutation kind and result.",
			}, []string{"kind", "result"}),
			mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lendcore_mutations_total",
				Help: "Obligation mutations by kind and result code.",
			}, []string{"kind", "result"}),
			accruals: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lendcore_accruals_total",
				Help: "Interest accruals committed per bank.",
			}, []string{"bank"}),
			appreciationRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "lendcore_appreciation_rate",
				Help: "Cached appreciation rate of staked banks.",
			}, []string{"bank"}),
			utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "lendcore_bank_utilization",
				Help: "Utilization rate of each bank after its last accrual.",
			}, []string{"bank"}),
			oracleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "lendcore_oracle_unusable_total",
				Help: "Unusable oracle readings by oracle id.",
			}, []string{"oracle"}),
		}
		prometheus.MustRegister(
			lendingRegistry.riskDecisions,
			lendingRegistry.mutations,
			lendingRegistry.accruals,
			lendingRegistry.appreciationRate,
			lendingRegistry.utilization,
			lendingRegistry.oracleErrors,
		)
	})
	return lendingRegistry
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}

	return v
}

// ObserveRiskDecision result is accept, reject or unusable
func (m *LendingMetrics) ObserveRiskDecision(kind, result string) {
	if m == nil {
		return
	}
	m.riskDecisions.WithLabelValues(orUnknown(kind), orUnknown(result)).Inc()
}

// ObserveMutation result is ok or the error name
func (m *LendingMetrics) ObserveMutation(kind, result string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(orUnknown(kind), orUnknown(result)).Inc()
}

func (m *LendingMetrics) ObserveAccrual(bank string) {
	if m == nil {
		return
	}
	m.accruals.WithLabelValues(orUnknown(bank)).Inc()
}

func (m *LendingMetrics) SetAppreciationRate(bank string, rate float64) {
	if m == nil {
		return
	}
	m.appreciationRate.WithLabelValues(orUnknown(bank)).Set(rate)
}

func (m *LendingMetrics) SetUtilization(bank string, ur float64) {
	if m == nil {
		return
	}
	m.utilization.WithLabelValues(orUnknown(bank)).Set(ur)
}

func (m *LendingMetrics) ObserveOracleUnusable(oracle string) {
	if m == nil {
		return
	}
	m.oracleErrors.WithLabelValues(orUnknown(oracle)).Inc()
}

// Handler exposes the default registry, the lending metrics included
func Handler() http.Handler {
	Lending()
	return promhttp.Handler()
}
