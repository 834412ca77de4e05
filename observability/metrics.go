package observability

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	reserve  prometheus.Gauge
	supply   prometheus.Gauge
}

var (
	saleMetricsOnce sync.Once
	saleRegistry    *Metrics
)

// SaleMetrics returns the lazily-initialised metrics registry used to record
// sale RPC activity and ledger totals.
func SaleMetrics() *Metrics {
	saleMetricsOnce.Do(func() {
		saleRegistry = &Metrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "abc",
				Subsystem: "commons",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "abc",
				Subsystem: "commons",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			reserve: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "abc",
				Subsystem: "commons",
				Name:      "reserve_total",
				Help:      "Current reserve backing the curve, in raw reserve units.",
			}),
			supply: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "abc",
				Subsystem: "commons",
				Name:      "supply_total",
				Help:      "Current outstanding supply, in raw supply units.",
			}),
		}
		prometheus.MustRegister(
			saleRegistry.requests,
			saleRegistry.latency,
			saleRegistry.reserve,
			saleRegistry.supply,
		)
	})
	return saleRegistry
}

// RecordRequest counts one handled request and its latency.
func (m *Metrics) RecordRequest(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(seconds)
}

// SetTotals mirrors the ledger totals into gauges. Precision loss past the
// float53 mantissa is acceptable for observability.
func (m *Metrics) SetTotals(reserve, supply *big.Int) {
	if m == nil {
		return
	}
	if reserve != nil {
		v, _ := new(big.Float).SetInt(reserve).Float64()
		m.reserve.Set(v)
	}
	if supply != nil {
		v, _ := new(big.Float).SetInt(supply).Float64()
		m.supply.Set(v)
	}
}
