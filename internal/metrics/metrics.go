// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// TickersScored counts scored tickers by risk label.
	TickersScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskanalyzer",
			Subsystem: "risk",
			Name:      "tickers_scored_total",
			Help:      "Tickers scored, by risk label",
		},
		[]string{"label"},
	)

	// TickersUnscored counts tickers that could not be scored.
	TickersUnscored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskanalyzer",
			Subsystem: "risk",
			Name:      "tickers_unscored_total",
			Help:      "Tickers reported as no data available",
		},
	)

	// ProviderLatency observes market data fetch latency by kind and outcome.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "riskanalyzer",
			Subsystem: "marketdata",
			Name:      "fetch_seconds",
			Help:      "Latency of market data fetches",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)

	// CacheLookups counts market data cache lookups by kind and result.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskanalyzer",
			Subsystem: "marketdata",
			Name:      "cache_lookups_total",
			Help:      "Market data cache lookups, by kind and hit/miss",
		},
		[]string{"kind", "result"},
	)

	// HTTPDuration observes request latency by route pattern, method and status.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "riskanalyzer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// Register registers every collector with the default registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(TickersScored, TickersUnscored, ProviderLatency, CacheLookups, HTTPDuration)
	})
}
