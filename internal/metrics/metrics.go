// Package metrics holds Prometheus instruments that are used across the
// console.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "backoffice_active_sessions",
			Help: "Number of per-kind sessions currently held in memory.",
		})

	SessionEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_session_evict_total",
			Help: "Cumulative number of sessions evicted from the cache.",
		})

	CollectionLoadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_collection_load_total",
			Help: "Cumulative number of full collection reloads, by kind.",
		}, []string{"kind"})

	CollectionLoadErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_collection_load_errors_total",
			Help: "Cumulative number of failed collection reloads, by kind.",
		}, []string{"kind"})

	MutationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_mutation_total",
			Help: "Cumulative number of successful mutations, by kind and operation.",
		}, []string{"kind", "op"})

	MutationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_mutation_errors_total",
			Help: "Cumulative number of failed mutations, by kind and operation.",
		}, []string{"kind", "op"})
)

func init() {
	prometheus.MustRegister(
		ActiveSessions,
		SessionEvictTotal,
		CollectionLoadTotal,
		CollectionLoadErrorsTotal,
		MutationTotal,
		MutationErrorsTotal,
	)
}
