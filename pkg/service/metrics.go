package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultFound    = "found"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"

	sourceGenerated = "generated"
	sourceCache     = "cache"
)

type Metrics struct {
	routeQueries      *prometheus.CounterVec
	routesReturned    prometheus.Counter
	routeDuration     prometheus.Histogram
	environmentLoaded *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		routeQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityrouter_route_queries_total",
			Help: "Number of route queries by result.",
		}, []string{"result"}),
		routesReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cityrouter_routes_returned_total",
			Help: "Number of routes returned across all queries.",
		}),
		routeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cityrouter_route_query_duration_seconds",
			Help:    "Duration of route queries.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		environmentLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cityrouter_environment_generations_total",
			Help: "Number of condition fields loaded, by source.",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.routeQueries, m.routesReturned, m.routeDuration, m.environmentLoaded)
	}
	return m
}
