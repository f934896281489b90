// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payly"

var (
	rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_requests_total",
		Help:      "RPC calls by procedure and result code.",
	}, []string{"procedure", "code"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "RPC latency by procedure.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})

	balanceComputations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_computations_total",
		Help:      "Group balance computations served.",
	})

	balanceDebts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "balance_debts",
		Help:      "Simplified transfers produced per balance computation.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	splitMismatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "split_mismatch_total",
		Help:      "Expenses accepted although their split amounts do not add up.",
	}, []string{"split_method"})
)

// ObserveRPC records one finished RPC. code is "ok" for successful calls.
func ObserveRPC(procedure, code string, elapsed time.Duration) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
	rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// ObserveBalances records one balance computation and the number of transfers it produced.
func ObserveBalances(debts int) {
	balanceComputations.Inc()
	balanceDebts.Observe(float64(debts))
}

// SplitMismatch counts an expense whose fixed amounts or percentages do not add up.
func SplitMismatch(method string) {
	splitMismatches.WithLabelValues(method).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
