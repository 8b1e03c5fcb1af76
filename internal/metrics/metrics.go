// Package metrics exposes splitpool's Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitpool/internal/models"
)

// Registry holds all Prometheus metrics for splitpool.
type Registry struct {
	registry *prometheus.Registry

	// RPC metrics
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	// Ledger metrics
	ExpensesCreated *prometheus.CounterVec
	SplitRejections *prometheus.CounterVec
	PoolsSettled    prometheus.Counter
}

// NewRegistry creates a registry with the splitpool metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		RPCRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitpool_rpc_requests_total",
				Help: "Total number of RPC requests by procedure and result code",
			},
			[]string{"procedure", "code"},
		),

		RPCDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splitpool_rpc_duration_seconds",
				Help:    "RPC handling duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"procedure"},
		),

		ExpensesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitpool_expenses_created_total",
				Help: "Total number of expenses created by split method",
			},
			[]string{"method"},
		),

		SplitRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitpool_split_rejections_total",
				Help: "Total number of splits rejected because the values did not add up",
			},
			[]string{"method"},
		),

		PoolsSettled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "splitpool_pools_settled_total",
				Help: "Total number of settle ups that settled at least one line item",
			},
		),
	}

	r.registry.MustRegister(
		r.RPCRequests,
		r.RPCDuration,
		r.ExpensesCreated,
		r.SplitRejections,
		r.PoolsSettled,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ExpenseCreated counts a stored expense.
func (r *Registry) ExpenseCreated(method models.SplitMethod) {
	r.ExpensesCreated.WithLabelValues(string(method)).Inc()
}

// SplitRejected counts a split whose values did not reconcile with the total.
func (r *Registry) SplitRejected(method models.SplitMethod) {
	r.SplitRejections.WithLabelValues(string(method)).Inc()
}

// PoolSettled counts a non-empty settle up.
func (r *Registry) PoolSettled() {
	r.PoolsSettled.Inc()
}

// Interceptor returns a Connect interceptor recording request counts and durations.
func (r *Registry) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			r.RPCDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			r.RPCRequests.WithLabelValues(procedure, codeOf(err)).Inc()
			return resp, err
		}
	}
}

func codeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String()
	}
	return connect.CodeUnknown.String()
}
