// Package metrics holds the Prometheus collectors for RPC traffic and bill
// reconciliation outcomes.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors the server exports.
type Metrics struct {
	RPCTotal       *prometheus.CounterVec
	RPCDur         *prometheus.HistogramVec
	InFlight       prometheus.Gauge
	Reconciliation *prometheus.CounterVec
}

// New registers and returns the collectors. A nil reg uses the default registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RPCTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Total number of RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_ms",
			Help:      "RPC latency distribution in milliseconds.",
			Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"procedure"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rpc_in_flight",
			Help:      "Current number of in-flight RPCs.",
		}),
		Reconciliation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_reconciliation_total",
			Help:      "Count of bill total computations by reconciliation outcome.",
		}, []string{"result"}),
	}
	m.RPCTotal = register(reg, m.RPCTotal)
	m.RPCDur = register(reg, m.RPCDur)
	m.InFlight = register(reg, m.InFlight)
	m.Reconciliation = register(reg, m.Reconciliation)
	return m
}

// Interceptor returns a Connect interceptor recording count, latency and
// in-flight RPCs.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			m.InFlight.Inc()
			start := time.Now()

			resp, err := next(ctx, req)

			m.InFlight.Dec()
			m.RPCDur.WithLabelValues(procedure).Observe(DurationMillis(time.Since(start)))
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.RPCTotal.WithLabelValues(procedure, code).Inc()
			return resp, err
		}
	}
}

// ObserveReconciliation counts one computed bill as reconciled or not.
func (m *Metrics) ObserveReconciliation(reconciled bool) {
	if m == nil {
		return
	}
	result := "reconciled"
	if !reconciled {
		result = "unreconciled"
	}
	m.Reconciliation.WithLabelValues(result).Inc()
}

// Handler serves the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// register adds c to reg, returning the already registered collector when an
// identical one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
	return c
}
