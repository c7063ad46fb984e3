package gateway

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/church-console/backend/pkg/rowmap"
)

// Metrics holds the gateway collectors. One instance is shared by every collection.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Gateway calls by collection, verb and outcome.",
		}, []string{"collection", "op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "console",
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Gateway call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection", "op"}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.duration)
	}
	return m
}

// Instrumented decorates a Gateway with call counters and latency histograms.
type Instrumented[T any] struct {
	next       Gateway[T]
	collection string
	metrics    *Metrics
}

// Instrument wraps next. A nil metrics returns next unchanged.
func Instrument[T any](next Gateway[T], collection string, metrics *Metrics) Gateway[T] {
	if metrics == nil {
		return next
	}
	return &Instrumented[T]{next: next, collection: collection, metrics: metrics}
}

func (g *Instrumented[T]) GetAll(ctx context.Context) ([]T, error) {
	defer g.observe(OpGetAll, time.Now())
	list, err := g.next.GetAll(ctx)
	g.count(OpGetAll, err)
	return list, err
}

func (g *Instrumented[T]) Create(ctx context.Context, fields T) (T, error) {
	defer g.observe(OpCreate, time.Now())
	v, err := g.next.Create(ctx, fields)
	g.count(OpCreate, err)
	return v, err
}

func (g *Instrumented[T]) Update(ctx context.Context, id string, patch rowmap.Patch[T]) (T, error) {
	defer g.observe(OpUpdate, time.Now())
	v, err := g.next.Update(ctx, id, patch)
	g.count(OpUpdate, err)
	return v, err
}

func (g *Instrumented[T]) Delete(ctx context.Context, id string) error {
	defer g.observe(OpDelete, time.Now())
	err := g.next.Delete(ctx, id)
	g.count(OpDelete, err)
	return err
}

func (g *Instrumented[T]) observe(op Op, start time.Time) {
	g.metrics.duration.WithLabelValues(g.collection, string(op)).Observe(time.Since(start).Seconds())
}

func (g *Instrumented[T]) count(op Op, err error) {
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	g.metrics.calls.WithLabelValues(g.collection, string(op), outcome).Inc()
}
