// Package prommetrics exports glass batch metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andreyvit/glass"
)

// Collector implements glass.MetricsCollector.
type Collector struct {
	batches  *prometheus.CounterVec
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ glass.MetricsCollector = (*Collector)(nil)

// New creates the collector and registers its metrics with reg.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Command batches submitted to the engine.",
		}, []string{"op", "type", "result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Engine commands submitted, across all batches.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Round-trip time of one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
	}
	for _, m := range []prometheus.Collector{c.batches, c.commands, c.duration} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObserveBatch(op, typ string, cmds int, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.batches.WithLabelValues(op, typ, result).Inc()
	c.commands.WithLabelValues(op).Add(float64(cmds))
	c.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
