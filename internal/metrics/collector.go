// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector exposes the engine's orchestration metrics. A nil *Collector is
// valid and records nothing, so metrics stay optional.
type Collector struct {
	orchestrationsTotal   *prometheus.CounterVec
	orchestrationDuration *prometheus.HistogramVec
	delegationsTotal      *prometheus.CounterVec
	delegationConfidence  prometheus.Histogram
	consensusRounds       prometheus.Histogram
	registeredAgents      prometheus.Gauge
	workloadUtilization   prometheus.Gauge

	logger *zap.Logger
}

// NewCollector creates a collector registered on the default prometheus
// registerer under the given namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.orchestrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orchestrations_total",
			Help:      "Total number of task orchestrations by pattern and terminal state",
		},
		[]string{"pattern", "state"},
	)

	c.orchestrationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "orchestration_duration_seconds",
			Help:      "Collaboration session duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"pattern"},
	)

	c.delegationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegations_total",
			Help:      "Total number of delegation decisions by strategy",
		},
		[]string{"strategy"},
	)

	c.delegationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delegation_confidence",
			Help:      "Confidence of delegation decisions",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	c.consensusRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consensus_rounds",
			Help:      "Rounds needed by consensus collaborations",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)

	c.registeredAgents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_agents",
			Help:      "Number of registered specialization profiles",
		},
	)

	c.workloadUtilization = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workload_utilization",
			Help:      "Aggregate workload utilization across all agents",
		},
	)

	return c
}

// RecordOrchestration records one finished collaboration session.
func (c *Collector) RecordOrchestration(pattern, state string, duration time.Duration) {
	if c == nil {
		return
	}
	c.orchestrationsTotal.WithLabelValues(pattern, state).Inc()
	c.orchestrationDuration.WithLabelValues(pattern).Observe(duration.Seconds())
}

// RecordDelegation records one delegation decision.
func (c *Collector) RecordDelegation(strategy string, confidence float64) {
	if c == nil {
		return
	}
	c.delegationsTotal.WithLabelValues(strategy).Inc()
	c.delegationConfidence.Observe(confidence)
}

// RecordConsensusRounds records how many rounds a consensus session took.
func (c *Collector) RecordConsensusRounds(rounds int) {
	if c == nil {
		return
	}
	c.consensusRounds.Observe(float64(rounds))
}

// SetRegisteredAgents updates the registered-agent gauge.
func (c *Collector) SetRegisteredAgents(n int) {
	if c == nil {
		return
	}
	c.registeredAgents.Set(float64(n))
}

// SetWorkloadUtilization updates the aggregate utilization gauge.
func (c *Collector) SetWorkloadUtilization(v float64) {
	if c == nil {
		return
	}
	c.workloadUtilization.Set(v)
}
