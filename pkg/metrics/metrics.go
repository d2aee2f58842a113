// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal tracks resolved batches by strategy and outcome
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "resolution",
			Name:      "batches_total",
			Help:      "Total number of resolved card batches by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// ResolutionDuration tracks the time spent resolving a batch
	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "resolution",
			Name:      "duration_seconds",
			Help:      "Duration of batch resolution in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	// InputRecords tracks the number of card records submitted
	InputRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "resolution",
			Name:      "input_records_total",
			Help:      "Total number of card records submitted for resolution",
		},
		[]string{"strategy"},
	)

	// OutputEntities tracks the number of consolidated entities produced
	OutputEntities = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "resolution",
			Name:      "output_entities_total",
			Help:      "Total number of consolidated entities produced",
		},
		[]string{"strategy"},
	)

	// MergesTotal tracks merges by the rule or signal that caused them
	MergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "resolution",
			Name:      "merges_total",
			Help:      "Total number of record merges by rule",
		},
		[]string{"strategy", "rule"},
	)

	// CacheLookups tracks resolution cache lookups
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of resolution cache lookups by result",
		},
		[]string{"result"},
	)

	// ExtractionsTotal tracks per-image extractions
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "extraction",
			Name:      "images_total",
			Help:      "Total number of card images extracted by status",
		},
		[]string{"status"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaMessagesConsumed tracks Kafka messages consumed
	KafkaMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "messages_consumed_total",
			Help:      "Total number of messages consumed from Kafka",
		},
		[]string{"topic", "status"},
	)
)

// RecordResolution records a resolved batch
func RecordResolution(strategy, outcome string, inputs, entities int, durationSeconds float64) {
	ResolutionsTotal.WithLabelValues(strategy, outcome).Inc()
	ResolutionDuration.WithLabelValues(strategy).Observe(durationSeconds)
	InputRecords.WithLabelValues(strategy).Add(float64(inputs))
	OutputEntities.WithLabelValues(strategy).Add(float64(entities))
}

// RecordMerge records a single merge decision
func RecordMerge(strategy, rule string) {
	MergesTotal.WithLabelValues(strategy, rule).Inc()
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordExtraction records a per-image extraction result
func RecordExtraction(status string) {
	ExtractionsTotal.WithLabelValues(status).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}

// RecordKafkaConsume records a consumed Kafka message
func RecordKafkaConsume(topic, status string) {
	KafkaMessagesConsumed.WithLabelValues(topic, status).Inc()
}
