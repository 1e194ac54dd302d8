// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package redo

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "oraredo"
	subsystem = "stream"
)

var (
	currentSequenceGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "database_sequence",
		Help:      "The next redo log sequence the stream will read",
	}, []string{"database"})

	currentSCNGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "database_scn",
		Help:      "The system commit number the stream has fully processed through",
	}, []string{"database"})

	openTransactionsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "open_transactions",
		Help:      "The number of transactions currently open in the transaction table",
	}, []string{"database"})

	freeBuffersGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "arena_free_buffers",
		Help:      "The number of free chunk buffers remaining in the transaction arena",
	}, []string{"database"})

	cycleDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "cycle_duration_seconds",
		Help:      "The latency distribution of one Phase A + Phase B main-loop cycle",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2.0, 13),
	}, []string{"database"})

	logsProcessedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "logs_processed_total",
		Help:      "The total count of redo log files fully processed, by source",
	}, []string{"database", "source"})
)

// InitMetrics registers every metric in this file with registry.
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(currentSequenceGauge)
	registry.MustRegister(currentSCNGauge)
	registry.MustRegister(openTransactionsGauge)
	registry.MustRegister(freeBuffersGauge)
	registry.MustRegister(cycleDurationHistogram)
	registry.MustRegister(logsProcessedCounter)
}
