// Package metrics registers the bot's prometheus collectors.
//
// Collectors live on the default registry; no /metrics endpoint is
// mounted by this binary, so exposure is left to the embedding process.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	ledgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of ledger operations labeled by operation and status",
		},
		[]string{"operation", "status"},
	)
	validationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_validation_failures_total",
			Help: "Total number of rejected ledger operations labeled by operation and reason",
		},
		[]string{"operation", "reason"},
	)
	reconcileMismatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_reconcile_mismatches_total",
			Help: "Total number of wallets whose balance disagreed with their transaction log",
		},
	)
)

// Ledger operation statuses.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordLedgerOp counts one ledger operation outcome.
func RecordLedgerOp(operation, status string) {
	ledgerOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordValidationFailure counts one rejected operation by reason.
func RecordValidationFailure(operation, reason string) {
	validationFailuresTotal.WithLabelValues(operation, reason).Inc()
}

// RecordReconcileMismatch counts one balance/log disagreement.
func RecordReconcileMismatch() {
	reconcileMismatchesTotal.Inc()
}
