package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelFunction = "function"
	LabelOutcome  = "outcome"
	LabelQuery    = "query"
)

// Transaction outcomes
const (
	OutcomeConfirmed          = "confirmed"
	OutcomeIndeterminate      = "indeterminate"
	OutcomeWalletNotConnected = "wallet_not_connected"
	OutcomeUnknownFunction    = "unknown_function"
	OutcomeSimulationFailed   = "simulation_failed"
	OutcomeSignatureRejected  = "signature_rejected"
	OutcomeSubmissionFailed   = "submission_failed"
	OutcomeFailed             = "failed"
	OutcomeExpired            = "expired"
	OutcomeError              = "error"
	OutcomeOK                 = "ok"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotellar_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lotellar_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

// Ledger Metrics
var (
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotellar_transactions_total",
			Help: "Contract invocations by function and outcome",
		},
		[]string{LabelFunction, LabelOutcome},
	)

	TransactionPollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lotellar_transaction_poll_attempts",
			Help:    "Status polls needed before a submission settled",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	LedgerReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotellar_ledger_reads_total",
			Help: "Read-only contract queries by query and outcome",
		},
		[]string{LabelQuery, LabelOutcome},
	)

	PendingTransactions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lotellar_pending_transactions",
			Help: "Indeterminate submissions awaiting reconciliation",
		},
	)
)

// RecordTransaction counts one contract invocation
func RecordTransaction(function, outcome string) {
	TransactionsTotal.WithLabelValues(function, outcome).Inc()
}

// RecordLedgerRead counts one read-only query
func RecordLedgerRead(query string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	LedgerReadsTotal.WithLabelValues(query, outcome).Inc()
}
