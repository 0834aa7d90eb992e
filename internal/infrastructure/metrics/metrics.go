package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_status_transitions_total",
			Help: "Loan status changes applied, by source and target status",
		},
		[]string{"from", "to"},
	)

	SweepLoans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_sweep_loans_total",
			Help: "Loans processed by the document pipeline, by outcome",
		},
		[]string{"outcome"},
	)

	LoanProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "document_loan_processing_seconds",
			Help:    "Time spent rendering, uploading and committing one loan's documents",
			Buckets: prometheus.DefBuckets,
		},
	)

	UploadAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blob_upload_attempts_total",
			Help: "Blob upload attempts, by result",
		},
		[]string{"result"},
	)

	Disbursements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_disbursements_total",
			Help: "Loans marked as disbursed",
		},
	)
)
