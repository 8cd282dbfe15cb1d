package board

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	traceSplits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otr_board_trace_splits_total",
		Help: "Traces split into two pieces",
	})

	traceCombines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otr_board_trace_combines_total",
		Help: "Pairs of traces combined into one",
	})

	tracesRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otr_board_traces_removed_total",
		Help: "Traces removed by the normalizer",
	}, []string{"reason"})

	normalizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "otr_board_normalize_duration_seconds",
		Help:    "Time to normalize one trace",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	})

	clearanceViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otr_board_clearance_violations_total",
		Help: "Clearance violations found",
	})

	limitsExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otr_board_limits_exhausted_total",
		Help: "Worklists stopped because their limit was reached",
	}, []string{"limit"})
)
