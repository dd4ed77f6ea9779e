// Package metrics exposes Prometheus instrumentation for the assistant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatTurns counts processed dialogue turns by reported intent.
	ChatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "srtbank",
		Subsystem: "assistant",
		Name:      "chat_turns_total",
		Help:      "Dialogue turns processed, by reported intent.",
	}, []string{"intent"})

	// TransfersCommitted counts transfers that debited the ledger.
	TransfersCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "srtbank",
		Subsystem: "assistant",
		Name:      "transfers_committed_total",
		Help:      "Confirmed transfers that debited the ledger.",
	})

	// TransfersRejected counts transfers rejected for insufficient balance.
	TransfersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "srtbank",
		Subsystem: "assistant",
		Name:      "transfers_rejected_total",
		Help:      "Confirmed transfers rejected for insufficient balance.",
	})
)
