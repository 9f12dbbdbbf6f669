package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "securebank_transfers_total",
		Help: "Transfer attempts by terminal status.",
	}, []string{"type", "status"})

	TransferDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "securebank_transfer_duration_seconds",
		Help:    "End-to-end duration of transfer attempts.",
		Buckets: prometheus.DefBuckets,
	})

	TokenRedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "securebank_token_redemptions_total",
		Help: "Payment token redemption attempts by outcome.",
	}, []string{"outcome"})

	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "securebank_tokens_issued_total",
		Help: "Payment tokens issued.",
	})

	BlocksMinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "securebank_ledger_blocks_mined_total",
		Help: "Ledger blocks committed to the chain.",
	})

	MiningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "securebank_ledger_mining_duration_seconds",
		Help:    "Nonce search duration per mined block.",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
	})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "securebank_events_published_total",
		Help: "Domain events handed to the notification sink.",
	}, []string{"event"})
)
