package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DepositsInitiated counts initiated deposits by chain and asset kind
	DepositsInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_deposits_initiated_total",
			Help: "Total number of initiated deposits",
		},
		[]string{"chain", "kind"},
	)

	// WithdrawalsFinalized counts finalized withdrawals by chain and asset kind
	WithdrawalsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_withdrawals_finalized_total",
			Help: "Total number of finalized withdrawals",
		},
		[]string{"chain", "kind"},
	)

	// FastWithdrawals counts fast-path settlements by chain and status
	FastWithdrawals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_fast_withdrawals_total",
			Help: "Total number of fast-path withdrawals",
		},
		[]string{"chain", "status"},
	)

	// RelayDuration tracks end-to-end relay time from initiate to finalize
	RelayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_relay_duration_seconds",
			Help:    "Message relay duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	// TransferAmount tracks bridged principal per direction and asset
	TransferAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_transfer_amount",
			Help:    "Bridged principal amount",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 100, 1000, 10000},
		},
		[]string{"direction", "asset"},
	)

	// MessagesRelayed counts messages moved between the paired chains
	MessagesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_messages_relayed_total",
			Help: "Total number of relayed messages",
		},
		[]string{"direction", "status"},
	)

	// EscrowLocked tracks the tracked escrow per chain and asset pair
	EscrowLocked = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_escrow_locked",
			Help: "Currently locked escrow by chain and asset pair",
		},
		[]string{"chain", "pair"},
	)

	// PoolBalance tracks liquidity-pool balances per chain and asset
	PoolBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_pool_balance",
			Help: "Current liquidity pool balance by chain and asset",
		},
		[]string{"chain", "asset"},
	)

	// FeesCollected accumulates collected fees by chain and fee leg
	FeesCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_fees_collected_total",
			Help: "Total fees collected by chain and leg",
		},
		[]string{"chain", "leg"},
	)

	// PendingMessages tracks queued, not yet relayed messages per direction
	PendingMessages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_pending_messages",
			Help: "Number of queued messages awaiting relay",
		},
		[]string{"direction"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
