// Package metrics defines the Prometheus instrumentation for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpensesRecorded counts successfully recorded expenses.
	ExpensesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_expenses_recorded_total",
		Help: "Number of expenses recorded.",
	})

	// SettlementsRecorded counts successfully recorded settlements.
	SettlementsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_settlements_recorded_total",
		Help: "Number of settlements recorded.",
	})

	// BalanceRecomputations counts full pairwise balance recomputations.
	BalanceRecomputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_balance_recomputations_total",
		Help: "Number of pairwise balance matrix recomputations.",
	})

	// BalanceCacheHits counts balance reads served from the versioned
	// cache without recomputation.
	BalanceCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_balance_cache_hits_total",
		Help: "Number of balance reads served from cache.",
	})
)
