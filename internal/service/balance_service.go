package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// Scope is the boundary over which balances are computed: one group, or a
// user's whole account (every expense and settlement that user touches).
type Scope struct {
	GroupID string
	UserID  string
}

// GroupScope returns the scope of a single group.
func GroupScope(groupID string) Scope { return Scope{GroupID: groupID} }

// UserScope returns the global scope anchored to a user.
func UserScope(userID string) Scope { return Scope{UserID: userID} }

// Key returns the cache/lock key for the scope.
func (s Scope) Key() string {
	if s.GroupID != "" {
		return "group:" + s.GroupID
	}
	return "user:" + s.UserID
}

// cachedBalances is a memoized balance matrix, valid only while the
// scope's version counter is unchanged since it was populated.
type cachedBalances struct {
	version uint64
	pairs   []ledger.PairBalance
}

// BalanceService derives pairwise balances and summaries from the ledger.
//
// It maintains a monotonically increasing version counter per scope,
// bumped on every mutation affecting that scope, and memoizes computed
// matrices against that counter. It also hands out the per-scope locks
// that serialize mutations, so the settlement overpayment check is
// race-free.
type BalanceService struct {
	store storage.Store

	mu       sync.Mutex
	versions map[string]uint64
	cache    map[string]*cachedBalances
	locks    map[string]*sync.Mutex
}

// NewBalanceService creates a BalanceService over the given store.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{
		store:    store,
		versions: make(map[string]uint64),
		cache:    make(map[string]*cachedBalances),
		locks:    make(map[string]*sync.Mutex),
	}
}

// LockScopes acquires the write locks of every given scope key in sorted
// order (so two writers can never deadlock) and returns the release
// function. All ledger mutations for a scope go through its lock.
func (b *BalanceService) LockScopes(keys []string) func() {
	uniq := make(map[string]bool, len(keys))
	var sorted []string
	for _, k := range keys {
		if !uniq[k] {
			uniq[k] = true
			sorted = append(sorted, k)
		}
	}
	sort.Strings(sorted)

	locks := make([]*sync.Mutex, len(sorted))
	for i, k := range sorted {
		locks[i] = b.scopeLock(k)
	}
	for _, l := range locks {
		l.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func (b *BalanceService) scopeLock(key string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[key]
	if !ok {
		l = &sync.Mutex{}
		b.locks[key] = l
	}
	return l
}

// Invalidate bumps the version counter of every given scope key. Cached
// matrices populated at older versions become stale immediately; callers
// invoke this synchronously within the mutating operation, before it
// returns.
func (b *BalanceService) Invalidate(keys ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		b.versions[k]++
	}
}

// PairwiseBalances returns the net balance matrix for the scope,
// recomputing only when the scope has mutated since the cached copy.
func (b *BalanceService) PairwiseBalances(ctx context.Context, scope Scope) ([]ledger.PairBalance, error) {
	key := scope.Key()

	b.mu.Lock()
	version := b.versions[key]
	if c, ok := b.cache[key]; ok && c.version == version {
		pairs := c.pairs
		b.mu.Unlock()
		metrics.BalanceCacheHits.Inc()
		return pairs, nil
	}
	b.mu.Unlock()

	expenses, settlements, err := b.loadScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	pairs := ledger.ComputePairwiseBalances(expenses, settlements)
	metrics.BalanceRecomputations.Inc()
	slog.Debug("balance matrix recomputed", "scope", key, "version", version, "pairs", len(pairs))

	b.mu.Lock()
	// Only cache if no mutation landed while we were computing.
	if b.versions[key] == version {
		b.cache[key] = &cachedBalances{version: version, pairs: pairs}
	}
	b.mu.Unlock()

	return pairs, nil
}

// Summary projects the scope's matrix into "you owe" / "you are owed"
// totals for the user. Directions are never netted against each other.
func (b *BalanceService) Summary(ctx context.Context, userID string, scope Scope) (ledger.Summary, error) {
	pairs, err := b.PairwiseBalances(ctx, scope)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.ProjectSummary(pairs, userID), nil
}

// BalancesFor lists the user's net balance with every counterpart in the
// scope, largest first.
func (b *BalanceService) BalancesFor(ctx context.Context, userID string, scope Scope) ([]ledger.CounterpartBalance, error) {
	pairs, err := b.PairwiseBalances(ctx, scope)
	if err != nil {
		return nil, err
	}
	return ledger.ProjectBalances(pairs, userID), nil
}

// Outstanding returns how much debtor currently owes creditor in scope.
func (b *BalanceService) Outstanding(ctx context.Context, scope Scope, debtorID, creditorID string) (money.Amount, error) {
	pairs, err := b.PairwiseBalances(ctx, scope)
	if err != nil {
		return 0, err
	}
	return ledger.Outstanding(pairs, debtorID, creditorID), nil
}

func (b *BalanceService) loadScope(ctx context.Context, scope Scope) ([]*models.Expense, []*models.Settlement, error) {
	if scope.GroupID != "" {
		expenses, err := b.store.ListExpensesByGroup(ctx, scope.GroupID)
		if err != nil {
			return nil, nil, err
		}
		settlements, err := b.store.ListSettlementsByGroup(ctx, scope.GroupID)
		if err != nil {
			return nil, nil, err
		}
		return expenses, settlements, nil
	}

	expenses, err := b.store.ListExpensesByUser(ctx, scope.UserID)
	if err != nil {
		return nil, nil, err
	}
	settlements, err := b.store.ListSettlementsByUser(ctx, scope.UserID)
	if err != nil {
		return nil, nil, err
	}
	return expenses, settlements, nil
}
