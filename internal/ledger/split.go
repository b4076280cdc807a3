// Package ledger implements the balance and settlement engine: split
// generation, pairwise balance aggregation and summary projection. All
// computation is pure and integer-only so recomputation over the same
// inputs is deterministic.
package ledger

import (
	"sort"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// PercentTotal is the basis-point value of 100%.
const PercentTotal = 10000

// Participant is one user's stake in an expense being recorded. Which
// fields matter depends on the split type: Amount for fixed, Percent
// (basis points) for percentage, Shares for shares. Equal splits use only
// the user ID.
type Participant struct {
	UserID  string
	Amount  money.Amount
	Percent int64
	Shares  int64
}

// GenerateSplits divides total among participants according to splitType.
// The returned splits carry user IDs and amounts only; the store assigns
// IDs and the owning expense.
//
// Invariant: the returned amounts always sum to total exactly. Remainders
// from integer division are handed out one minor unit at a time to
// participants in ascending user-ID order, so the result is reproducible.
func GenerateSplits(total money.Amount, splitType models.SplitType, participants []Participant) ([]models.Split, error) {
	if !total.IsPositive() {
		return nil, Validationf(CodeAmountNotPositive, "expense amount must be positive, got %s", total)
	}
	if len(participants) == 0 {
		return nil, Validationf(CodeNoParticipants, "expense requires at least one participant")
	}

	// Stable order: ascending user ID. All remainder and rounding
	// adjustments key off this order.
	sorted := make([]Participant, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UserID < sorted[j].UserID })

	seen := make(map[string]bool, len(sorted))
	for _, p := range sorted {
		if p.UserID == "" {
			return nil, Validationf(CodeMissingField, "participant user id required")
		}
		if seen[p.UserID] {
			return nil, Validationf(CodeDuplicateUser, "duplicate participant: %s", p.UserID)
		}
		seen[p.UserID] = true
	}

	var amounts []money.Amount
	var err error
	switch splitType {
	case models.SplitEqual:
		amounts = divideEvenly(total, int64(len(sorted)))
	case models.SplitPercentage:
		amounts, err = dividePercentage(total, sorted)
	case models.SplitFixed:
		amounts, err = divideFixed(total, sorted)
	case models.SplitShares:
		amounts, err = divideShares(total, sorted)
	default:
		return nil, Validationf(CodeUnknownSplitType, "unknown split type: %q", splitType)
	}
	if err != nil {
		return nil, err
	}

	splits := make([]models.Split, len(sorted))
	var sum money.Amount
	for i, p := range sorted {
		splits[i] = models.Split{UserID: p.UserID, Amount: amounts[i]}
		sum += amounts[i]
	}
	if sum != total {
		// Unreachable if the division helpers are correct. A hit here
		// means a bug that would corrupt balances, so it surfaces as
		// ledger corruption rather than being patched over.
		return nil, Consistencyf("split sum %s != expense amount %s", sum, total)
	}
	return splits, nil
}

// divideEvenly splits total into n near-equal amounts. The first
// total%n entries get one extra minor unit: 100 among 3 -> {34,33,33}.
func divideEvenly(total money.Amount, n int64) []money.Amount {
	base := int64(total) / n
	rem := int64(total) % n
	out := make([]money.Amount, n)
	for i := int64(0); i < n; i++ {
		out[i] = money.Amount(base)
		if i < rem {
			out[i]++
		}
	}
	return out
}

// dividePercentage computes round(total * percent / 10000) per participant
// in basis points, with the last participant in sorted order absorbing the
// rounding difference. Percentages must sum to exactly 100%.
func dividePercentage(total money.Amount, participants []Participant) ([]money.Amount, error) {
	var pctSum int64
	for _, p := range participants {
		if p.Percent < 0 {
			return nil, Validationf(CodePercentSumMismatch, "negative percentage for %s", p.UserID)
		}
		pctSum += p.Percent
	}
	if pctSum != PercentTotal {
		return nil, Validationf(CodePercentSumMismatch, "percentages sum to %d basis points, want %d", pctSum, PercentTotal)
	}

	out := make([]money.Amount, len(participants))
	var assigned money.Amount
	for i, p := range participants {
		if i == len(participants)-1 {
			out[i] = total - assigned
			break
		}
		// Round half up in integer arithmetic.
		out[i] = money.Amount((int64(total)*p.Percent + PercentTotal/2) / PercentTotal)
		assigned += out[i]
	}
	return out, nil
}

// divideFixed uses the caller-supplied amounts verbatim; they must sum to
// the expense total exactly.
func divideFixed(total money.Amount, participants []Participant) ([]money.Amount, error) {
	out := make([]money.Amount, len(participants))
	var sum money.Amount
	for i, p := range participants {
		out[i] = p.Amount
		sum += p.Amount
	}
	if sum != total {
		return nil, Validationf(CodeSplitSumMismatch, "fixed splits sum to %s, expense amount is %s", sum, total)
	}
	return out, nil
}

// divideShares apportions total proportionally to integer share counts.
// Each participant gets floor(total*shares/totalShares); the remainder is
// distributed with the same first-N rule as equal splits.
func divideShares(total money.Amount, participants []Participant) ([]money.Amount, error) {
	var totalShares int64
	for _, p := range participants {
		if p.Shares < 0 {
			return nil, Validationf(CodeNoShares, "negative share count for %s", p.UserID)
		}
		totalShares += p.Shares
	}
	if totalShares == 0 {
		return nil, Validationf(CodeNoShares, "share counts sum to zero")
	}

	out := make([]money.Amount, len(participants))
	var assigned money.Amount
	for i, p := range participants {
		out[i] = money.Amount(int64(total) * p.Shares / totalShares)
		assigned += out[i]
	}
	// Zero-share participants have no fractional part and are never
	// charged remainder units. The remainder is strictly smaller than
	// the number of participants with shares, so one pass suffices.
	rem := total - assigned
	for i := 0; rem > 0; i++ {
		if participants[i].Shares == 0 {
			continue
		}
		out[i]++
		rem--
	}
	return out, nil
}
