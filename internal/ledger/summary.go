package ledger

import (
	"sort"

	"github.com/splitledger/splitledger/internal/money"
)

// Summary is the user-facing aggregate of a balance matrix. YouOwe and
// YouAreOwed are summed per direction across counterparts and never netted
// against each other, even though each pair is netted in the matrix.
type Summary struct {
	YouOwe     money.Amount `json:"you_owe"`
	YouAreOwed money.Amount `json:"you_are_owed"`
}

// CounterpartBalance is the net balance with one counterpart. Positive
// Amount means the counterpart owes the user.
type CounterpartBalance struct {
	UserID string       `json:"user_id"`
	Amount money.Amount `json:"amount"`
}

// ProjectSummary sums the pairwise balances involving userID into owe /
// owed components.
func ProjectSummary(pairs []PairBalance, userID string) Summary {
	var s Summary
	for _, b := range toCounterparts(pairs, userID) {
		if b.Amount > 0 {
			s.YouAreOwed += b.Amount
		} else {
			s.YouOwe += -b.Amount
		}
	}
	return s
}

// ProjectBalances lists the net balance with every counterpart of userID,
// ordered by descending absolute amount, then by counterpart ID for
// stability.
func ProjectBalances(pairs []PairBalance, userID string) []CounterpartBalance {
	out := toCounterparts(pairs, userID)
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Amount.Abs(), out[j].Amount.Abs()
		if ai != aj {
			return ai > aj
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func toCounterparts(pairs []PairBalance, userID string) []CounterpartBalance {
	var out []CounterpartBalance
	for _, p := range pairs {
		switch userID {
		case p.UserA:
			// Positive matrix amount: userID owes UserB.
			out = append(out, CounterpartBalance{UserID: p.UserB, Amount: -p.Amount})
		case p.UserB:
			out = append(out, CounterpartBalance{UserID: p.UserA, Amount: p.Amount})
		}
	}
	return out
}
