package ledger

import (
	"sort"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// PairBalance is the net signed amount between an unordered pair of users,
// stored canonically: UserA < UserB, positive Amount means UserA owes
// UserB. Exactly one entry exists per pair; zero-net pairs are dropped.
type PairBalance struct {
	UserA  string       `json:"user_a"`
	UserB  string       `json:"user_b"`
	Amount money.Amount `json:"amount"`
}

// ComputePairwiseBalances derives the net pairwise balance matrix from a
// scope's expenses and settlements.
//
// For every split s of every expense e, s.Amount is added to "s.UserID
// owes e.PaidBy" (self-pairs skipped). For every settlement, the amount is
// subtracted from "FromUserID owes ToUserID". All contributions are netted
// before exposure. The computation is pure and integer-only, so running it
// twice over the same ledger state yields identical output.
func ComputePairwiseBalances(expenses []*models.Expense, settlements []*models.Settlement) []PairBalance {
	net := make(map[[2]string]money.Amount)

	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.UserID == e.PaidBy {
				continue
			}
			addOwed(net, s.UserID, e.PaidBy, s.Amount)
		}
	}
	for _, st := range settlements {
		if st.FromUserID == st.ToUserID {
			continue
		}
		addOwed(net, st.FromUserID, st.ToUserID, -st.Amount)
	}

	pairs := make([]PairBalance, 0, len(net))
	for key, amount := range net {
		if amount == 0 {
			continue
		}
		pairs = append(pairs, PairBalance{UserA: key[0], UserB: key[1], Amount: amount})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].UserA != pairs[j].UserA {
			return pairs[i].UserA < pairs[j].UserA
		}
		return pairs[i].UserB < pairs[j].UserB
	})
	return pairs
}

// addOwed records "debtor owes creditor amount" against the canonical
// (minID, maxID) key, flipping the sign when the debtor is the larger ID.
func addOwed(net map[[2]string]money.Amount, debtor, creditor string, amount money.Amount) {
	if debtor < creditor {
		net[[2]string{debtor, creditor}] += amount
	} else {
		net[[2]string{creditor, debtor}] -= amount
	}
}

// Outstanding returns how much debtor currently owes creditor within the
// given matrix. Zero when nothing is owed in that direction (including
// when the net runs the other way).
func Outstanding(pairs []PairBalance, debtor, creditor string) money.Amount {
	a, b := debtor, creditor
	flip := false
	if a > b {
		a, b = b, a
		flip = true
	}
	for _, p := range pairs {
		if p.UserA != a || p.UserB != b {
			continue
		}
		amt := p.Amount
		if flip {
			amt = -amt
		}
		if amt > 0 {
			return amt
		}
		return 0
	}
	return 0
}
