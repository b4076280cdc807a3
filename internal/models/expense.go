package models

import "github.com/splitledger/splitledger/internal/money"

// SplitType determines how an expense amount is divided among participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly; the remainder is handed out
	// one minor unit at a time to participants in ascending user-ID order.
	SplitEqual SplitType = "equal"

	// SplitPercentage divides by caller-supplied percentages (basis
	// points). The last participant in sorted order absorbs rounding.
	SplitPercentage SplitType = "percentage"

	// SplitFixed uses caller-supplied literal per-user amounts.
	SplitFixed SplitType = "fixed"

	// SplitShares apportions proportionally to integer share counts with
	// the same remainder rule as SplitEqual.
	SplitShares SplitType = "shares"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitFixed, SplitShares:
		return true
	}
	return false
}

// Expense represents a single payment event split among participants.
// Invariant: Amount > 0 and the sum of Splits equals Amount exactly.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID scopes the expense to a group. Empty for non-group
	// expenses.
	GroupID string `json:"group_id,omitempty"`

	// Description is the human-readable description.
	Description string `json:"description"`

	// Amount is the full expense amount in minor currency units.
	Amount money.Amount `json:"amount"`

	// PaidBy is the user ID of the participant who paid.
	PaidBy string `json:"paid_by"`

	// SplitType records how the splits were generated.
	SplitType SplitType `json:"split_type"`

	// CreatedBy is the user ID of the expense's creator. The creator and
	// group admins may edit or delete it.
	CreatedBy string `json:"created_by"`

	// Splits are the per-user shares. Created atomically with the
	// expense; never exist independently.
	Splits []Split `json:"splits,omitempty"`

	// CreatedAt / UpdatedAt are Unix timestamps.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Split is one user's share of one expense.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string `json:"id"`

	// ExpenseID is the owning expense.
	ExpenseID string `json:"expense_id"`

	// UserID is the user who owes this share. Need not be the payer.
	UserID string `json:"user_id"`

	// Amount is this user's share in minor currency units.
	Amount money.Amount `json:"amount"`

	// IsSettled marks shares already covered by a settlement. Expenses
	// with settled splits reject further edits.
	IsSettled bool `json:"is_settled"`

	// SettledAt is the Unix timestamp of settlement, zero if unsettled.
	SettledAt int64 `json:"settled_at,omitempty"`
}

// SplitSum returns the sum of all split amounts.
func (e *Expense) SplitSum() money.Amount {
	var total money.Amount
	for _, s := range e.Splits {
		total += s.Amount
	}
	return total
}

// HasSettledSplit reports whether any split is already settled.
func (e *Expense) HasSettledSplit() bool {
	for _, s := range e.Splits {
		if s.IsSettled {
			return true
		}
	}
	return false
}
