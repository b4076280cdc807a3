package models

import "github.com/splitledger/splitledger/internal/money"

// Settlement represents a payment between users to clear debts.
// Immutable once created; corrections are new, offsetting settlements.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID scopes the settlement to a group. Empty for settlements
	// outside any group.
	GroupID string `json:"group_id,omitempty"`

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string `json:"from_user_id"`

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string `json:"to_user_id"`

	// Amount is the payment amount in minor currency units. Always > 0.
	Amount money.Amount `json:"amount"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"created_at"`

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string `json:"created_by"`

	// Note is an optional description.
	Note string `json:"note,omitempty"`
}
