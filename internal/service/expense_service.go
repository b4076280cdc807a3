// Package service implements the application services orchestrating the
// ledger engine, the store and the balance cache.
package service

import (
	"context"
	"log/slog"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// ExpenseInput carries everything needed to record an expense.
type ExpenseInput struct {
	Description  string
	Amount       money.Amount
	PaidBy       string
	GroupID      string
	SplitType    models.SplitType
	Participants []ledger.Participant
}

// ExpensePatch is a partial update for an expense. Nil fields are left
// unchanged. Changing the amount, split type or participant set
// regenerates the splits.
type ExpensePatch struct {
	Description  *string
	Amount       *money.Amount
	SplitType    *models.SplitType
	Participants []ledger.Participant
}

// ExpenseService implements the ledger store operations: recording,
// editing and deleting expenses with their generated splits.
type ExpenseService struct {
	store    storage.Store
	balances *BalanceService
}

// NewExpenseService creates an ExpenseService.
func NewExpenseService(store storage.Store, balances *BalanceService) *ExpenseService {
	return &ExpenseService{store: store, balances: balances}
}

// Record validates the input, generates the splits and persists the
// expense atomically. The caller must be the payer or a participant; for
// group expenses every participant (payer included) must be a member.
func (s *ExpenseService) Record(ctx context.Context, callerID string, in ExpenseInput) (*models.Expense, error) {
	if in.PaidBy == "" {
		return nil, ledger.Validationf(ledger.CodeMissingField, "paid_by is required")
	}
	if !participantOf(in.PaidBy, in.Participants) {
		return nil, ledger.Validationf(ledger.CodePayerNotParticipant, "payer %s must be a participant", in.PaidBy)
	}
	if callerID != in.PaidBy && !participantOf(callerID, in.Participants) {
		return nil, ledger.Validationf(ledger.CodePermissionDenied, "you must be a participant to record this expense")
	}
	if in.GroupID != "" {
		group, err := s.store.GetGroup(ctx, in.GroupID)
		if err != nil {
			return nil, err
		}
		for _, p := range in.Participants {
			if !group.HasMember(p.UserID) {
				return nil, ledger.Validationf(ledger.CodeNotGroupMember, "user %s is not a member of group %s", p.UserID, in.GroupID)
			}
		}
	}

	splits, err := ledger.GenerateSplits(in.Amount, in.SplitType, in.Participants)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     in.GroupID,
		Description: in.Description,
		Amount:      in.Amount,
		PaidBy:      in.PaidBy,
		SplitType:   in.SplitType,
		CreatedBy:   callerID,
		Splits:      splits,
	}

	unlock := s.balances.LockScopes(expenseScopeKeys(expense))
	defer unlock()

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}
	s.balances.Invalidate(expenseScopeKeys(expense)...)
	metrics.ExpensesRecorded.Inc()

	slog.Info("expense recorded",
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"paid_by", expense.PaidBy,
		"split_type", expense.SplitType,
		"group_id", expense.GroupID,
	)
	return expense, nil
}

// Edit applies a patch to an expense. Edits are rejected with a conflict
// once any split of the expense has been settled, since rewriting history
// under a recorded settlement would corrupt balances.
func (s *ExpenseService) Edit(ctx context.Context, callerID, expenseID string, patch ExpensePatch) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	// Lock the union of every scope the edit can touch: the pre-edit
	// set (a participant the patch removes still needs their cache
	// invalidated) plus any participant the patch introduces.
	keys := expenseScopeKeys(expense)
	for _, p := range patch.Participants {
		keys = append(keys, UserScope(p.UserID).Key())
	}
	unlock := s.balances.LockScopes(keys)
	defer unlock()

	// Re-read under the locks: a settlement serialized ahead of this
	// edit may have marked splits settled after the first read.
	expense, err = s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.canMutate(ctx, callerID, expense); err != nil {
		return nil, err
	}
	if expense.HasSettledSplit() {
		return nil, ledger.Conflictf("expense %s has settled splits and can no longer be edited", expenseID)
	}

	if patch.Description != nil {
		expense.Description = *patch.Description
	}

	regenerate := patch.Amount != nil || patch.SplitType != nil || patch.Participants != nil
	if patch.Amount != nil {
		expense.Amount = *patch.Amount
	}
	if patch.SplitType != nil {
		expense.SplitType = *patch.SplitType
	}
	if regenerate {
		participants := patch.Participants
		if participants == nil {
			// Reuse the existing participant set. Only safe for
			// equal splits; the other types carry per-user data
			// that the caller must resupply.
			if expense.SplitType != models.SplitEqual {
				return nil, ledger.Validationf(ledger.CodeMissingField,
					"participants required when changing a %s-split expense", expense.SplitType)
			}
			for _, sp := range expense.Splits {
				participants = append(participants, ledger.Participant{UserID: sp.UserID})
			}
		}
		splits, err := ledger.GenerateSplits(expense.Amount, expense.SplitType, participants)
		if err != nil {
			return nil, err
		}
		expense.Splits = splits
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}
	s.balances.Invalidate(keys...)

	slog.Info("expense updated", "expense_id", expense.ID)
	return expense, nil
}

// Delete removes an expense; its splits cascade. Every user appearing in
// those splits has their scope invalidated so the next recomputation
// drops the expense's contribution.
func (s *ExpenseService) Delete(ctx context.Context, callerID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := s.canMutate(ctx, callerID, expense); err != nil {
		return err
	}

	unlock := s.balances.LockScopes(expenseScopeKeys(expense))
	defer unlock()

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	s.balances.Invalidate(expenseScopeKeys(expense)...)

	slog.Info("expense deleted", "expense_id", expenseID)
	return nil
}

// Get retrieves an expense the caller participates in.
func (s *ExpenseService) Get(ctx context.Context, callerID, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !touchesExpense(callerID, expense) {
		return nil, ledger.Validationf(ledger.CodePermissionDenied, "you must be a participant to view this expense")
	}
	return expense, nil
}

// List returns the group's expenses when groupID is set (caller must be a
// member), otherwise every expense the caller touches.
func (s *ExpenseService) List(ctx context.Context, callerID, groupID string) ([]*models.Expense, error) {
	if groupID == "" {
		return s.store.ListExpensesByUser(ctx, callerID)
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, ledger.Validationf(ledger.CodePermissionDenied, "you must be a member of this group")
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// Splits returns the splits of one expense.
func (s *ExpenseService) Splits(ctx context.Context, callerID, expenseID string) ([]models.Split, error) {
	expense, err := s.Get(ctx, callerID, expenseID)
	if err != nil {
		return nil, err
	}
	return expense.Splits, nil
}

// canMutate allows the expense's creator and, for group expenses, group
// admins.
func (s *ExpenseService) canMutate(ctx context.Context, callerID string, expense *models.Expense) error {
	if callerID == expense.CreatedBy {
		return nil
	}
	if expense.GroupID != "" {
		group, err := s.store.GetGroup(ctx, expense.GroupID)
		if err != nil {
			return err
		}
		if group.IsAdmin(callerID) {
			return nil
		}
	}
	return ledger.Validationf(ledger.CodePermissionDenied, "only the creator or a group admin may modify this expense")
}

// expenseScopeKeys lists every scope whose balances the expense affects:
// the group scope (if any) plus the global scope of each touched user.
func expenseScopeKeys(expense *models.Expense) []string {
	var keys []string
	if expense.GroupID != "" {
		keys = append(keys, GroupScope(expense.GroupID).Key())
	}
	keys = append(keys, UserScope(expense.PaidBy).Key())
	for _, sp := range expense.Splits {
		keys = append(keys, UserScope(sp.UserID).Key())
	}
	return keys
}

func participantOf(userID string, participants []ledger.Participant) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func touchesExpense(userID string, expense *models.Expense) bool {
	if userID == expense.PaidBy || userID == expense.CreatedBy {
		return true
	}
	for _, sp := range expense.Splits {
		if sp.UserID == userID {
			return true
		}
	}
	return false
}
