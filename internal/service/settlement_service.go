package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// SettlementInput carries everything needed to record a settlement.
type SettlementInput struct {
	FromUserID string
	ToUserID   string
	Amount     money.Amount
	GroupID    string
	Note       string

	// AllowOverpayment opts into recording more than the outstanding
	// balance, creating a reversed balance. Off by default: overpayment
	// is rejected.
	AllowOverpayment bool
}

// SettlementService records payments between users against the ledger.
type SettlementService struct {
	store    storage.Store
	balances *BalanceService
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(store storage.Store, balances *BalanceService) *SettlementService {
	return &SettlementService{store: store, balances: balances}
}

// Record validates and persists a settlement.
//
// The overpayment check and the insert run under the affected scopes'
// write locks, so a concurrent expense or settlement cannot slip between
// check and commit. The balance cache is invalidated synchronously before
// the call returns; the aggregator's next computation reflects the
// settlement.
func (s *SettlementService) Record(ctx context.Context, callerID string, in SettlementInput) (*models.Settlement, error) {
	if !in.Amount.IsPositive() {
		return nil, ledger.Validationf(ledger.CodeAmountNotPositive, "settlement amount must be positive, got %s", in.Amount)
	}
	if in.FromUserID == "" || in.ToUserID == "" {
		return nil, ledger.Validationf(ledger.CodeMissingField, "from_user_id and to_user_id are required")
	}
	if in.FromUserID == in.ToUserID {
		return nil, ledger.Validationf(ledger.CodeSelfSettlement, "cannot settle with yourself")
	}

	scope := UserScope(in.FromUserID)
	if in.GroupID != "" {
		group, err := s.store.GetGroup(ctx, in.GroupID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(in.FromUserID) || !group.HasMember(in.ToUserID) {
			return nil, ledger.Validationf(ledger.CodeNotGroupMember, "both users must be members of group %s", in.GroupID)
		}
		scope = GroupScope(in.GroupID)
	}

	keys := []string{scope.Key(), UserScope(in.FromUserID).Key(), UserScope(in.ToUserID).Key()}
	unlock := s.balances.LockScopes(keys)
	defer unlock()

	outstanding, err := s.balances.Outstanding(ctx, scope, in.FromUserID, in.ToUserID)
	if err != nil {
		return nil, err
	}
	if !in.AllowOverpayment && in.Amount > outstanding {
		return nil, ledger.Validationf(ledger.CodeExceedsOutstanding,
			"settlement of %s exceeds outstanding balance %s", in.Amount, outstanding)
	}

	settlement := &models.Settlement{
		GroupID:    in.GroupID,
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		Amount:     in.Amount,
		CreatedBy:  callerID,
		Note:       in.Note,
	}
	// A settlement that exactly clears the pair marks the covered
	// splits in the same transaction, so expenses behind it reject
	// further edits. The splits marked are the ones whose scope
	// contributed to the outstanding figure: the group's for a group
	// settlement, every scope for a no-group one.
	markSettled := in.Amount == outstanding
	if err := s.store.CreateSettlement(ctx, settlement, markSettled, time.Now().Unix()); err != nil {
		return nil, err
	}

	s.balances.Invalidate(keys...)
	metrics.SettlementsRecorded.Inc()

	slog.Info("settlement recorded",
		"settlement_id", settlement.ID,
		"from", settlement.FromUserID,
		"to", settlement.ToUserID,
		"amount", settlement.Amount,
		"group_id", settlement.GroupID,
	)
	return settlement, nil
}

// List returns the group's settlements when groupID is set (caller must
// be a member), otherwise every settlement the caller paid or received.
func (s *SettlementService) List(ctx context.Context, callerID, groupID string) ([]*models.Settlement, error) {
	if groupID == "" {
		return s.store.ListSettlementsByUser(ctx, callerID)
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, ledger.Validationf(ledger.CodePermissionDenied, "you must be a member of this group")
	}
	return s.store.ListSettlementsByGroup(ctx, groupID)
}
