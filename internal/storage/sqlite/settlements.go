package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
)

// CreateSettlement persists a new settlement and, when markSettled, marks
// the splits it covers in the same transaction: either both land or
// neither does. Settlements are immutable once created; there is
// deliberately no update method.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement, markSettled bool, settledAt int64) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, created_at, created_by, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, nullable(settlement.GroupID), settlement.FromUserID, settlement.ToUserID,
		int64(settlement.Amount), settlement.CreatedAt, settlement.CreatedBy, nullable(settlement.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	if markSettled {
		if err := settleSplits(ctx, tx, settlement.FromUserID, settlement.ToUserID, settlement.GroupID, settledAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, created_at, created_by, note
		 FROM settlements WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID)
}

// ListSettlementsByUser retrieves all settlements the user paid or
// received.
func (s *SQLiteStore) ListSettlementsByUser(ctx context.Context, userID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, created_at, created_by, note
		 FROM settlements WHERE from_user_id = ? OR to_user_id = ? ORDER BY created_at DESC, id`,
		userID, userID)
}

func (s *SQLiteStore) listSettlements(ctx context.Context, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var groupID, note sql.NullString
		if err := rows.Scan(&settlement.ID, &groupID, &settlement.FromUserID, &settlement.ToUserID,
			&settlement.Amount, &settlement.CreatedAt, &settlement.CreatedBy, &note); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlement.GroupID = groupID.String
		settlement.Note = note.String
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// settleSplits marks every unsettled split owed by debtor to creditor as
// settled. A group ID narrows the update to that group's expenses; empty
// covers all scopes, because a no-group settlement clears the debtor's
// account-wide balance with the creditor, group expenses included.
func settleSplits(ctx context.Context, tx *sql.Tx, debtorID, creditorID, groupID string, settledAt int64) error {
	query := `UPDATE splits SET is_settled = 1, settled_at = ?
		 WHERE is_settled = 0
		   AND user_id = ?
		   AND expense_id IN (
		       SELECT e.id FROM expenses e WHERE e.paid_by = ?`
	args := []any{settledAt, debtorID, creditorID}
	if groupID != "" {
		query += ` AND e.group_id = ?`
		args = append(args, groupID)
	}
	query += `
		   )`

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to settle splits: %w", err)
	}
	return nil
}
