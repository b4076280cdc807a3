package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
)

// CreateExpense persists a new expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, description, amount, paid_by, split_type, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, nullable(expense.GroupID), expense.Description, int64(expense.Amount),
		expense.PaidBy, string(expense.SplitType), expense.CreatedBy,
		expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var groupID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, split_type, created_by, created_at, updated_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &groupID, &expense.Description, &expense.Amount,
		&expense.PaidBy, &expense.SplitType, &expense.CreatedBy,
		&expense.CreatedAt, &expense.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &ledger.NotFoundError{Kind: "expense", ID: expenseID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.GroupID = groupID.String

	splits, err := s.splitsForExpenses(ctx, []string{expense.ID})
	if err != nil {
		return nil, err
	}
	expense.Splits = splits[expense.ID]
	return expense, nil
}

// UpdateExpense rewrites the expense row and replaces its splits in one
// transaction.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET group_id = ?, description = ?, amount = ?, paid_by = ?, split_type = ?, updated_at = ?
		 WHERE id = ?`,
		nullable(expense.GroupID), expense.Description, int64(expense.Amount),
		expense.PaidBy, string(expense.SplitType), expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "expense", ID: expense.ID}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete old splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; splits cascade via foreign key.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: "expense", ID: expenseID}
	}
	return nil
}

// ListExpensesByGroup retrieves all expenses of a group, splits included.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT id, group_id, description, amount, paid_by, split_type, created_by, created_at, updated_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID)
}

// ListExpensesByUser retrieves every expense the user touches as payer or
// split participant.
func (s *SQLiteStore) ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT DISTINCT e.id, e.group_id, e.description, e.amount, e.paid_by, e.split_type, e.created_by, e.created_at, e.updated_at
		 FROM expenses e
		 LEFT JOIN splits sp ON sp.expense_id = e.id
		 WHERE e.paid_by = ? OR sp.user_id = ?
		 ORDER BY e.created_at DESC, e.id`,
		userID, userID)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	var ids []string
	for rows.Next() {
		expense := &models.Expense{}
		var groupID sql.NullString
		if err := rows.Scan(&expense.ID, &groupID, &expense.Description, &expense.Amount,
			&expense.PaidBy, &expense.SplitType, &expense.CreatedBy,
			&expense.CreatedAt, &expense.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.GroupID = groupID.String
		expenses = append(expenses, expense)
		ids = append(ids, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splits, err := s.splitsForExpenses(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Splits = splits[e.ID]
	}
	return expenses, nil
}

// splitsForExpenses loads the splits of the given expenses, keyed by
// expense ID and ordered by user ID within each expense.
func (s *SQLiteStore) splitsForExpenses(ctx context.Context, expenseIDs []string) (map[string][]models.Split, error) {
	out := make(map[string][]models.Split)
	if len(expenseIDs) == 0 {
		return out, nil
	}

	query := `SELECT id, expense_id, user_id, amount, is_settled, settled_at
		 FROM splits WHERE expense_id IN (?` + repeatPlaceholder(len(expenseIDs)-1) + `)
		 ORDER BY expense_id, user_id`
	args := make([]any, len(expenseIDs))
	for i, id := range expenseIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		var settled int64
		var settledAt sql.NullInt64
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID,
			&split.Amount, &settled, &settledAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.IsSettled = settled != 0
		split.SettledAt = settledAt.Int64
		out[split.ExpenseID] = append(out[split.ExpenseID], split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return out, nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Splits {
		split := &expense.Splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ExpenseID = expense.ID

		var settledAt any
		if split.SettledAt != 0 {
			settledAt = split.SettledAt
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO splits (id, expense_id, user_id, amount, is_settled, settled_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			split.ID, split.ExpenseID, split.UserID, int64(split.Amount),
			boolToInt(split.IsSettled), settledAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// repeatPlaceholder returns a string of ", ?" repeated n times. Used for
// building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += ", ?"
	}
	return result
}
