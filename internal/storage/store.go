// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/splitledger/splitledger/internal/models"
)

// Store defines the interface for ledger persistence. The abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
//
// Expense writes are atomic: an expense and its splits commit together, so
// a reader never observes a partially written expense.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Groups. GetGroup populates the member set.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID string) error
	AddGroupMember(ctx context.Context, member *models.GroupMember) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	// Expenses. Create and Update persist the splits in the same
	// transaction as the expense row; Delete cascades to splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	// ListExpensesByUser returns every expense the user touches, as
	// payer or split participant.
	ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// Settlements. CreateSettlement persists the settlement; when
	// markSettled, every unsettled split owed by FromUserID to ToUserID
	// within the settlement's scope is marked settled at settledAt in
	// the same transaction. A group settlement covers that group's
	// splits; a settlement without a group covers every scope, matching
	// the account-wide outstanding balance it clears.
	CreateSettlement(ctx context.Context, settlement *models.Settlement, markSettled bool, settledAt int64) error
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	ListSettlementsByUser(ctx context.Context, userID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
