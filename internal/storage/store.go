// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/MichealAPI/payly/internal/models"
)

// ErrNotFound is wrapped by every backend when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the service layer depends on.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. The ID must already be set.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns the user with the given email, or nil if none exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns the user with the given ID, or nil if none exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateGroup persists a new group and its members.
	// The group.ID and group.CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group the user is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers adds users to a group, ignoring those already present.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// DeleteGroup removes a group together with its expenses and settlements.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists a new expense and its participants.
	// The expense.ID and expense.CreatedAt fields are populated by the store when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its participants.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces an existing expense and its participants.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup returns the group's expenses in insertion order.
	// Balance tie-breaks depend on this order being stable.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlement persists a new settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns the group's settlements in insertion order.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// DeleteSettlement removes a settlement.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Close releases any resources held by the store.
	Close() error
}
