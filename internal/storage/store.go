// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitsmart/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a record with the same unique name exists.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Expenses and settlements are append-only: there are no update or delete
// operations, and list operations return records oldest first.
type Store interface {
	// CreateUser registers a new user. Returns ErrAlreadyExists if the name is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by name. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, name string) (*models.User, error)

	// ListUsers returns all users in registration order.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateGroup persists a new group with its initial members.
	// The group.ID field will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroupByName retrieves a group and its members. Returns ErrNotFound if absent.
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)

	// ListGroups returns all groups in creation order.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// AddGroupMembers appends members to a group, ignoring existing ones.
	AddGroupMembers(ctx context.Context, groupID string, members []string) error

	// CreateExpense appends an expense with its shares.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByGroup returns a group's expenses oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlement appends a settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ImportGroup persists a new group together with its expenses and
	// settlements, all or nothing. IDs are populated by the store.
	// Returns ErrAlreadyExists if the group name is taken.
	ImportGroup(ctx context.Context, group *models.Group, expenses []*models.Expense, settlements []*models.Settlement) error

	// ListSettlementsByGroup returns a group's settlements oldest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
