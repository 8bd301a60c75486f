// Package store holds the persistence primitives for users, lists and items.
//
// Every read hides soft-deleted records unless the method name says
// Unscoped. A missing record is reported as a nil result with a nil error.
// Backend failures wrap ErrStore. SoftDeleteItem is conditional on the item
// still being active and reports ErrNotActive otherwise.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/models"
	"github.com/google/uuid"
)

var (
	ErrAlreadyExists = errors.New("record already exists")
	// ErrNotActive is returned by SoftDeleteItem when no active item with
	// the id exists, including when a concurrent call removed it first.
	ErrNotActive = errors.New("record not active")
	ErrStore     = errors.New("store failure")
)

// ListFields are the mutable columns of a list.
type ListFields struct {
	Name    string
	Date    time.Time
	OwnerID uuid.UUID
}

// ItemFields are the mutable columns of an item.
type ItemFields struct {
	Name    string
	Checked bool
}

type Store interface {
	FindUserByCredentials(ctx context.Context, name, password string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, name, password string) (*models.User, error)

	FindListsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.List, error)
	FindListByID(ctx context.Context, id uuid.UUID) (*models.List, error)
	FindListByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.List, error)
	FindListByName(ctx context.Context, name string, ownerID uuid.UUID) (*models.List, error)
	InsertList(ctx context.Context, fields ListFields) (*models.List, error)
	UpdateList(ctx context.Context, id uuid.UUID, fields ListFields) error
	SoftDeleteList(ctx context.Context, id uuid.UUID) error

	FindItemsByList(ctx context.Context, listID uuid.UUID) ([]models.Item, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindItemByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Item, error)
	InsertItem(ctx context.Context, listID uuid.UUID, fields ItemFields) (*models.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, fields ItemFields) error
	SoftDeleteItem(ctx context.Context, id uuid.UUID) error
}

// Transactor is implemented by backends that can run a group of writes
// atomically. The Store handed to fn must not be used after fn returns.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// Pinger reports backend reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}
