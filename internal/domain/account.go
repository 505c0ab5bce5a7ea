package domain

import (
	"context"
	"time"
)

type Account struct {
	Identifier   string    `json:"identifier"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AccountStore is the durable owner of account records.
// Insert must fail with ErrDuplicateIdentifier instead of overwriting.
type AccountStore interface {
	Insert(ctx context.Context, a Account) (Account, error)
	FindByIdentifier(ctx context.Context, identifier string) (Account, error)
}

// AccountDirectory adds the operator-side queries on top of AccountStore.
type AccountDirectory interface {
	AccountStore
	List(ctx context.Context, offset, limit int) ([]Account, int64, error)
	SetActive(ctx context.Context, identifier string, active bool) error
}
