// Package store defines the persistence contracts for items and users.
// Implementations live in the sqlite and mongodb subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/erazemk/recyclehub/internal/model"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// ItemStore is a document collection of items keyed by a store-generated id.
type ItemStore interface {
	// CreateItem assigns item.ID and persists the item.
	CreateItem(ctx context.Context, item *model.Item) error
	ListItems(ctx context.Context) ([]model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	// UpdateItemStatus sets the status and returns the updated record.
	UpdateItemStatus(ctx context.Context, id, status string) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// UserStore persists accounts.
type UserStore interface {
	// CreateUser assigns user.ID and persists the user. Returns ErrDuplicate
	// if the email is taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenStore records revoked login tokens by JWT ID until they expire.
type TokenStore interface {
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AccountStore is what account operations need.
type AccountStore interface {
	UserStore
	TokenStore
}

// SettingsStore holds process-wide values that must survive restarts.
type SettingsStore interface {
	// JWTSecret returns the stored signing key, generating and storing one
	// on first use. Concurrent first calls agree on a single key.
	JWTSecret(ctx context.Context) (string, error)
}

// Store is a backend holding every collection.
type Store interface {
	ItemStore
	UserStore
	TokenStore
	SettingsStore
	Ping(ctx context.Context) error
	Close() error
}
