// Package sqlite implements the store contracts on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/recyclehub/internal/store"
)

// Store is a store.Store backed by *sql.DB.
type Store struct {
	DB *sql.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open database whose schema has been ensured.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
