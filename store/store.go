// Package store abstracts the SQL database handle the engine services use.
// In the running app the handle comes from the PocketBase instance so that
// settlement shares its transaction machinery; tests open a plain dbx
// database over SQLite instead.
package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

type Store interface {
	// DB returns a builder for single-statement work.
	DB() dbx.Builder

	// InTransaction runs fn inside one database transaction. The settlement
	// path relies on this boundary covering the inventory reservation, the
	// transaction insert and every ticket insert together.
	InTransaction(ctx context.Context, fn func(tx dbx.Builder) error) error
}

type appStore struct {
	app core.App
}

// NewApp wraps a PocketBase app as a Store.
func NewApp(app core.App) Store {
	return &appStore{app: app}
}

func (s *appStore) DB() dbx.Builder {
	return s.app.DB()
}

func (s *appStore) InTransaction(_ context.Context, fn func(tx dbx.Builder) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(txApp.DB())
	})
}

type dbxStore struct {
	db *dbx.DB
}

// NewDBX wraps a plain dbx database as a Store.
func NewDBX(db *dbx.DB) Store {
	return &dbxStore{db: db}
}

func (s *dbxStore) DB() dbx.Builder {
	return s.db
}

func (s *dbxStore) InTransaction(ctx context.Context, fn func(tx dbx.Builder) error) error {
	err := s.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		return fn(tx)
	})
	if err != nil {
		return fmt.Errorf("store: transaction: %w", err)
	}
	return nil
}
