package repository

import (
	"context"
	"database/sql"
)

// DBTX is the querier contract shared by *sql.DB and *sql.Tx. Repositories
// are constructed over it so bulk import and seeding can run the same data
// access inside a single transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
