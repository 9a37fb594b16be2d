package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/spot-reservation/internal/database"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlConn binds a querier to the dialect its queries are written for.
type sqlConn struct {
	q       querier
	dialect database.Dialect
}

func (c sqlConn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, database.Rebind(c.dialect, query), args...)
}

func (c sqlConn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, database.Rebind(c.dialect, query), args...)
}

func (c sqlConn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, database.Rebind(c.dialect, query), args...)
}

// insert runs an INSERT and returns the generated id. Postgres has no
// LastInsertId, so the statement is extended with RETURNING id.
func (c sqlConn) insert(ctx context.Context, query string, args ...any) (uint64, error) {
	if c.dialect == database.Postgres {
		var id uint64
		if err := c.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return uint64(id), nil
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
