package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ensureOwned checks that row id of table belongs to companyID.
// table is always a package constant, never caller input.
func ensureOwned(ctx context.Context, q pgxQuerier, table, label string, companyID, id int) error {
	var exists bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1 AND company_id = $2)",
		id, companyID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return notFound("%s %d not found", label, id)
	}
	return nil
}
