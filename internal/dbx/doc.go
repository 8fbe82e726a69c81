// Package dbx holds the small database helpers shared by the Postgres
// repositories.
//
// # Handles
//
// DBTX is the subset of database/sql the repositories need. Both *sql.DB and
// *sql.Tx satisfy it, so a repository built over a DBTX runs unchanged
// against the pool or inside a transaction opened by WithTx:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return repomanager.Branches(tx).SetLastCommit(ctx, branchID, commitID)
//	})
//
// WithTx commits when fn returns nil and rolls back on an error or a panic.
//
// # PostgreSQL errors
//
// The classifiers look at the SQLSTATE of a wrapped *pgconn.PgError so
// repositories can translate driver failures into common sentinel errors:
//
//   - IsUniqueViolation (23505)           -> common.ErrorConflict
//   - IsForeignKeyViolation (23503)       -> common.ErrorNotFound
//   - IsInvalidTextRepresentation (22P02) -> common.ErrorNotFound
//
// The last one covers ids that cannot be cast to the column type, such as a
// malformed UUID in a request path. Such an id names no row.
package dbx
