// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/server/migrations"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/branches"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/commits"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repos"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/stars"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Repos returns a repos.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Repos(db dbx.DBTX) repos.Repository {
	return repos.NewPostgresRepository(db)
}

// Branches returns a branches.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Branches(db dbx.DBTX) branches.Repository {
	return branches.NewPostgresRepository(db)
}

// Commits returns a commits.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Commits(db dbx.DBTX) commits.Repository {
	return commits.NewPostgresRepository(db)
}

// Stars returns a stars.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Stars(db dbx.DBTX) stars.Repository {
	return stars.NewPostgresRepository(db)
}

// Notifications returns a notifications.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
