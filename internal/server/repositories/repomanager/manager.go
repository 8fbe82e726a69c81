package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/branches"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/commits"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repos"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/stars"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/users"
)

// RepositoryManager vends aggregate repositories bound to either the pool
// or a transaction handle.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Repos(db dbx.DBTX) repos.Repository
	Branches(db dbx.DBTX) branches.Repository
	Commits(db dbx.DBTX) commits.Repository
	Stars(db dbx.DBTX) stars.Repository
	Notifications(db dbx.DBTX) notifications.Repository
}
