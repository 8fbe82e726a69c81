// Package memory implements the aggregate repositories over process memory.
// It honours the same keys and constraints as the SQL schema (foreign keys,
// unique branch names, one default branch) but ignores transaction handles:
// writes are visible immediately.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/dbx"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/branches"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/commits"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/repos"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/stars"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/users"
)

type starKey struct{ userID, repoID string }

type store struct {
	mu sync.Mutex

	users         map[string]models.User
	repos         map[string]models.Repository
	branches      map[string]models.Branch
	commits       map[string]models.Commit
	stars         map[starKey]time.Time
	notifications map[string]models.Notification

	failures map[string]error
}

// InMemoryRepositoryManager vends repositories sharing one in-memory store.
type InMemoryRepositoryManager struct {
	s *store
}

var _ repomanager.RepositoryManager = (*InMemoryRepositoryManager)(nil)

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{s: &store{
		users:         make(map[string]models.User),
		repos:         make(map[string]models.Repository),
		branches:      make(map[string]models.Branch),
		commits:       make(map[string]models.Commit),
		stars:         make(map[starKey]time.Time),
		notifications: make(map[string]models.Notification),
		failures:      make(map[string]error),
	}}
}

// FailOn makes the named operation, e.g. "commits.Create", return err until
// cleared with a nil err.
func (m *InMemoryRepositoryManager) FailOn(op string, err error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err == nil {
		delete(m.s.failures, op)
		return
	}
	m.s.failures[op] = err
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return &usersRepo{m.s}
}

func (m *InMemoryRepositoryManager) Repos(dbx.DBTX) repos.Repository {
	return &reposRepo{m.s}
}

func (m *InMemoryRepositoryManager) Branches(dbx.DBTX) branches.Repository {
	return &branchesRepo{m.s}
}

func (m *InMemoryRepositoryManager) Commits(dbx.DBTX) commits.Repository {
	return &commitsRepo{m.s}
}

func (m *InMemoryRepositoryManager) Stars(dbx.DBTX) stars.Repository {
	return &starsRepo{m.s}
}

func (m *InMemoryRepositoryManager) Notifications(dbx.DBTX) notifications.Repository {
	return &notificationsRepo{m.s}
}

// lock acquires the store and reports an injected failure for op, if any.
// The caller must unlock.
func (s *store) lock(op string) error {
	s.mu.Lock()
	return s.failures[op]
}
