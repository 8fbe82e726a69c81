package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/blob"
	"github.com/dmitrijs2005/prodhub/internal/server/config"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/notify"
	"github.com/dmitrijs2005/prodhub/internal/server/repositories/memory"
	"github.com/dmitrijs2005/prodhub/internal/transfer"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type recordingPublisher struct {
	mu   sync.Mutex
	sent []*models.Notification
	next Publisher
}

func (p *recordingPublisher) Publish(ctx context.Context, n *models.Notification) error {
	p.mu.Lock()
	p.sent = append(p.sent, n)
	p.mu.Unlock()
	if p.next != nil {
		return p.next.Publish(ctx, n)
	}
	return nil
}

func (p *recordingPublisher) Sent() []*models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.Notification(nil), p.sent...)
}

// flakyStore fails Put for keys ending in failSuffix.
type flakyStore struct {
	*blob.MemoryStore
	failSuffix string
}

func (f *flakyStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if f.failSuffix != "" && strings.HasSuffix(key, f.failSuffix) {
		return fmt.Errorf("upload interrupted")
	}
	return f.MemoryStore.Put(ctx, key, body, size, contentType)
}

type testEnv struct {
	db    *sql.DB
	mock  sqlmock.Sqlmock
	rm    *memory.InMemoryRepositoryManager
	blobs *flakyStore
	pub   *recordingPublisher
	hub   *notify.Hub

	repos   *RepositoryService
	commits *CommitService
	users   *UserService
	stars   *StarService
	notes   *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logging.NewNopLogger()
	hub := notify.NewHub(8, log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	cfg := &config.Config{}
	cfg.LoadDefaults()

	e := &testEnv{
		db:    db,
		mock:  mock,
		rm:    memory.NewInMemoryRepositoryManager(),
		blobs: &flakyStore{MemoryStore: blob.NewMemoryStore("prodhub")},
		pub:   &recordingPublisher{next: hub},
		hub:   hub,
	}

	clock := newTestClock()
	ids := newTestIDs()

	e.repos = NewRepositoryService(db, e.rm, log)
	e.repos.now, e.repos.newID = clock, ids

	e.commits = NewCommitService(db, e.rm, transfer.NewUploader(e.blobs), e.pub, cfg, log)
	e.commits.now, e.commits.newID = clock, ids

	e.users = NewUserService(db, e.rm, log)
	e.users.now = clock

	e.stars = NewStarService(db, e.rm, e.pub, log)
	e.stars.now, e.stars.newID = clock, ids

	e.notes = NewNotificationService(db, e.rm, hub, log)
	return e
}

func newTestClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func (e *testEnv) expectTx() {
	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
}

func (e *testEnv) expectRollback() {
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
}

func (e *testEnv) verify(t *testing.T) {
	t.Helper()
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func (e *testEnv) profile(t *testing.T, userID, username string) *models.User {
	t.Helper()
	u, err := e.users.CreateProfile(context.Background(), userID, ProfileInput{Email: username + "@example.com", Username: username})
	require.NoError(t, err)
	return u
}

func (e *testEnv) repository(t *testing.T, ownerID, name string, private bool) *models.Repository {
	t.Helper()
	e.expectTx()
	r, err := e.repos.Create(context.Background(), ownerID, CreateRepositoryInput{Name: name, IsPrivate: private})
	require.NoError(t, err)
	return r
}

func (e *testEnv) mainBranch(t *testing.T, repo *models.Repository) *models.Branch {
	t.Helper()
	list, err := e.repos.ListBranches(context.Background(), repo.OwnerID, repo.ID)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	require.True(t, list[0].IsDefault)
	return list[0]
}

func upload(name, contentType, body string) transfer.File {
	return transfer.File{Name: name, Size: int64(len(body)), ContentType: contentType, Body: strings.NewReader(body)}
}
