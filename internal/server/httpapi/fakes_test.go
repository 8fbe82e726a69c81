package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/auth"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/notify"
	"github.com/dmitrijs2005/prodhub/internal/server/services"
	"github.com/dmitrijs2005/prodhub/internal/transfer"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeRepositories struct {
	listPublic   func(ctx context.Context, limit int) ([]*models.Repository, error)
	listByOwner  func(ctx context.Context, viewerID, ownerID string) ([]*models.Repository, error)
	get          func(ctx context.Context, viewerID, id string) (*models.Repository, error)
	create       func(ctx context.Context, ownerID string, in services.CreateRepositoryInput) (*models.Repository, error)
	listBranches func(ctx context.Context, viewerID, repoID string) ([]*models.Branch, error)
	createBranch func(ctx context.Context, userID, repoID, name string) (*models.Branch, error)
}

func (f *fakeRepositories) ListPublic(ctx context.Context, limit int) ([]*models.Repository, error) {
	return f.listPublic(ctx, limit)
}
func (f *fakeRepositories) ListByOwner(ctx context.Context, viewerID, ownerID string) ([]*models.Repository, error) {
	return f.listByOwner(ctx, viewerID, ownerID)
}
func (f *fakeRepositories) Get(ctx context.Context, viewerID, id string) (*models.Repository, error) {
	return f.get(ctx, viewerID, id)
}
func (f *fakeRepositories) Create(ctx context.Context, ownerID string, in services.CreateRepositoryInput) (*models.Repository, error) {
	return f.create(ctx, ownerID, in)
}
func (f *fakeRepositories) ListBranches(ctx context.Context, viewerID, repoID string) ([]*models.Branch, error) {
	return f.listBranches(ctx, viewerID, repoID)
}
func (f *fakeRepositories) CreateBranch(ctx context.Context, userID, repoID, name string) (*models.Branch, error) {
	return f.createBranch(ctx, userID, repoID, name)
}

type receivedFile struct {
	transfer.File
	Content string
}

type fakeCommits struct {
	gotUser, gotRepo, gotBranch string
	gotMessage                  string
	gotFiles                    []receivedFile
	err                         error
}

func (f *fakeCommits) ListCommits(ctx context.Context, viewerID, repoID, branchID string) ([]*models.Commit, error) {
	return []*models.Commit{{ID: "c1", RepositoryID: repoID, BranchID: branchID}}, f.err
}

func (f *fakeCommits) GetCommit(ctx context.Context, viewerID, repoID, commitID string) (*models.Commit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Commit{ID: commitID, RepositoryID: repoID}, nil
}

func (f *fakeCommits) CreateCommit(ctx context.Context, userID, repoID, branchID string, in services.CreateCommitInput, onProgress transfer.PercentFunc) (*models.Commit, error) {
	f.gotUser, f.gotRepo, f.gotBranch, f.gotMessage = userID, repoID, branchID, in.Message
	for _, file := range in.Files {
		b, err := io.ReadAll(file.Body)
		if err != nil {
			return nil, err
		}
		f.gotFiles = append(f.gotFiles, receivedFile{File: file, Content: string(b)})
	}
	if f.err != nil {
		return nil, f.err
	}
	if onProgress != nil {
		onProgress(100)
	}
	return &models.Commit{ID: "c1", Message: in.Message, RepositoryID: repoID, BranchID: branchID}, nil
}

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (f *fakeUsers) CreateProfile(ctx context.Context, userID string, in services.ProfileInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := &models.User{ID: userID, Email: in.Email, Username: in.Username}
	f.users[userID] = u
	return u, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID string, in services.ProfileInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, errNotFound
	}
	u.Username = in.Username
	return u, nil
}

type fakeStars struct {
	starred map[string]bool
}

func (f *fakeStars) Star(ctx context.Context, userID, repoID string) (*models.Repository, error) {
	f.starred[userID+"/"+repoID] = true
	return &models.Repository{ID: repoID, Stars: 1}, nil
}

func (f *fakeStars) Unstar(ctx context.Context, userID, repoID string) (*models.Repository, error) {
	delete(f.starred, userID+"/"+repoID)
	return &models.Repository{ID: repoID}, nil
}

func (f *fakeStars) Starred(ctx context.Context, userID, repoID string) (bool, error) {
	return f.starred[userID+"/"+repoID], nil
}

type fakeNotifications struct {
	hub      *notify.Hub
	list     []*models.Notification
	gotLimit int
	marked   []string
}

func (f *fakeNotifications) List(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	f.gotLimit = limit
	return f.list, nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, userID, id string) error {
	for _, n := range f.list {
		if n.ID == id && n.ToUserID == userID {
			f.marked = append(f.marked, id)
			return nil
		}
	}
	return errNotFound
}

func (f *fakeNotifications) Subscribe(ctx context.Context, userID string) (*notify.Subscription, error) {
	return f.hub.Subscribe(ctx, userID)
}

type testAPI struct {
	srv   *httptest.Server
	repos *fakeRepositories
	cm    *fakeCommits
	users *fakeUsers
	stars *fakeStars
	notes *fakeNotifications
	hub   *notify.Hub
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := logging.NewNopLogger()
	hub := notify.NewHub(4, log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()

	a := &testAPI{
		repos: &fakeRepositories{},
		cm:    &fakeCommits{},
		users: &fakeUsers{users: map[string]*models.User{}},
		stars: &fakeStars{starred: map[string]bool{}},
		notes: &fakeNotifications{hub: hub},
		hub:   hub,
	}
	h := NewHandler(Services{
		Repositories:  a.repos,
		Commits:       a.cm,
		Users:         a.users,
		Stars:         a.stars,
		Notifications: a.notes,
	}, testSecret, 1024, log)
	a.srv = httptest.NewServer(h.Routes())

	t.Cleanup(func() {
		a.srv.Close()
		cancel()
		<-done
	})
	return a
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, userID, body string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
