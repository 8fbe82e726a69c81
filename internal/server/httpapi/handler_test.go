package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/notify"
	"github.com/dmitrijs2005/prodhub/internal/server/services"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = fmt.Errorf("%w: no such thing", common.ErrorNotFound)

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t)
	resp := a.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{fmt.Errorf("x: %w", common.ErrorValidation), http.StatusBadRequest, "validation_error"},
		{&http.MaxBytesError{Limit: 1}, http.StatusBadRequest, "validation_error"},
		{common.ErrorUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{common.ErrTokenExpired, http.StatusUnauthorized, "unauthorized"},
		{common.ErrorForbidden, http.StatusForbidden, "forbidden"},
		{errNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("insert: %w", common.ErrorConflict), http.StatusConflict, "conflict"},
		{notify.ErrHubStopped, http.StatusServiceUnavailable, "unavailable"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		status, kind := errorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.kind, kind, tt.err.Error())
	}
}

func TestListPublicRepositories(t *testing.T) {
	a := newTestAPI(t)
	var gotLimit int
	a.repos.listPublic = func(ctx context.Context, limit int) ([]*models.Repository, error) {
		gotLimit = limit
		return []*models.Repository{{ID: "r1", Name: "Night Drive"}}, nil
	}

	resp := a.do(t, http.MethodGet, "/api/repositories?limit=5", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	list := decode[[]models.Repository](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Night Drive", list[0].Name)
	assert.Equal(t, 5, gotLimit)

	resp = a.do(t, http.MethodGet, "/api/repositories?limit=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "validation_error", body.Error)
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	a := newTestAPI(t)
	a.repos.listPublic = func(ctx context.Context, limit int) ([]*models.Repository, error) {
		return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
	}

	resp := a.do(t, http.MethodGet, "/api/repositories", "", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "internal_error", body.Error)
	assert.NotContains(t, body.Message, "10.0.0.5")
}

func TestGetRepository_ViewerFromToken(t *testing.T) {
	a := newTestAPI(t)
	var gotViewer string
	a.repos.get = func(ctx context.Context, viewerID, id string) (*models.Repository, error) {
		gotViewer = viewerID
		if id != "r1" {
			return nil, errNotFound
		}
		return &models.Repository{ID: id}, nil
	}

	resp := a.do(t, http.MethodGet, "/api/repositories/r1", "u1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", gotViewer)

	resp = a.do(t, http.MethodGet, "/api/repositories/r1", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", gotViewer)

	req, err := http.NewRequest(http.MethodGet, a.srv.URL+"/api/repositories/r1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = a.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "bad tokens on public reads fall back to anonymous")
	assert.Equal(t, "", gotViewer)

	resp = a.do(t, http.MethodGet, "/api/repositories/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, resp).Error)
}

func TestCreateRepository(t *testing.T) {
	a := newTestAPI(t)
	var got services.CreateRepositoryInput
	var owner string
	a.repos.create = func(ctx context.Context, ownerID string, in services.CreateRepositoryInput) (*models.Repository, error) {
		owner, got = ownerID, in
		return &models.Repository{ID: "r1", Name: in.Name, OwnerID: ownerID, BPM: in.BPM}, nil
	}

	resp := a.do(t, http.MethodPost, "/api/repositories", "", `{"name":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/repositories", "u1", `{"name":"Night Drive","isPrivate":true,"bpm":140}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u1", owner)
	assert.Equal(t, "Night Drive", got.Name)
	assert.True(t, got.IsPrivate)
	require.NotNil(t, got.BPM)
	assert.Equal(t, 140, *got.BPM)

	resp = a.do(t, http.MethodPost, "/api/repositories", "u1", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAccessTokenHeader(t *testing.T) {
	a := newTestAPI(t)
	a.repos.create = func(ctx context.Context, ownerID string, in services.CreateRepositoryInput) (*models.Repository, error) {
		return &models.Repository{ID: "r1", OwnerID: ownerID}, nil
	}

	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/api/repositories", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, err)
	req.Header.Set(common.AccessTokenHeaderName, token(t, "u7"))
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u7", decode[models.Repository](t, resp).OwnerID)

	req, err = http.NewRequest(http.MethodPost, a.srv.URL+"/api/repositories?access_token="+token(t, "u7"), strings.NewReader(`{"name":"x"}`))
	require.NoError(t, err)
	resp2, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode, "query tokens are only accepted on the stream")
}

func TestBranches(t *testing.T) {
	a := newTestAPI(t)
	a.repos.listBranches = func(ctx context.Context, viewerID, repoID string) ([]*models.Branch, error) {
		return []*models.Branch{{ID: "b1", Name: "main", RepositoryID: repoID, IsDefault: true}}, nil
	}
	a.repos.createBranch = func(ctx context.Context, userID, repoID, name string) (*models.Branch, error) {
		if userID != "u1" {
			return nil, common.ErrorForbidden
		}
		if name == "main" {
			return nil, fmt.Errorf("create branch: %w", common.ErrorConflict)
		}
		return &models.Branch{ID: "b2", Name: name, RepositoryID: repoID}, nil
	}

	resp := a.do(t, http.MethodGet, "/api/repositories/r1/branches", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]models.Branch](t, resp)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault)

	resp = a.do(t, http.MethodPost, "/api/repositories/r1/branches", "u1", `{"name":"drums"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = a.do(t, http.MethodPost, "/api/repositories/r1/branches", "u1", `{"name":"main"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = a.do(t, http.MethodPost, "/api/repositories/r1/branches", "u2", `{"name":"drums"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func multipartCommit(t *testing.T, message string, files map[string]string, paths []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("message", message))

	names := []string{"beat.flp", "kick.wav"}
	types := map[string]string{"beat.flp": "", "kick.wav": "audio/wav"}
	for _, name := range names {
		body, ok := files[name]
		if !ok {
			continue
		}
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
		if ct := types[name]; ct != "" {
			hdr.Set("Content-Type", ct)
		}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte(body))
		require.NoError(t, err)
	}
	for _, p := range paths {
		require.NoError(t, mw.WriteField("paths", p))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postCommit(t *testing.T, a *testAPI, userID string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/api/repositories/r1/branches/b1/commits", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token(t, userID))
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateCommit_Multipart(t *testing.T) {
	a := newTestAPI(t)
	body, ct := multipartCommit(t, "Beat 1", map[string]string{"beat.flp": "FLhd", "kick.wav": "RIFF"}, nil)

	resp := postCommit(t, a, "u1", body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	c := decode[models.Commit](t, resp)
	assert.Equal(t, "Beat 1", c.Message)

	assert.Equal(t, "u1", a.cm.gotUser)
	assert.Equal(t, "r1", a.cm.gotRepo)
	assert.Equal(t, "b1", a.cm.gotBranch)
	require.Len(t, a.cm.gotFiles, 2)
	assert.Equal(t, "beat.flp", a.cm.gotFiles[0].Name)
	assert.Equal(t, "", a.cm.gotFiles[0].ContentType)
	assert.Equal(t, "FLhd", a.cm.gotFiles[0].Content)
	assert.Equal(t, int64(4), a.cm.gotFiles[0].Size)
	assert.Equal(t, "audio/wav", a.cm.gotFiles[1].ContentType)
}

func TestCreateCommit_RelativePaths(t *testing.T) {
	a := newTestAPI(t)
	body, ct := multipartCommit(t, "folder", map[string]string{"beat.flp": "FLhd", "kick.wav": "RIFF"},
		[]string{"Night Drive/beat.flp", "Night Drive/Audio/kick.wav"})

	resp := postCommit(t, a, "u1", body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, a.cm.gotFiles, 2)
	assert.Equal(t, "Night Drive/Audio/kick.wav", a.cm.gotFiles[1].RelativePath)
	assert.Empty(t, a.cm.gotFiles[1].Name)
}

func TestCreateCommit_BadRequests(t *testing.T) {
	a := newTestAPI(t)

	body, ct := multipartCommit(t, "m", map[string]string{"beat.flp": "x", "kick.wav": "y"}, []string{"only-one"})
	resp := postCommit(t, a, "u1", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postCommit(t, a, "u1", bytes.NewBufferString(`{"message":"m"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	a.cm.err = fmt.Errorf("%w: file too big", common.ErrorValidation)
	body, ct = multipartCommit(t, "m", map[string]string{"kick.wav": "y"}, nil)
	resp = postCommit(t, a, "u1", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCommitsRead(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodGet, "/api/repositories/r1/branches/b1/commits", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]models.Commit](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "b1", list[0].BranchID)

	resp = a.do(t, http.MethodGet, "/api/repositories/r1/commits/c9", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "c9", decode[models.Commit](t, resp).ID)
}

func TestProfiles(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodPost, "/api/users/me", "u1", `{"email":"a@example.com","username":"alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/users/u1", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	public := decode[models.User](t, resp)
	assert.Equal(t, "alice", public.Username)
	assert.Empty(t, public.Email)

	resp = a.do(t, http.MethodGet, "/api/users/me", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@example.com", decode[models.User](t, resp).Email)

	resp = a.do(t, http.MethodGet, "/api/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(t, http.MethodPut, "/api/users/me", "u1", `{"username":"alice2"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice2", decode[models.User](t, resp).Username)

	resp = a.do(t, http.MethodPut, "/api/users/me", "ghost", `{"username":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStars(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodPut, "/api/repositories/r1/star", "u2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[models.Repository](t, resp).Stars)

	resp = a.do(t, http.MethodGet, "/api/repositories/r1/star", "u2", "")
	assert.True(t, decode[map[string]bool](t, resp)["starred"])

	resp = a.do(t, http.MethodDelete, "/api/repositories/r1/star", "u2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/repositories/r1/star", "u2", "")
	assert.False(t, decode[map[string]bool](t, resp)["starred"])

	resp = a.do(t, http.MethodPut, "/api/repositories/r1/star", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotifications(t *testing.T) {
	a := newTestAPI(t)
	a.notes.list = []*models.Notification{{ID: "n1", ToUserID: "u1", Message: "bob starred Night Drive"}}

	resp := a.do(t, http.MethodGet, "/api/notifications?limit=20", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Notification](t, resp), 1)
	assert.Equal(t, 20, a.notes.gotLimit)

	resp = a.do(t, http.MethodPost, "/api/notifications/n1/read", "u1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"n1"}, a.notes.marked)

	resp = a.do(t, http.MethodPost, "/api/notifications/n1/read", "u2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/notifications", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotificationStream(t *testing.T) {
	a := newTestAPI(t)
	wsURL := "ws" + strings.TrimPrefix(a.srv.URL, "http") + "/api/notifications/stream"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?access_token="+token(t, "u1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	n := &models.Notification{ID: "n1", ToUserID: "u1", Type: models.NotificationStar, Message: "bob starred Night Drive"}
	// The subscription is registered before the upgrade completes, so the
	// first publish after Dial returns is delivered.
	require.NoError(t, a.hub.Publish(context.Background(), &models.Notification{ID: "other", ToUserID: "u2"}))
	require.NoError(t, a.hub.Publish(context.Background(), n))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.Notification
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "n1", got.ID)
	assert.Equal(t, "bob starred Night Drive", got.Message)
}
