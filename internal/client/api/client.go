// Package api is a small HTTP client for the ProdHub API used by prodhubctl.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

// Client talks to one ProdHub server on behalf of one token holder.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
}

// New builds a Client. timeout bounds every call except uploads, which may
// legitimately run for a long time.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
		timeout: timeout,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorKinds = map[string]error{
	"validation_error": common.ErrorValidation,
	"unauthorized":     common.ErrorUnauthorized,
	"forbidden":        common.ErrorForbidden,
	"not_found":        common.ErrorNotFound,
	"conflict":         common.ErrorConflict,
}

// decodeError turns an error response into an error matching the common
// sentinels, so callers can use errors.Is across the wire.
func decodeError(resp *http.Response) error {
	var body errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return fmt.Errorf("%w: server returned %s", common.ErrorInternal, resp.Status)
	}
	if sentinel, ok := errorKinds[body.Error]; ok {
		return fmt.Errorf("%w: %s", sentinel, body.Message)
	}
	return fmt.Errorf("%w: %s", common.ErrorInternal, body.Message)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends req and decodes a JSON success body into out (if non-nil).
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) ListPublic(ctx context.Context, limit int) ([]models.Repository, error) {
	path := "/api/repositories"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []models.Repository
	return out, c.call(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) ListByOwner(ctx context.Context, userID string) ([]models.Repository, error) {
	var out []models.Repository
	return out, c.call(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID)+"/repositories", nil, &out)
}

func (c *Client) GetRepository(ctx context.Context, repoID string) (*models.Repository, error) {
	var out models.Repository
	if err := c.call(ctx, http.MethodGet, "/api/repositories/"+url.PathEscape(repoID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRepository(ctx context.Context, in CreateRepositoryInput) (*models.Repository, error) {
	var out models.Repository
	if err := c.call(ctx, http.MethodPost, "/api/repositories", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBranches(ctx context.Context, repoID string) ([]models.Branch, error) {
	var out []models.Branch
	return out, c.call(ctx, http.MethodGet, "/api/repositories/"+url.PathEscape(repoID)+"/branches", nil, &out)
}

func (c *Client) ListCommits(ctx context.Context, repoID, branchID string) ([]models.Commit, error) {
	var out []models.Commit
	path := "/api/repositories/" + url.PathEscape(repoID) + "/branches/" + url.PathEscape(branchID) + "/commits"
	return out, c.call(ctx, http.MethodGet, path, nil, &out)
}

// DefaultBranch returns the repository's default branch.
func (c *Client) DefaultBranch(ctx context.Context, repoID string) (*models.Branch, error) {
	list, err := c.ListBranches(ctx, repoID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].IsDefault {
			return &list[i], nil
		}
	}
	return nil, errors.New("repository has no default branch")
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.call(ctx, http.MethodGet, "/api/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProfile(ctx context.Context, in ProfileInput) (*models.User, error) {
	var out models.User
	if err := c.call(ctx, http.MethodPost, "/api/users/me", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
