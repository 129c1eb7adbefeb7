// Package remote talks to the toedo server. Client implements store.Store
// over the table API and wraps the sign-in endpoints.
package remote

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

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

// HeaderWorkspacePassword carries a remembered workspace password
const HeaderWorkspacePassword = "X-Workspace-Password"

// Credentials looks up a remembered workspace password
type Credentials interface {
	Password(ctx context.Context, workspaceID int64) (string, bool)
}

// Client is the HTTP client of the toedo server
type Client struct {
	baseURL    string
	token      string
	creds      Credentials
	httpClient *http.Client
}

var _ store.Store = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithToken authenticates requests with a session token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithCredentials attaches remembered workspace passwords to todo requests
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// New creates a client of the server at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the session token
func (c *Client) SetToken(token string) {
	c.token = token
}

// Error is a non-2xx response
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto the store sentinels
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return store.ErrUnauthorized
	case http.StatusForbidden:
		return store.ErrForbidden
	case http.StatusNotFound:
		return store.ErrNotFound
	case http.StatusConflict:
		return store.ErrDuplicate
	}
	return nil
}

type call struct {
	method      string
	path        string
	query       url.Values
	body        any
	workspaceID int64
	out         any
}

func (c *Client) do(ctx context.Context, r call) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return err
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if r.workspaceID > 0 && c.creds != nil {
		if pw, ok := c.creds.Password(ctx, r.workspaceID); ok {
			req.Header.Set(HeaderWorkspacePassword, pw)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("API call",
		logger.F("method", r.method),
		logger.F("path", r.path),
		logger.F("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if r.out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func workspaceQuery(f store.WorkspaceFilter) url.Values {
	q := url.Values{}
	if f.ID != nil {
		q.Set("id", strconv.FormatInt(*f.ID, 10))
	}
	if f.OwnerID != nil {
		q.Set("owner_id", *f.OwnerID)
	}
	return q
}

func todoQuery(f store.TodoFilter) url.Values {
	q := url.Values{}
	if f.ID != nil {
		q.Set("id", strconv.FormatInt(*f.ID, 10))
	}
	if f.WorkspaceID != nil {
		q.Set("workspace_id", strconv.FormatInt(*f.WorkspaceID, 10))
	}
	if f.OwnerID != nil {
		q.Set("owner_id", *f.OwnerID)
	}
	return q
}

func (c *Client) ListWorkspaces(ctx context.Context, f store.WorkspaceFilter) ([]model.Workspace, error) {
	var rows []model.Workspace
	err := c.do(ctx, call{method: http.MethodGet, path: "/rest/v1/workspace", query: workspaceQuery(f), out: &rows})
	return rows, err
}

func (c *Client) InsertWorkspace(ctx context.Context, in model.WorkspaceInsert) (model.Workspace, error) {
	var ws model.Workspace
	err := c.do(ctx, call{method: http.MethodPost, path: "/rest/v1/workspace", body: in, out: &ws})
	return ws, err
}

func (c *Client) UpdateWorkspaces(ctx context.Context, f store.WorkspaceFilter, upd model.WorkspaceUpdate) error {
	return c.do(ctx, call{method: http.MethodPatch, path: "/rest/v1/workspace", query: workspaceQuery(f), body: upd})
}

func (c *Client) DeleteWorkspaces(ctx context.Context, f store.WorkspaceFilter) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/rest/v1/workspace", query: workspaceQuery(f)})
}

func (c *Client) ListTodos(ctx context.Context, f store.TodoFilter) ([]model.Todo, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var rows []model.Todo
	err := c.do(ctx, call{method: http.MethodGet, path: "/rest/v1/todo", query: todoQuery(f), workspaceID: *f.WorkspaceID, out: &rows})
	return rows, err
}

func (c *Client) InsertTodo(ctx context.Context, in model.TodoInsert) (model.Todo, error) {
	if in.WorkspaceID <= 0 {
		return model.Todo{}, store.ErrUnscoped
	}
	var t model.Todo
	err := c.do(ctx, call{method: http.MethodPost, path: "/rest/v1/todo", body: in, workspaceID: in.WorkspaceID, out: &t})
	return t, err
}

func (c *Client) UpdateTodos(ctx context.Context, f store.TodoFilter, upd model.TodoUpdate) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodPatch, path: "/rest/v1/todo", query: todoQuery(f), body: upd, workspaceID: *f.WorkspaceID})
}

func (c *Client) DeleteTodos(ctx context.Context, f store.TodoFilter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodDelete, path: "/rest/v1/todo", query: todoQuery(f), workspaceID: *f.WorkspaceID})
}

// IsUnauthorized reports whether err means the session is gone
func IsUnauthorized(err error) bool {
	return errors.Is(err, store.ErrUnauthorized)
}
