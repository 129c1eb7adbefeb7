package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/existflow/toedo/internal/model"
)

// AuthResult is a signed-in session as returned by the server
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
}

// Register creates a new account and signs in
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.signIn(ctx, "/api/v1/register", email, password)
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.signIn(ctx, "/api/v1/login", email, password)
}

func (c *Client) signIn(ctx context.Context, path, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   path,
		body:   map[string]string{"email": email, "password": password},
		out:    &res,
	})
	if err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Logout ends the current session on the server
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/v1/logout"})
	c.token = ""
	return err
}

// Me returns the signed-in user
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/v1/me", out: &u}); err != nil {
		return nil, err
	}
	return &u, nil
}

// RequestMagicLink asks for a passwordless sign-in link. The returned token
// is only non-empty when the server exposes it.
func (c *Client) RequestMagicLink(ctx context.Context, email string) (string, error) {
	var res struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/v1/magic-link",
		body:   map[string]string{"email": email},
		out:    &res,
	})
	if err != nil {
		return "", err
	}
	return res.Token, nil
}

// VerifyMagicLink exchanges a magic link token for a session
func (c *Client) VerifyMagicLink(ctx context.Context, token string) (*AuthResult, error) {
	if token == "" {
		return nil, fmt.Errorf("magic link token required")
	}
	var res AuthResult
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/v1/magic-link/" + url.PathEscape(token), out: &res}); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Health checks that the server is reachable
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodGet, path: "/health"})
}
