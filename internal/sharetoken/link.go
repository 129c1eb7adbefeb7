package sharetoken

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidWorkspaceID is returned for addresses whose id is not numeric
var ErrInvalidWorkspaceID = errors.New("invalid workspace id")

// WorkspacePath is the public route of a workspace
func WorkspacePath(workspaceID int64) string {
	return fmt.Sprintf("/workspace/%d", workspaceID)
}

// PlainLink is the shareable public link of a workspace
func PlainLink(origin string, workspaceID int64) string {
	return strings.TrimRight(origin, "/") + WorkspacePath(workspaceID)
}

// SecureLink is the public link carrying a token valid for TTL
func SecureLink(origin string, workspaceID int64, password string, now time.Time) string {
	return PlainLink(origin, workspaceID) + "?token=" + url.QueryEscape(Encode(workspaceID, password, now))
}

// Address is a parsed public route
type Address struct {
	WorkspaceID int64
	Token       string
}

// String renders the address, including the token when present
func (a Address) String() string {
	if a.Token == "" {
		return WorkspacePath(a.WorkspaceID)
	}
	return WorkspacePath(a.WorkspaceID) + "?token=" + url.QueryEscape(a.Token)
}

// ParseAddress accepts a full link, a /workspace/{id}[?token=...] path or a
// bare workspace id.
func ParseAddress(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Address{}, ErrInvalidWorkspaceID
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidWorkspaceID, err)
	}

	path := strings.Trim(u.Path, "/")
	path = strings.TrimPrefix(path, "workspace/")
	if strings.Contains(path, "/") {
		return Address{}, ErrInvalidWorkspaceID
	}

	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil || id <= 0 {
		return Address{}, ErrInvalidWorkspaceID
	}

	return Address{WorkspaceID: id, Token: u.Query().Get("token")}, nil
}
