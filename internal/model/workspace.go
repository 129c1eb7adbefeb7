package model

import (
	"strings"
	"time"
)

// PlaceholderName is shown for, and assigned to, workspaces without a name
const PlaceholderName = "My Workspace"

// Workspace is an owned container of todos and the unit of sharing
type Workspace struct {
	ID        int64     `json:"id" db:"id"`
	Name      *string   `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	IsPublic  *bool     `json:"is_public" db:"is_public"`
	Password  *string   `json:"password,omitempty" db:"password"` // plaintext
}

// DisplayName returns the name, or the placeholder when it is absent or blank
func (w Workspace) DisplayName() string {
	if w.Name == nil || strings.TrimSpace(*w.Name) == "" {
		return PlaceholderName
	}
	return *w.Name
}

// Public reports whether the workspace is reachable via its public route.
// A null flag reads as false.
func (w Workspace) Public() bool {
	return w.IsPublic != nil && *w.IsPublic
}

// HasPassword reports whether the public route is password protected
func (w Workspace) HasPassword() bool {
	return w.Password != nil && *w.Password != ""
}

// WorkspaceInsert is the payload for creating a workspace
type WorkspaceInsert struct {
	Name     *string `json:"name,omitempty"`
	OwnerID  string  `json:"owner_id,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
	Password *string `json:"password,omitempty"`
}

// WorkspaceUpdate holds the columns to change. Nil fields are left alone;
// ClearPassword sets the password column to null.
type WorkspaceUpdate struct {
	Name          *string `json:"name,omitempty"`
	IsPublic      *bool   `json:"is_public,omitempty"`
	Password      *string `json:"password,omitempty"`
	ClearPassword bool    `json:"clear_password,omitempty"`
}

// Empty reports whether the update would not change anything
func (u WorkspaceUpdate) Empty() bool {
	return u.Name == nil && u.IsPublic == nil && u.Password == nil && !u.ClearPassword
}

// String returns a pointer to s
func String(s string) *string { return &s }

// Bool returns a pointer to b
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to n
func Int64(n int64) *int64 { return &n }
