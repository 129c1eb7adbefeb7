// Package store describes the remote data store: two collections, workspace
// and todo, reachable through filtered read/insert/update/delete calls.
package store

import (
	"context"
	"errors"

	"github.com/existflow/toedo/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("access denied")
	ErrUnauthorized = errors.New("not signed in")
	ErrUnscoped     = errors.New("todo access requires a workspace_id predicate")
)

// WorkspaceFilter selects workspace rows. Set fields are ANDed equality
// predicates.
type WorkspaceFilter struct {
	ID      *int64
	OwnerID *string
}

// TodoFilter selects todo rows. Set fields are ANDed equality predicates.
type TodoFilter struct {
	ID          *int64
	WorkspaceID *int64
	OwnerID     *string
}

// Validate refuses filters that are not scoped to a workspace
func (f TodoFilter) Validate() error {
	if f.WorkspaceID == nil {
		return ErrUnscoped
	}
	return nil
}

// WorkspaceStore is the workspace collection
type WorkspaceStore interface {
	// ListWorkspaces returns matching rows ordered by created_at ascending
	ListWorkspaces(ctx context.Context, f WorkspaceFilter) ([]model.Workspace, error)
	InsertWorkspace(ctx context.Context, in model.WorkspaceInsert) (model.Workspace, error)
	UpdateWorkspaces(ctx context.Context, f WorkspaceFilter, upd model.WorkspaceUpdate) error
	DeleteWorkspaces(ctx context.Context, f WorkspaceFilter) error
}

// TodoStore is the todo collection
type TodoStore interface {
	// ListTodos returns matching rows ordered by created_at descending
	ListTodos(ctx context.Context, f TodoFilter) ([]model.Todo, error)
	InsertTodo(ctx context.Context, in model.TodoInsert) (model.Todo, error)
	UpdateTodos(ctx context.Context, f TodoFilter, upd model.TodoUpdate) error
	DeleteTodos(ctx context.Context, f TodoFilter) error
}

// Store is the whole remote data store
type Store interface {
	WorkspaceStore
	TodoStore
}

// GetWorkspace fetches a single workspace by id
func GetWorkspace(ctx context.Context, s WorkspaceStore, id int64) (*model.Workspace, error) {
	rows, err := s.ListWorkspaces(ctx, WorkspaceFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}
