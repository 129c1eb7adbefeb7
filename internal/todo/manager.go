// Package todo manages the items of one workspace. Every call carries the
// workspace_id predicate; the owned route adds owner_id as well.
package todo

import (
	"context"
	"errors"
	"strings"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/store"
)

// ErrInvalidWorkspace is returned before any store call when no workspace
// is given
var ErrInvalidWorkspace = errors.New("invalid workspace id")

// Manager is the CRUD surface over todos
type Manager struct {
	store    store.TodoStore
	ownerID  *string
	notifier notify.Notifier
}

// NewOwned creates a manager for the signed-in owner's route. Todos it adds
// carry ownerID and every filter includes it.
func NewOwned(s store.TodoStore, ownerID string, n notify.Notifier) *Manager {
	m := NewPublic(s, n)
	m.ownerID = &ownerID
	return m
}

// NewPublic creates a manager for the public route. Todos it adds have no
// owner.
func NewPublic(s store.TodoStore, n notify.Notifier) *Manager {
	if n == nil {
		n = notify.Discard
	}
	return &Manager{store: s, notifier: n}
}

func (m *Manager) filter(workspaceID int64) store.TodoFilter {
	return store.TodoFilter{WorkspaceID: &workspaceID, OwnerID: m.ownerID}
}

func (m *Manager) rowFilter(id, workspaceID int64) store.TodoFilter {
	f := m.filter(workspaceID)
	f.ID = &id
	return f
}

// List returns the workspace's todos, newest first. It does not notify;
// callers polling the list decide when a failure is worth showing.
func (m *Manager) List(ctx context.Context, workspaceID int64) ([]model.Todo, error) {
	if workspaceID <= 0 {
		return nil, ErrInvalidWorkspace
	}
	return m.store.ListTodos(ctx, m.filter(workspaceID))
}

// Fetcher binds List to one workspace for a poll.Refresher
func (m *Manager) Fetcher(workspaceID int64) func(ctx context.Context) ([]model.Todo, error) {
	return func(ctx context.Context) ([]model.Todo, error) {
		return m.List(ctx, workspaceID)
	}
}

// Add stores a new todo with trimmed text. Blank text is ignored: it returns
// nil, nil without a store call.
func (m *Manager) Add(ctx context.Context, workspaceID int64, text string) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if workspaceID <= 0 {
		m.notifier.Notify(notify.Errorf("Error", "Invalid workspace"))
		return nil, ErrInvalidWorkspace
	}

	t, err := m.store.InsertTodo(ctx, model.TodoInsert{
		Text:        text,
		OwnerID:     m.ownerID,
		WorkspaceID: workspaceID,
	})
	if err != nil {
		logger.Warn("Failed to add todo", logger.F("workspace_id", workspaceID), logger.F("error", err))
		m.notifier.Notify(notify.Errorf("Error", "Could not add todo"))
		return nil, err
	}

	m.notifier.Notify(notify.Successf("Success", "Todo added"))
	return &t, nil
}

// Toggle flips a todo's completed flag. The write is scoped by both the todo
// id and the workspace id.
func (m *Manager) Toggle(ctx context.Context, id, workspaceID int64, current bool) error {
	if workspaceID <= 0 {
		m.notifier.Notify(notify.Errorf("Error", "Invalid workspace"))
		return ErrInvalidWorkspace
	}

	completed := !current
	if err := m.store.UpdateTodos(ctx, m.rowFilter(id, workspaceID), model.TodoUpdate{Completed: &completed}); err != nil {
		logger.Warn("Failed to update todo", logger.F("todo_id", id), logger.F("error", err))
		m.notifier.Notify(notify.Errorf("Error", "Could not update todo"))
		return err
	}

	msg := "Todo reopened"
	if completed {
		msg = "Todo completed"
	}
	m.notifier.Notify(notify.Successf("Success", msg))
	return nil
}

// Remove deletes a todo, scoped like Toggle
func (m *Manager) Remove(ctx context.Context, id, workspaceID int64) error {
	if workspaceID <= 0 {
		m.notifier.Notify(notify.Errorf("Error", "Invalid workspace"))
		return ErrInvalidWorkspace
	}

	if err := m.store.DeleteTodos(ctx, m.rowFilter(id, workspaceID)); err != nil {
		logger.Warn("Failed to delete todo", logger.F("todo_id", id), logger.F("error", err))
		m.notifier.Notify(notify.Errorf("Error", "Could not delete todo"))
		return err
	}

	m.notifier.Notify(notify.Successf("Success", "Todo deleted"))
	return nil
}
