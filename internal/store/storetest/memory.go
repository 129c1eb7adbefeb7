// Package storetest provides an in-memory store.Store that records every call
// and its filter, for tests of code built on the store interface.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

// Op names a store call
type Op string

const (
	ListWorkspaces   Op = "ListWorkspaces"
	InsertWorkspace  Op = "InsertWorkspace"
	UpdateWorkspaces Op = "UpdateWorkspaces"
	DeleteWorkspaces Op = "DeleteWorkspaces"
	ListTodos        Op = "ListTodos"
	InsertTodo       Op = "InsertTodo"
	UpdateTodos      Op = "UpdateTodos"
	DeleteTodos      Op = "DeleteTodos"
)

// Call is one recorded store call
type Call struct {
	Op              Op
	WorkspaceFilter store.WorkspaceFilter
	TodoFilter      store.TodoFilter
	WorkspaceUpdate model.WorkspaceUpdate
	TodoUpdate      model.TodoUpdate
	TodoInsert      model.TodoInsert
}

// Memory is an in-memory store
type Memory struct {
	mu sync.Mutex

	nextWorkspaceID int64
	nextTodoID      int64
	clock           time.Time

	workspaces map[int64]model.Workspace
	todos      map[int64]model.Todo

	calls []Call
	fail  map[Op]error
}

var _ store.Store = (*Memory)(nil)

// New creates an empty store
func New() *Memory {
	return &Memory{
		nextWorkspaceID: 1,
		nextTodoID:      1,
		clock:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		workspaces:      make(map[int64]model.Workspace),
		todos:           make(map[int64]model.Todo),
		fail:            make(map[Op]error),
	}
}

// tick returns strictly increasing creation times
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// Fail makes every call of op return err until cleared with Fail(op, nil)
func (m *Memory) Fail(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// Calls returns the recorded calls
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsOf returns the recorded calls of one op
func (m *Memory) CallsOf(op Op) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets the recorded calls
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// SeedWorkspace stores w as is, assigning id and created_at when unset
func (m *Memory) SeedWorkspace(w model.Workspace) model.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.ID == 0 {
		w.ID = m.nextWorkspaceID
	}
	if w.ID >= m.nextWorkspaceID {
		m.nextWorkspaceID = w.ID + 1
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = m.tick()
	}
	m.workspaces[w.ID] = w
	return w
}

// SeedTodo stores t as is, assigning id and created_at when unset
func (m *Memory) SeedTodo(t model.Todo) model.Todo {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.nextTodoID
	}
	if t.ID >= m.nextTodoID {
		m.nextTodoID = t.ID + 1
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.tick()
	}
	m.todos[t.ID] = t
	return t
}

// Todo returns a stored todo by id
func (m *Memory) Todo(id int64) (model.Todo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[id]
	return t, ok
}

// Workspace returns a stored workspace by id
func (m *Memory) Workspace(id int64) (model.Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workspaces[id]
	return w, ok
}

func (m *Memory) record(c Call) error {
	m.calls = append(m.calls, c)
	return m.fail[c.Op]
}

func matchWorkspace(w model.Workspace, f store.WorkspaceFilter) bool {
	if f.ID != nil && w.ID != *f.ID {
		return false
	}
	if f.OwnerID != nil && w.OwnerID != *f.OwnerID {
		return false
	}
	return true
}

func matchTodo(t model.Todo, f store.TodoFilter) bool {
	if f.ID != nil && t.ID != *f.ID {
		return false
	}
	if f.WorkspaceID != nil && t.WorkspaceID != *f.WorkspaceID {
		return false
	}
	if f.OwnerID != nil && (t.OwnerID == nil || *t.OwnerID != *f.OwnerID) {
		return false
	}
	return true
}

func (m *Memory) ListWorkspaces(_ context.Context, f store.WorkspaceFilter) ([]model.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: ListWorkspaces, WorkspaceFilter: f}); err != nil {
		return nil, err
	}

	var out []model.Workspace
	for _, w := range m.workspaces {
		if matchWorkspace(w, f) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) InsertWorkspace(_ context.Context, in model.WorkspaceInsert) (model.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: InsertWorkspace}); err != nil {
		return model.Workspace{}, err
	}

	w := model.Workspace{
		ID:        m.nextWorkspaceID,
		Name:      in.Name,
		OwnerID:   in.OwnerID,
		CreatedAt: m.tick(),
		IsPublic:  in.IsPublic,
		Password:  in.Password,
	}
	m.nextWorkspaceID++
	m.workspaces[w.ID] = w
	return w, nil
}

func (m *Memory) UpdateWorkspaces(_ context.Context, f store.WorkspaceFilter, upd model.WorkspaceUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: UpdateWorkspaces, WorkspaceFilter: f, WorkspaceUpdate: upd}); err != nil {
		return err
	}

	for id, w := range m.workspaces {
		if !matchWorkspace(w, f) {
			continue
		}
		if upd.Name != nil {
			w.Name = upd.Name
		}
		if upd.IsPublic != nil {
			w.IsPublic = upd.IsPublic
		}
		if upd.ClearPassword {
			w.Password = nil
		} else if upd.Password != nil {
			w.Password = upd.Password
		}
		m.workspaces[id] = w
	}
	return nil
}

func (m *Memory) DeleteWorkspaces(_ context.Context, f store.WorkspaceFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: DeleteWorkspaces, WorkspaceFilter: f}); err != nil {
		return err
	}

	for id, w := range m.workspaces {
		if !matchWorkspace(w, f) {
			continue
		}
		delete(m.workspaces, id)
		for tid, t := range m.todos {
			if t.WorkspaceID == id {
				delete(m.todos, tid)
			}
		}
	}
	return nil
}

func (m *Memory) ListTodos(_ context.Context, f store.TodoFilter) ([]model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: ListTodos, TodoFilter: f}); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var out []model.Todo
	for _, t := range m.todos {
		if matchTodo(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) InsertTodo(_ context.Context, in model.TodoInsert) (model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: InsertTodo, TodoInsert: in}); err != nil {
		return model.Todo{}, err
	}
	if _, ok := m.workspaces[in.WorkspaceID]; !ok {
		return model.Todo{}, store.ErrNotFound
	}

	t := model.Todo{
		ID:          m.nextTodoID,
		Text:        in.Text,
		CreatedAt:   m.tick(),
		OwnerID:     in.OwnerID,
		WorkspaceID: in.WorkspaceID,
	}
	m.nextTodoID++
	m.todos[t.ID] = t
	return t, nil
}

func (m *Memory) UpdateTodos(_ context.Context, f store.TodoFilter, upd model.TodoUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: UpdateTodos, TodoFilter: f, TodoUpdate: upd}); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}

	for id, t := range m.todos {
		if !matchTodo(t, f) {
			continue
		}
		if upd.Text != nil {
			t.Text = *upd.Text
		}
		if upd.Completed != nil {
			t.Completed = *upd.Completed
		}
		m.todos[id] = t
	}
	return nil
}

func (m *Memory) DeleteTodos(_ context.Context, f store.TodoFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Op: DeleteTodos, TodoFilter: f}); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}

	for id, t := range m.todos {
		if matchTodo(t, f) {
			delete(m.todos, id)
		}
	}
	return nil
}
