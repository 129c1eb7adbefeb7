// Package workspace manages the signed-in user's workspaces. Every read and
// write carries the owner_id predicate.
package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/sharetoken"
	"github.com/existflow/toedo/internal/store"
)

var (
	ErrEmptyName        = errors.New("workspace name cannot be empty")
	ErrLastWorkspace    = errors.New("cannot delete the last workspace")
	ErrNoPassword       = errors.New("workspace has no password")
	ErrUnknownWorkspace = errors.New("workspace not found")
)

// Manager is the CRUD surface over one owner's workspaces. It remembers the
// last listed workspaces and which one is selected.
type Manager struct {
	store    store.WorkspaceStore
	ownerID  string
	notifier notify.Notifier

	mu           sync.Mutex
	workspaces   []model.Workspace
	loaded       bool
	bootstrapped bool
	selected     *int64
	onSelect     func(*model.Workspace)
}

// NewManager creates a manager for ownerID
func NewManager(s store.WorkspaceStore, ownerID string, n notify.Notifier) *Manager {
	if n == nil {
		n = notify.Discard
	}
	return &Manager{store: s, ownerID: ownerID, notifier: n}
}

func (m *Manager) ownerFilter() store.WorkspaceFilter {
	owner := m.ownerID
	return store.WorkspaceFilter{OwnerID: &owner}
}

func (m *Manager) rowFilter(id int64) store.WorkspaceFilter {
	f := m.ownerFilter()
	f.ID = &id
	return f
}

// OnSelect registers a callback run whenever the selection changes
func (m *Manager) OnSelect(fn func(*model.Workspace)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSelect = fn
}

// List returns the owner's workspaces, oldest first. The first successful
// list that comes back empty creates a placeholder workspace.
func (m *Manager) List(ctx context.Context) ([]model.Workspace, error) {
	rows, err := m.store.ListWorkspaces(ctx, m.ownerFilter())
	if err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Could not load workspaces"))
		return nil, err
	}

	m.mu.Lock()
	bootstrap := len(rows) == 0 && !m.bootstrapped
	m.bootstrapped = true
	m.mu.Unlock()

	if bootstrap {
		logger.Info("No workspaces yet, creating default", logger.F("owner_id", m.ownerID))
		ws, err := m.insert(ctx, model.PlaceholderName)
		if err != nil {
			m.notifier.Notify(notify.Errorf("Error", "Could not create a workspace"))
			return nil, err
		}
		rows = []model.Workspace{ws}
	}

	m.mu.Lock()
	m.workspaces = rows
	m.loaded = true
	changed := m.reconcileSelectionLocked()
	out := m.snapshotLocked()
	m.mu.Unlock()

	if changed {
		m.fireSelect()
	}
	return out, nil
}

// Workspaces returns the last listed workspaces without a store call
func (m *Manager) Workspaces() []model.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() []model.Workspace {
	out := make([]model.Workspace, len(m.workspaces))
	copy(out, m.workspaces)
	return out
}

// reconcileSelectionLocked keeps the selection pointing at a listed
// workspace, falling back to the first one. Reports whether it changed.
func (m *Manager) reconcileSelectionLocked() bool {
	if m.selected != nil && m.indexLocked(*m.selected) >= 0 {
		return false
	}
	prev := m.selected
	if len(m.workspaces) > 0 {
		id := m.workspaces[0].ID
		m.selected = &id
	} else {
		m.selected = nil
	}
	return prev != nil || m.selected != nil
}

func (m *Manager) indexLocked(id int64) int {
	for i, w := range m.workspaces {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) insert(ctx context.Context, name string) (model.Workspace, error) {
	return m.store.InsertWorkspace(ctx, model.WorkspaceInsert{
		Name:     &name,
		OwnerID:  m.ownerID,
		IsPublic: model.Bool(false),
	})
}

// Create adds a workspace and selects it. A blank name becomes the
// placeholder.
func (m *Manager) Create(ctx context.Context, name string) (*model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.PlaceholderName
	}

	ws, err := m.insert(ctx, name)
	if err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Could not create workspace"))
		return nil, err
	}

	m.mu.Lock()
	m.workspaces = append(m.workspaces, ws)
	m.bootstrapped = true
	id := ws.ID
	m.selected = &id
	m.mu.Unlock()
	m.fireSelect()

	logger.Info("Workspace created", logger.F("workspace_id", ws.ID))
	m.notifier.Notify(notify.Successf("Success", "Workspace created"))
	return &ws, nil
}

// Rename changes a workspace name. Blank names are refused.
func (m *Manager) Rename(ctx context.Context, id int64, newName string) (*model.Workspace, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		m.notifier.Notify(notify.Warningf("Warning", "Workspace name cannot be empty"))
		return nil, ErrEmptyName
	}

	ws, err := m.update(ctx, id, model.WorkspaceUpdate{Name: &newName})
	if err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Could not rename workspace"))
		return nil, err
	}

	m.notifier.Notify(notify.Successf("Success", "Workspace renamed"))
	return ws, nil
}

// Delete removes a workspace unless it is the owner's last one. When the
// selected workspace goes, the selection falls back to the first remaining.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if err := m.ensureLoaded(ctx); err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Could not delete workspace"))
		return err
	}

	m.mu.Lock()
	count := len(m.workspaces)
	known := m.indexLocked(id) >= 0
	m.mu.Unlock()

	if count <= 1 {
		m.notifier.Notify(notify.Warningf("Warning", "You need at least one workspace"))
		return ErrLastWorkspace
	}
	if !known {
		m.notifier.Notify(notify.Errorf("Error", "Workspace not found"))
		return ErrUnknownWorkspace
	}

	if err := m.store.DeleteWorkspaces(ctx, m.rowFilter(id)); err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Could not delete workspace"))
		return err
	}

	m.mu.Lock()
	if i := m.indexLocked(id); i >= 0 {
		m.workspaces = append(m.workspaces[:i], m.workspaces[i+1:]...)
	}
	changed := false
	if m.selected != nil && *m.selected == id {
		m.selected = nil
		m.reconcileSelectionLocked()
		changed = true
	}
	m.mu.Unlock()
	if changed {
		m.fireSelect()
	}

	logger.Info("Workspace deleted", logger.F("workspace_id", id))
	m.notifier.Notify(notify.Successf("Success", "Workspace deleted"))
	return nil
}

// Selected returns the selected workspace, nil when there is none
func (m *Manager) Selected() *model.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return nil
	}
	if i := m.indexLocked(*m.selected); i >= 0 {
		ws := m.workspaces[i]
		return &ws
	}
	return nil
}

// Select makes id the selected workspace. It must be listed already.
func (m *Manager) Select(id int64) error {
	m.mu.Lock()
	if m.indexLocked(id) < 0 {
		m.mu.Unlock()
		return ErrUnknownWorkspace
	}
	m.selected = &id
	m.mu.Unlock()
	m.fireSelect()
	return nil
}

func (m *Manager) fireSelect() {
	m.mu.Lock()
	fn := m.onSelect
	m.mu.Unlock()
	if fn != nil {
		fn(m.Selected())
	}
}

// SetPublic toggles whether the workspace is reachable through its public
// route.
func (m *Manager) SetPublic(ctx context.Context, id int64, public bool) (*model.Workspace, error) {
	ws, err := m.update(ctx, id, model.WorkspaceUpdate{IsPublic: &public})
	if err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Could not update workspace"))
		return nil, err
	}

	msg := "Workspace is now private"
	if public {
		msg = "Workspace is now public"
	}
	m.notifier.Notify(notify.Successf("Success", msg))
	return ws, nil
}

// SetPassword sets the public route password. A blank password removes it.
func (m *Manager) SetPassword(ctx context.Context, id int64, password string) (*model.Workspace, error) {
	password = strings.TrimSpace(password)
	upd := model.WorkspaceUpdate{Password: &password}
	msg := "Password saved"
	if password == "" {
		upd = model.WorkspaceUpdate{ClearPassword: true}
		msg = "Password removed"
	}

	ws, err := m.update(ctx, id, upd)
	if err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Could not save password"))
		return nil, err
	}

	m.notifier.Notify(notify.Successf("Success", msg))
	return ws, nil
}

// RemovePassword clears the public route password
func (m *Manager) RemovePassword(ctx context.Context, id int64) (*model.Workspace, error) {
	ws, err := m.update(ctx, id, model.WorkspaceUpdate{ClearPassword: true})
	if err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Could not remove password"))
		return nil, err
	}

	m.notifier.Notify(notify.Successf("Success", "Password removed"))
	return ws, nil
}

// ShareLink returns the plain public link of a workspace
func (m *Manager) ShareLink(ctx context.Context, id int64, origin string) (string, error) {
	if _, err := m.get(ctx, id); err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Workspace not found"))
		return "", err
	}

	m.notifier.Notify(notify.Successf("Success", "Link created"))
	return sharetoken.PlainLink(origin, id), nil
}

// SecureShareLink returns a link whose token skips the password prompt for
// sharetoken.TTL. The workspace must have a password.
func (m *Manager) SecureShareLink(ctx context.Context, id int64, origin string, now time.Time) (string, error) {
	ws, err := m.get(ctx, id)
	if err != nil {
		m.notifier.Notify(notify.Errorf("Error", "Workspace not found"))
		return "", err
	}
	if !ws.HasPassword() {
		m.notifier.Notify(notify.Warningf("Warning", "Set a password before creating a secure link"))
		return "", ErrNoPassword
	}

	m.notifier.Notify(notify.Successf("Success", "Secure link created (valid for 30 minutes)"))
	return sharetoken.SecureLink(origin, id, *ws.Password, now), nil
}

func (m *Manager) ensureLoaded(ctx context.Context) error {
	m.mu.Lock()
	loaded := m.loaded
	m.mu.Unlock()
	if loaded {
		return nil
	}

	rows, err := m.store.ListWorkspaces(ctx, m.ownerFilter())
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.workspaces = rows
	m.loaded = true
	m.reconcileSelectionLocked()
	m.mu.Unlock()
	return nil
}

// get returns the owner's workspace, reading through to the store when it is
// not listed yet.
func (m *Manager) get(ctx context.Context, id int64) (*model.Workspace, error) {
	m.mu.Lock()
	if i := m.indexLocked(id); i >= 0 {
		ws := m.workspaces[i]
		m.mu.Unlock()
		return &ws, nil
	}
	m.mu.Unlock()

	rows, err := m.store.ListWorkspaces(ctx, m.rowFilter(id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrUnknownWorkspace
	}
	return &rows[0], nil
}

// update writes upd and applies it to the remembered copy
func (m *Manager) update(ctx context.Context, id int64, upd model.WorkspaceUpdate) (*model.Workspace, error) {
	ws, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.store.UpdateWorkspaces(ctx, m.rowFilter(id), upd); err != nil {
		return nil, err
	}

	if upd.Name != nil {
		ws.Name = upd.Name
	}
	if upd.IsPublic != nil {
		ws.IsPublic = upd.IsPublic
	}
	if upd.ClearPassword {
		ws.Password = nil
	} else if upd.Password != nil {
		ws.Password = upd.Password
	}

	m.mu.Lock()
	if i := m.indexLocked(id); i >= 0 {
		m.workspaces[i] = *ws
	}
	m.mu.Unlock()
	return ws, nil
}
