package server

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

var (
	errBadID          = errors.New("id must be a positive integer")
	errBadWorkspaceID = errors.New("workspace_id must be a positive integer")
	errBadOwnerID     = errors.New("owner_id must be a uuid")
	errNeedID         = errors.New("id filter required")
)

func parseID(raw string, bad error) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, bad
	}
	return &id, nil
}

func parseOwner(raw string) (*string, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return nil, errBadOwnerID
	}
	owner := u.String()
	return &owner, nil
}

func workspaceFilter(c echo.Context) (store.WorkspaceFilter, error) {
	var f store.WorkspaceFilter
	var err error
	if f.ID, err = parseID(c.QueryParam("id"), errBadID); err != nil {
		return f, err
	}
	if f.OwnerID, err = parseOwner(c.QueryParam("owner_id")); err != nil {
		return f, err
	}
	return f, nil
}

func todoFilter(c echo.Context) (store.TodoFilter, error) {
	var f store.TodoFilter
	var err error
	if f.ID, err = parseID(c.QueryParam("id"), errBadID); err != nil {
		return f, err
	}
	if f.WorkspaceID, err = parseID(c.QueryParam("workspace_id"), errBadWorkspaceID); err != nil {
		return f, err
	}
	if f.OwnerID, err = parseOwner(c.QueryParam("owner_id")); err != nil {
		return f, err
	}
	return f, f.Validate()
}

// ownedFilter forces a workspace filter onto the caller. A filter naming
// another owner is refused.
func ownedFilter(f store.WorkspaceFilter, caller string) (store.WorkspaceFilter, error) {
	if caller == "" {
		return f, store.ErrUnauthorized
	}
	if f.OwnerID != nil && *f.OwnerID != caller {
		return f, store.ErrForbidden
	}
	f.OwnerID = &caller
	return f, nil
}

// visibleWorkspace is what an id lookup returns to caller: the full row when
// it is public or theirs, otherwise only the id and a false public flag.
func visibleWorkspace(w model.Workspace, caller string) model.Workspace {
	if w.Public() || (caller != "" && w.OwnerID == caller) {
		return w
	}
	return model.Workspace{ID: w.ID, CreatedAt: w.CreatedAt, IsPublic: model.Bool(false)}
}

// authorizeTodos decides whether caller may touch the todos of a workspace.
// Owners always may; anyone else needs a public workspace and, when it has a
// password, the matching password header.
func (s *Server) authorizeTodos(c echo.Context, workspaceID int64) (*model.Workspace, error) {
	ws, err := store.GetWorkspace(c.Request().Context(), s.backend, workspaceID)
	if err != nil {
		return nil, err
	}

	caller := callerID(c)
	if caller != "" && ws.OwnerID == caller {
		return ws, nil
	}
	if !ws.Public() {
		return nil, store.ErrForbidden
	}
	if ws.HasPassword() && c.Request().Header.Get(HeaderWorkspacePassword) != *ws.Password {
		return nil, store.ErrForbidden
	}
	return ws, nil
}
