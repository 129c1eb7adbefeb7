package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

// storeError writes the JSON error for err
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrForbidden):
		return jsonError(c, http.StatusForbidden, "access denied")
	case errors.Is(err, store.ErrUnauthorized):
		return jsonError(c, http.StatusUnauthorized, "authorization required")
	case errors.Is(err, store.ErrDuplicate):
		return jsonError(c, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrUnscoped),
		errors.Is(err, errBadID),
		errors.Is(err, errBadWorkspaceID),
		errors.Is(err, errBadOwnerID),
		errors.Is(err, errNeedID):
		return jsonError(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Store call failed",
			logger.F("uri", c.Request().RequestURI),
			logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleListWorkspaces(c echo.Context) error {
	f, err := workspaceFilter(c)
	if err != nil {
		return storeError(c, err)
	}

	caller := callerID(c)
	byID := f.ID != nil && f.OwnerID == nil
	if !byID {
		if f, err = ownedFilter(f, caller); err != nil {
			return storeError(c, err)
		}
	}

	rows, err := s.backend.ListWorkspaces(c.Request().Context(), f)
	if err != nil {
		return storeError(c, err)
	}
	if byID {
		for i := range rows {
			rows[i] = visibleWorkspace(rows[i], caller)
		}
	}
	if rows == nil {
		rows = []model.Workspace{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleInsertWorkspace(c echo.Context) error {
	caller := callerID(c)
	if caller == "" {
		return storeError(c, store.ErrUnauthorized)
	}

	var in model.WorkspaceInsert
	if err := c.Bind(&in); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	if in.OwnerID != "" && in.OwnerID != caller {
		return storeError(c, store.ErrForbidden)
	}
	in.OwnerID = caller

	ws, err := s.backend.InsertWorkspace(c.Request().Context(), in)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, ws)
}

// writableWorkspaceFilter is the filter of an update or delete: it must name
// a row and is forced onto the caller
func writableWorkspaceFilter(c echo.Context) (store.WorkspaceFilter, error) {
	f, err := workspaceFilter(c)
	if err != nil {
		return f, err
	}
	if f, err = ownedFilter(f, callerID(c)); err != nil {
		return f, err
	}
	if f.ID == nil {
		return f, errNeedID
	}
	return f, nil
}

func (s *Server) handleUpdateWorkspaces(c echo.Context) error {
	f, err := writableWorkspaceFilter(c)
	if err != nil {
		return storeError(c, err)
	}

	var upd model.WorkspaceUpdate
	if err := c.Bind(&upd); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	if upd.Empty() {
		return jsonError(c, http.StatusBadRequest, "nothing to update")
	}

	if err := s.backend.UpdateWorkspaces(c.Request().Context(), f, upd); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteWorkspaces(c echo.Context) error {
	f, err := writableWorkspaceFilter(c)
	if err != nil {
		return storeError(c, err)
	}

	if err := s.backend.DeleteWorkspaces(c.Request().Context(), f); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListTodos(c echo.Context) error {
	f, err := todoFilter(c)
	if err != nil {
		return storeError(c, err)
	}
	if _, err := s.authorizeTodos(c, *f.WorkspaceID); err != nil {
		return storeError(c, err)
	}

	rows, err := s.backend.ListTodos(c.Request().Context(), f)
	if err != nil {
		return storeError(c, err)
	}
	if rows == nil {
		rows = []model.Todo{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleInsertTodo(c echo.Context) error {
	var in model.TodoInsert
	if err := c.Bind(&in); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return jsonError(c, http.StatusBadRequest, "text required")
	}
	if in.WorkspaceID <= 0 {
		return storeError(c, store.ErrUnscoped)
	}
	if _, err := s.authorizeTodos(c, in.WorkspaceID); err != nil {
		return storeError(c, err)
	}

	caller := callerID(c)
	if in.OwnerID != nil && (caller == "" || *in.OwnerID != caller) {
		return storeError(c, store.ErrForbidden)
	}

	t, err := s.backend.InsertTodo(c.Request().Context(), in)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleUpdateTodos(c echo.Context) error {
	f, err := todoFilter(c)
	if err != nil {
		return storeError(c, err)
	}
	if _, err := s.authorizeTodos(c, *f.WorkspaceID); err != nil {
		return storeError(c, err)
	}

	var upd model.TodoUpdate
	if err := c.Bind(&upd); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	if upd.Empty() {
		return jsonError(c, http.StatusBadRequest, "nothing to update")
	}

	if err := s.backend.UpdateTodos(c.Request().Context(), f, upd); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteTodos(c echo.Context) error {
	f, err := todoFilter(c)
	if err != nil {
		return storeError(c, err)
	}
	if _, err := s.authorizeTodos(c, *f.WorkspaceID); err != nil {
		return storeError(c, err)
	}

	if err := s.backend.DeleteTodos(c.Request().Context(), f); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
