// Package database is the PostgreSQL implementation of the data store.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

// DB wraps the connection pool
type DB struct {
	db *sqlx.DB
}

var (
	_ store.Store    = (*DB)(nil)
	_ store.Identity = (*DB)(nil)
)

// Connect opens and pings a Postgres database
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// New wraps an open connection pool
func New(db *sqlx.DB) *DB {
	return &DB{db: db}
}

// Close closes the pool
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks the connection
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// translate maps driver errors onto the store sentinels
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pqErr.Constraint)
		case "foreign_key_violation":
			return fmt.Errorf("%w: %s", store.ErrNotFound, pqErr.Constraint)
		}
	}
	return err
}

const workspaceColumns = `id, name, owner_id, created_at, is_public, password`

func (d *DB) ListWorkspaces(ctx context.Context, f store.WorkspaceFilter) ([]model.Workspace, error) {
	var q query
	stmt := `SELECT ` + workspaceColumns + ` FROM workspace` + q.where(workspacePredicates(f)) + ` ORDER BY created_at ASC, id ASC`

	rows := []model.Workspace{}
	if err := d.db.SelectContext(ctx, &rows, stmt, q.args...); err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (d *DB) InsertWorkspace(ctx context.Context, in model.WorkspaceInsert) (model.Workspace, error) {
	var q query
	isPublic := false
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	stmt := `INSERT INTO workspace (name, owner_id, is_public, password) VALUES (` +
		q.arg(in.Name) + `, ` + q.arg(in.OwnerID) + `, ` + q.arg(isPublic) + `, ` + q.arg(in.Password) +
		`) RETURNING ` + workspaceColumns

	var w model.Workspace
	if err := d.db.GetContext(ctx, &w, stmt, q.args...); err != nil {
		return model.Workspace{}, translate(err)
	}
	return w, nil
}

func workspaceAssignments(upd model.WorkspaceUpdate) []predicate {
	var cols []predicate
	if upd.Name != nil {
		cols = append(cols, predicate{"name", *upd.Name})
	}
	if upd.IsPublic != nil {
		cols = append(cols, predicate{"is_public", *upd.IsPublic})
	}
	if upd.ClearPassword {
		cols = append(cols, predicate{"password", nil})
	} else if upd.Password != nil {
		cols = append(cols, predicate{"password", *upd.Password})
	}
	return cols
}

func (d *DB) UpdateWorkspaces(ctx context.Context, f store.WorkspaceFilter, upd model.WorkspaceUpdate) error {
	cols := workspaceAssignments(upd)
	if len(cols) == 0 {
		return nil
	}
	var q query
	stmt := `UPDATE workspace` + q.set(cols) + q.where(workspacePredicates(f))
	_, err := d.db.ExecContext(ctx, stmt, q.args...)
	return translate(err)
}

func (d *DB) DeleteWorkspaces(ctx context.Context, f store.WorkspaceFilter) error {
	var q query
	stmt := `DELETE FROM workspace` + q.where(workspacePredicates(f))
	_, err := d.db.ExecContext(ctx, stmt, q.args...)
	return translate(err)
}

const todoColumns = `id, text, completed, created_at, owner_id, workspace_id`

func (d *DB) ListTodos(ctx context.Context, f store.TodoFilter) ([]model.Todo, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var q query
	stmt := `SELECT ` + todoColumns + ` FROM todo` + q.where(todoPredicates(f)) + ` ORDER BY created_at DESC, id DESC`

	rows := []model.Todo{}
	if err := d.db.SelectContext(ctx, &rows, stmt, q.args...); err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (d *DB) InsertTodo(ctx context.Context, in model.TodoInsert) (model.Todo, error) {
	var q query
	stmt := `INSERT INTO todo (text, owner_id, workspace_id) VALUES (` +
		q.arg(in.Text) + `, ` + q.arg(in.OwnerID) + `, ` + q.arg(in.WorkspaceID) +
		`) RETURNING ` + todoColumns

	var t model.Todo
	if err := d.db.GetContext(ctx, &t, stmt, q.args...); err != nil {
		return model.Todo{}, translate(err)
	}
	return t, nil
}

func todoAssignments(upd model.TodoUpdate) []predicate {
	var cols []predicate
	if upd.Text != nil {
		cols = append(cols, predicate{"text", *upd.Text})
	}
	if upd.Completed != nil {
		cols = append(cols, predicate{"completed", *upd.Completed})
	}
	return cols
}

func (d *DB) UpdateTodos(ctx context.Context, f store.TodoFilter, upd model.TodoUpdate) error {
	if err := f.Validate(); err != nil {
		return err
	}
	cols := todoAssignments(upd)
	if len(cols) == 0 {
		return nil
	}
	var q query
	stmt := `UPDATE todo` + q.set(cols) + q.where(todoPredicates(f))
	_, err := d.db.ExecContext(ctx, stmt, q.args...)
	return translate(err)
}

func (d *DB) DeleteTodos(ctx context.Context, f store.TodoFilter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	var q query
	stmt := `DELETE FROM todo` + q.where(todoPredicates(f))
	_, err := d.db.ExecContext(ctx, stmt, q.args...)
	return translate(err)
}
