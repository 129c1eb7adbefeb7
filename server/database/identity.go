package database

import (
	"context"
	"time"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

func (d *DB) CreateUser(ctx context.Context, u model.User) error {
	_, err := d.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (:id, :email, :password_hash, :created_at)`, u)
	return translate(err)
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := d.db.GetContext(ctx, &u, `
		SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (d *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := d.db.GetContext(ctx, &u, `
		SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (d *DB) CreateSession(ctx context.Context, s model.Session) error {
	_, err := d.db.NamedExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at, created_at)
		VALUES (:id, :user_id, :token, :expires_at, :created_at)`, s)
	return translate(err)
}

func (d *DB) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var s model.Session
	err := d.db.GetContext(ctx, &s, `
		SELECT id, user_id, token, expires_at, created_at FROM sessions WHERE token = $1`, token)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (d *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return translate(err)
}

func (d *DB) CreateMagicLink(ctx context.Context, m model.MagicLink) error {
	_, err := d.db.NamedExecContext(ctx, `
		INSERT INTO magic_links (id, email, token, expires_at, used, created_at)
		VALUES (:id, :email, :token, :expires_at, :used, :created_at)`, m)
	return translate(err)
}

func (d *DB) GetMagicLink(ctx context.Context, token string) (*model.MagicLink, error) {
	var m model.MagicLink
	err := d.db.GetContext(ctx, &m, `
		SELECT id, email, token, used, expires_at, created_at FROM magic_links WHERE token = $1`, token)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (d *DB) MarkMagicLinkUsed(ctx context.Context, token string, _ time.Time) error {
	res, err := d.db.ExecContext(ctx, `UPDATE magic_links SET used = TRUE WHERE token = $1 AND used = FALSE`, token)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
