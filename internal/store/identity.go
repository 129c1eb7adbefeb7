package store

import (
	"context"
	"errors"
	"time"

	"github.com/existflow/toedo/internal/model"
)

// ErrDuplicate is returned when a unique column already holds the value
var ErrDuplicate = errors.New("already exists")

// Identity is the password and session primitive of the data store
type Identity interface {
	CreateUser(ctx context.Context, u model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	CreateSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	CreateMagicLink(ctx context.Context, m model.MagicLink) error
	GetMagicLink(ctx context.Context, token string) (*model.MagicLink, error)
	// MarkMagicLinkUsed flips used to true. It returns ErrNotFound when the
	// link does not exist or was already used.
	MarkMagicLinkUsed(ctx context.Context, token string, at time.Time) error
}
