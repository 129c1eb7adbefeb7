package storetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

// Identity is an in-memory store.Identity
type Identity struct {
	mu         sync.Mutex
	users      map[string]model.User
	sessions   map[string]model.Session
	magicLinks map[string]model.MagicLink
}

var _ store.Identity = (*Identity)(nil)

// NewIdentity creates an empty identity store
func NewIdentity() *Identity {
	return &Identity{
		users:      make(map[string]model.User),
		sessions:   make(map[string]model.Session),
		magicLinks: make(map[string]model.MagicLink),
	}
}

func (i *Identity) CreateUser(_ context.Context, u model.User) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, existing := range i.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	i.users[u.ID] = u
	return nil
}

func (i *Identity) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, u := range i.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (i *Identity) GetUserByID(_ context.Context, id string) (*model.User, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	u, ok := i.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (i *Identity) CreateSession(_ context.Context, s model.Session) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.sessions[s.Token]; ok {
		return store.ErrDuplicate
	}
	i.sessions[s.Token] = s
	return nil
}

func (i *Identity) GetSession(_ context.Context, token string) (*model.Session, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	s, ok := i.sessions[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (i *Identity) DeleteSession(_ context.Context, token string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.sessions, token)
	return nil
}

func (i *Identity) CreateMagicLink(_ context.Context, m model.MagicLink) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.magicLinks[m.Token] = m
	return nil
}

func (i *Identity) GetMagicLink(_ context.Context, token string) (*model.MagicLink, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	m, ok := i.magicLinks[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (i *Identity) MarkMagicLinkUsed(_ context.Context, token string, _ time.Time) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	m, ok := i.magicLinks[token]
	if !ok || m.Used {
		return store.ErrNotFound
	}
	m.Used = true
	i.magicLinks[token] = m
	return nil
}

// Backend joins a Memory and an Identity into a complete data store
type Backend struct {
	*Memory
	*Identity
}

// NewBackend creates an empty in-memory data store
func NewBackend() *Backend {
	return &Backend{Memory: New(), Identity: NewIdentity()}
}
