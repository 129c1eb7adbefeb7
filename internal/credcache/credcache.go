// Package credcache remembers workspace passwords on this machine so the
// public route does not prompt again.
//
// Values are stored in plaintext, next to the rest of the client state.
package credcache

import (
	"context"
	"strconv"

	"github.com/existflow/toedo/internal/db"
)

// KeyPrefix prefixes every cached credential key
const KeyPrefix = "workspace_access_"

// Key returns the cache key of a workspace
func Key(workspaceID int64) string {
	return KeyPrefix + strconv.FormatInt(workspaceID, 10)
}

// KV is the storage the cache writes to
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

var _ KV = (*db.DB)(nil)

// Cache maps workspace ids to remembered passwords
type Cache struct {
	kv KV
}

// New creates a cache over kv
func New(kv KV) *Cache {
	return &Cache{kv: kv}
}

// Get returns the remembered password of a workspace
func (c *Cache) Get(ctx context.Context, workspaceID int64) (string, bool, error) {
	return c.kv.Get(ctx, Key(workspaceID))
}

// Put remembers a password
func (c *Cache) Put(ctx context.Context, workspaceID int64, password string) error {
	return c.kv.Set(ctx, Key(workspaceID), password)
}

// Forget drops the remembered password of a workspace
func (c *Cache) Forget(ctx context.Context, workspaceID int64) error {
	return c.kv.Delete(ctx, Key(workspaceID))
}

// Workspaces lists the ids that have a remembered password
func (c *Cache) Workspaces(ctx context.Context) ([]int64, error) {
	keys, err := c.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.ParseInt(k[len(KeyPrefix):], 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Password implements the credential lookup used by the remote client
func (c *Cache) Password(ctx context.Context, workspaceID int64) (string, bool) {
	pw, ok, err := c.Get(ctx, workspaceID)
	if err != nil {
		return "", false
	}
	return pw, ok
}
