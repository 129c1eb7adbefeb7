package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/existflow/toedo/internal/credcache"
	"github.com/existflow/toedo/internal/db"
	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/remote"
	"github.com/existflow/toedo/internal/session"
	"github.com/existflow/toedo/internal/workspace"
)

// selectedWorkspaceKey persists the workspace selection between runs
const selectedWorkspaceKey = "selected_workspace"

// app holds what every command needs
type app struct {
	db       *db.DB
	creds    *credcache.Cache
	notifier notify.Notifier
}

func openApp() (*app, error) {
	path := cfg.DBPath
	if path == "" {
		p, err := db.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	database, err := db.Open(path)
	if err != nil {
		logger.Error("Failed to open database", logger.F("error", err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &app{
		db:       database,
		creds:    credcache.New(database),
		notifier: printer{},
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
	logger.Debug("Database closed")
}

// session returns the signed-in session
func (a *app) session() (*session.Session, error) {
	path, err := session.DefaultPath()
	if err != nil {
		return nil, err
	}
	return session.Load(path)
}

// client returns a server client. An empty token makes an anonymous visitor.
func (a *app) client(token string) *remote.Client {
	return remote.New(cfg.ServerURL, remote.WithToken(token), remote.WithCredentials(a.creds))
}

// signedIn returns the session and a client acting for it
func (a *app) signedIn() (*session.Session, *remote.Client, error) {
	sess, err := a.session()
	if err != nil {
		return nil, nil, err
	}
	return sess, a.client(sess.Token), nil
}

// workspaces builds the workspace manager of the signed-in user and restores
// the persisted selection once the list is loaded
func (a *app) workspaces(ctx context.Context) (*workspace.Manager, *session.Session, *remote.Client, error) {
	sess, client, err := a.signedIn()
	if err != nil {
		return nil, nil, nil, err
	}

	m := workspace.NewManager(client, sess.OwnerID(), a.notifier)
	if _, err := m.List(ctx); err != nil {
		if remote.IsUnauthorized(err) {
			return nil, nil, nil, fmt.Errorf("session expired, run 'toedo auth login' again: %w", err)
		}
		return nil, nil, nil, err
	}

	if saved, ok, err := a.db.Get(ctx, selectedWorkspaceKey); err == nil && ok {
		if id, err := strconv.ParseInt(saved, 10, 64); err == nil {
			if err := m.Select(id); err != nil {
				logger.Debug("Saved workspace no longer listed", logger.F("workspace_id", id))
			}
		}
	}

	m.OnSelect(func(ws *model.Workspace) {
		var err error
		if ws == nil {
			err = a.db.Delete(ctx, selectedWorkspaceKey)
		} else {
			err = a.db.Set(ctx, selectedWorkspaceKey, strconv.FormatInt(ws.ID, 10))
		}
		if err != nil {
			logger.Warn("Failed to persist workspace selection", logger.F("error", err))
		}
	})
	a.persistSelection(ctx, m.Selected())

	return m, sess, client, nil
}

func (a *app) persistSelection(ctx context.Context, ws *model.Workspace) {
	if ws == nil {
		return
	}
	if err := a.db.Set(ctx, selectedWorkspaceKey, strconv.FormatInt(ws.ID, 10)); err != nil {
		logger.Warn("Failed to persist workspace selection", logger.F("error", err))
	}
}

// target resolves the workspace a command acts on: the --workspace flag when
// set, the selection otherwise
func target(m *workspace.Manager, flag int64) (*model.Workspace, error) {
	if flag > 0 {
		for _, ws := range m.Workspaces() {
			if ws.ID == flag {
				return &ws, nil
			}
		}
		return nil, fmt.Errorf("workspace %d: %w", flag, workspace.ErrUnknownWorkspace)
	}
	ws := m.Selected()
	if ws == nil {
		return nil, errors.New("no workspace selected, run 'toedo ws use <id>'")
	}
	return ws, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", what, s)
	}
	return id, nil
}

var stdin = bufio.NewReader(os.Stdin)

// prompt reads one line from stdin
func prompt(label string) string {
	fmt.Print(label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptSecret reads a line without echo when stdin is a terminal
func promptSecret(label string) string {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		logger.Warn("Failed to read password", logger.F("error", err))
		return ""
	}
	return strings.TrimSpace(string(b))
}

func confirm(question string) bool {
	return strings.ToLower(prompt(question+" (y/N): ")) == "y"
}
