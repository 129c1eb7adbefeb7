package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/toedo/internal/gate"
	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/remote"
	"github.com/existflow/toedo/internal/sharetoken"
	"github.com/existflow/toedo/internal/store"
	"github.com/existflow/toedo/internal/todo"
)

// credentials is the password cache as seen by a visitor
type credentials interface {
	gate.CredentialCache
	remote.Credentials
	Forget(ctx context.Context, workspaceID int64) error
}

// visitor walks the public route of a workspace
type visitor struct {
	client   *remote.Client
	creds    credentials
	notifier notify.Notifier
	// ask prompts for a password; "" means leave
	ask func(label string) string
}

// enter runs one gate visit for raw, asking for the password until access
// is granted or the visitor leaves
func (v visitor) enter(ctx context.Context, raw string) (gate.Outcome, error) {
	g := gate.New(v.client, v.creds, v.notifier)
	out, err := g.Open(ctx, raw)
	if out.State == gate.Denied {
		logger.Info("Visit denied", logger.F("reason", out.Reason), logger.F("error", err))
		return out, err
	}
	if err != nil {
		return out, err
	}

	for out.State == gate.PasswordRequired {
		entered := v.ask(fmt.Sprintf("Password for %s (empty to leave): ", out.Workspace.DisplayName()))
		if entered == "" {
			return g.Leave(), nil
		}
		out, err = g.VerifyPassword(ctx, entered)
		if err != nil && !errors.Is(err, gate.ErrWrongPassword) {
			return out, err
		}
	}
	return out, nil
}

// open enters raw and loads the todos. A share link can carry a password the
// owner has since changed: the server then refuses the todos, so the stale
// password is forgotten and a fresh visit asks for the current one.
func (v visitor) open(ctx context.Context, raw string) (gate.Outcome, []model.Todo, error) {
	out, err := v.enter(ctx, raw)
	if out.State != gate.Granted {
		return out, nil, err
	}

	ws := out.Workspace
	todos, err := todo.NewPublic(v.client, v.notifier).List(ctx, ws.ID)
	if !errors.Is(err, store.ErrForbidden) || !ws.HasPassword() {
		return out, todos, err
	}

	logger.Info("Remembered password refused", logger.F("workspace_id", ws.ID))
	v.notifier.Notify(notify.Warningf("Password changed", "Enter the current password"))
	if err := v.creds.Forget(ctx, ws.ID); err != nil {
		return out, nil, err
	}

	out, err = v.enter(ctx, sharetoken.WorkspacePath(ws.ID))
	if out.State != gate.Granted {
		return out, nil, err
	}
	todos, err = todo.NewPublic(v.client, v.notifier).List(ctx, ws.ID)
	return out, todos, err
}
