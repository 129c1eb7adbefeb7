// Package gate decides whether a visitor reaching a workspace through its
// public route may see its todos.
//
// A gate handles one visit: Loading resolves once to Denied,
// PasswordRequired or Granted, and PasswordRequired may then move to Granted
// or, when the visitor leaves, Denied.
package gate

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

// State of a visit
type State int

const (
	Loading State = iota
	Denied
	PasswordRequired
	Granted
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Denied:
		return "denied"
	case PasswordRequired:
		return "password_required"
	case Granted:
		return "granted"
	default:
		return "loading"
	}
}

// Reason explains a Denied state
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotFound
	ReasonNotPublic
	ReasonLoadFailed
	ReasonInvalidID
	ReasonLeft
)

// Where denied visitors are sent, and after how long
const (
	DefaultRoute        = "/"
	RedirectDelay       = 2 * time.Second
	InvalidIDRedirectIn = 1 * time.Second
)

var (
	ErrNotFound            = errors.New("workspace not found")
	ErrNotPublic           = errors.New("workspace is not public")
	ErrLoadFailed          = errors.New("workspace could not be loaded")
	ErrWrongPassword       = errors.New("incorrect password")
	ErrEmptyPassword       = errors.New("password is empty")
	ErrAlreadyEvaluated    = errors.New("visit already evaluated")
	ErrNotAwaitingPassword = errors.New("no password is being requested")
)

// CredentialCache remembers workspace passwords on this machine
type CredentialCache interface {
	Get(ctx context.Context, workspaceID int64) (string, bool, error)
	Put(ctx context.Context, workspaceID int64, password string) error
}

// Outcome is the result of an evaluation step
type Outcome struct {
	State     State
	Reason    Reason
	Workspace *model.Workspace

	// Address is what the visitor should now see. When StripToken is set the
	// token was consumed and must be removed in place.
	Address    sharetoken.Address
	StripToken bool

	// TokenStatus is set when the address carried a token
	TokenStatus *sharetoken.Status

	// Redirect is set for Denied outcomes
	Redirect      string
	RedirectAfter time.Duration
}

// Gate evaluates one visit
type Gate struct {
	store    store.WorkspaceStore
	cache    CredentialCache
	notifier notify.Notifier
	now      func() time.Time

	mu        sync.Mutex
	state     State
	workspace *model.Workspace
	address   sharetoken.Address
	evaluated bool
}

// Option configures a Gate
type Option func(*Gate)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// New creates a gate in the Loading state
func New(s store.WorkspaceStore, cache CredentialCache, n notify.Notifier, opts ...Option) *Gate {
	if n == nil {
		n = notify.Discard
	}
	g := &Gate{store: s, cache: cache, notifier: n, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current state
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Workspace returns the workspace once it has been loaded
func (g *Gate) Workspace() *model.Workspace {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.workspace
}

// Open parses a raw address and evaluates it. An unparseable id is denied
// without touching the store.
func (g *Gate) Open(ctx context.Context, raw string) (Outcome, error) {
	addr, err := sharetoken.ParseAddress(raw)
	if err != nil {
		g.mu.Lock()
		if g.evaluated {
			g.mu.Unlock()
			return Outcome{}, ErrAlreadyEvaluated
		}
		g.evaluated = true
		g.state = Denied
		g.mu.Unlock()

		g.notifier.Notify(notify.Errorf("Error", "Invalid workspace ID"))
		return Outcome{
			State:         Denied,
			Reason:        ReasonInvalidID,
			Redirect:      DefaultRoute,
			RedirectAfter: InvalidIDRedirectIn,
		}, err
	}
	return g.Evaluate(ctx, addr)
}

// Evaluate resolves the visit for addr
func (g *Gate) Evaluate(ctx context.Context, addr sharetoken.Address) (Outcome, error) {
	g.mu.Lock()
	if g.evaluated {
		g.mu.Unlock()
		return Outcome{}, ErrAlreadyEvaluated
	}
	g.evaluated = true
	g.address = addr
	g.mu.Unlock()

	log := logger.WithFields(logger.F("workspace_id", addr.WorkspaceID))

	ws, err := store.GetWorkspace(ctx, g.store, addr.WorkspaceID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Info("Workspace not found")
		g.notifier.Notify(notify.Errorf("Error", "Workspace not found"))
		return g.deny(ReasonNotFound, addr), ErrNotFound
	case errors.Is(err, store.ErrForbidden):
		log.Info("Workspace refused by store")
		g.notifyNotPublic()
		return g.deny(ReasonNotPublic, addr), ErrNotPublic
	case err != nil:
		log.Warn("Failed to load workspace", logger.F("error", err))
		g.notifier.Notify(notify.Errorf("Error", "Workspace could not be loaded"))
		return g.deny(ReasonLoadFailed, addr), errors.Join(ErrLoadFailed, err)
	}

	if !ws.Public() {
		log.Info("Workspace is not public")
		g.notifyNotPublic()
		return g.deny(ReasonNotPublic, addr), ErrNotPublic
	}

	out := Outcome{Workspace: ws, Address: addr}

	tokenSatisfied := false
	if addr.Token != "" {
		res := sharetoken.Decode(addr.Token, g.now())
		status := res.Status
		out.TokenStatus = &status

		switch {
		case res.Status == sharetoken.Valid && res.WorkspaceID == ws.ID && res.Password != "":
			if err := g.cache.Put(ctx, ws.ID, res.Password); err != nil {
				log.Warn("Failed to remember workspace password", logger.F("error", err))
			}
			tokenSatisfied = true
			out.StripToken = true
			out.Address = sharetoken.Address{WorkspaceID: addr.WorkspaceID}
		case res.Status == sharetoken.Expired:
			log.Info("Share link expired")
			n := notify.Errorf("Link expired", "This link was valid for 30 minutes. Ask for a new one.")
			n.Duration = notify.DenialDuration
			g.notifier.Notify(n)
		default:
			log.Info("Share link invalid")
			g.notifier.Notify(notify.Errorf("Invalid link", "This link is invalid or corrupted."))
		}
	}

	g.mu.Lock()
	g.workspace = ws
	g.mu.Unlock()

	if !ws.HasPassword() || tokenSatisfied || g.cachedMatches(ctx, ws) {
		out.State = g.setState(Granted)
		log.Debug("Access granted")
		return out, nil
	}

	out.State = g.setState(PasswordRequired)
	return out, nil
}

func (g *Gate) cachedMatches(ctx context.Context, ws *model.Workspace) bool {
	cached, ok, err := g.cache.Get(ctx, ws.ID)
	if err != nil {
		logger.Warn("Failed to read remembered password", logger.F("workspace_id", ws.ID), logger.F("error", err))
		return false
	}
	return ok && cached == *ws.Password
}

// VerifyPassword checks the entered password against the workspace. A wrong
// password leaves the gate in PasswordRequired; retries are unlimited.
func (g *Gate) VerifyPassword(ctx context.Context, entered string) (Outcome, error) {
	g.mu.Lock()
	state, ws, addr := g.state, g.workspace, g.address
	g.mu.Unlock()

	if state != PasswordRequired || ws == nil {
		return Outcome{State: state, Workspace: ws, Address: addr}, ErrNotAwaitingPassword
	}

	out := Outcome{State: PasswordRequired, Workspace: ws, Address: addr}

	entered = strings.TrimSpace(entered)
	if entered == "" {
		g.notifier.Notify(notify.Errorf("Error", "Please enter the password"))
		return out, ErrEmptyPassword
	}
	if ws.Password == nil || entered != *ws.Password {
		g.notifier.Notify(notify.Errorf("Error", "Incorrect password"))
		return out, ErrWrongPassword
	}

	if err := g.cache.Put(ctx, ws.ID, entered); err != nil {
		logger.Warn("Failed to remember workspace password", logger.F("workspace_id", ws.ID), logger.F("error", err))
	}
	out.State = g.setState(Granted)
	g.notifier.Notify(notify.Successf("Success", "Access granted"))
	return out, nil
}

// Leave abandons a pending password prompt
func (g *Gate) Leave() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == PasswordRequired {
		g.state = Denied
		return Outcome{State: Denied, Reason: ReasonLeft, Workspace: g.workspace, Redirect: DefaultRoute}
	}
	return Outcome{State: g.state, Workspace: g.workspace, Address: g.address}
}

func (g *Gate) notifyNotPublic() {
	n := notify.Errorf("Access denied", "This workspace is not public. Its owner has to make it public.")
	n.Duration = notify.DenialDuration
	g.notifier.Notify(n)
}

func (g *Gate) deny(reason Reason, addr sharetoken.Address) Outcome {
	g.setState(Denied)
	return Outcome{
		State:         Denied,
		Reason:        reason,
		Address:       addr,
		Redirect:      DefaultRoute,
		RedirectAfter: RedirectDelay,
	}
}

func (g *Gate) setState(s State) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	return s
}
