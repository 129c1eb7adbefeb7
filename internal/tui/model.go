// Package tui is the watch view of one workspace's todo list.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
	"github.com/existflow/toedo/internal/poll"
	"github.com/existflow/toedo/internal/todo"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
)

// Notices is a notify.Notifier that feeds the view. Create it first and hand
// it to the managers the view drives.
type Notices struct {
	ch chan notify.Notice
}

// NewNotices creates the notice channel of a view
func NewNotices() *Notices {
	return &Notices{ch: make(chan notify.Notice, 16)}
}

// Notify queues n for display, dropping it when the view is not keeping up
func (n *Notices) Notify(notice notify.Notice) {
	select {
	case n.ch <- notice:
	default:
		logger.Debug("Notice dropped", logger.F("title", notice.Title))
	}
}

// Options configures the view
type Options struct {
	Workspace model.Workspace
	Todos     *todo.Manager
	Scheduler poll.Scheduler
	Notices   *Notices
	// Public marks a visit through the public route
	Public bool
}

// Model is the main TUI model
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	workspace model.Workspace
	public    bool
	todos     *todo.Manager
	refresher *poll.Refresher[model.Todo]
	updates   chan []model.Todo
	notices   *Notices

	items  []model.Todo
	loaded bool

	// UI state
	width  int
	height int
	mode   Mode
	cursor int

	// Input
	input textinput.Model

	notice    *notify.Notice
	noticeSeq int
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	logger.Info("Initializing TUI model", logger.F("workspace_id", opts.Workspace.ID))

	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 256
	ti.Width = 50

	notices := opts.Notices
	if notices == nil {
		notices = NewNotices()
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = poll.NewTicker(poll.DefaultInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan []model.Todo, 1)

	r := poll.NewRefresher[model.Todo](opts.Todos.Fetcher(opts.Workspace.ID), sched, notices,
		notify.Errorf("Error", "Could not load todos"))
	r.OnUpdate(func(items []model.Todo) { offerLatest(updates, items) })

	return Model{
		ctx:       ctx,
		cancel:    cancel,
		workspace: opts.Workspace,
		public:    opts.Public,
		todos:     opts.Todos,
		refresher: r,
		updates:   updates,
		notices:   notices,
		mode:      ModeNormal,
		input:     ti,
	}
}

// offerLatest replaces whatever list is waiting in ch with items
func offerLatest(ch chan []model.Todo, items []model.Todo) {
	for {
		select {
		case ch <- items:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (m *Model) currentTodo() *model.Todo {
	if len(m.items) == 0 {
		return nil
	}
	t := m.items[clamp(m.cursor, len(m.items))]
	return &t
}

// shutdown stops polling; the view is being torn down
func (m *Model) shutdown() {
	m.refresher.Stop()
	m.cancel()
	logger.Info("TUI stopped polling", logger.F("workspace_id", m.workspace.ID))
}

const noticeFallback = 3 * time.Second
