package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/notify"
)

// todosMsg carries a freshly polled list
type todosMsg []model.Todo

// noticeMsg carries a notice from a manager or the refresher
type noticeMsg notify.Notice

// clearNoticeMsg expires the notice shown under seq
type clearNoticeMsg struct{ seq int }

// Init starts polling and the listeners
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.waitForTodos(), m.waitForNotice())
}

func (m Model) start() tea.Cmd {
	r, ctx := m.refresher, m.ctx
	return func() tea.Msg {
		r.Start(ctx)
		return nil
	}
}

// waitForTodos listens for refresher updates
func (m Model) waitForTodos() tea.Cmd {
	ch, ctx := m.updates, m.ctx
	return func() tea.Msg {
		select {
		case items := <-ch:
			return todosMsg(items)
		case <-ctx.Done():
			return nil
		}
	}
}

// waitForNotice listens for notices
func (m Model) waitForNotice() tea.Cmd {
	ch, ctx := m.notices.ch, m.ctx
	return func() tea.Msg {
		select {
		case n := <-ch:
			return noticeMsg(n)
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case todosMsg:
		m.items = msg
		m.loaded = true
		m.cursor = clamp(m.cursor, len(m.items))
		return m, m.waitForTodos()

	case noticeMsg:
		n := notify.Notice(msg)
		m.notice = &n
		m.noticeSeq++
		d := n.Duration
		if d <= 0 {
			d = noticeFallback
		}
		seq := m.noticeSeq
		return m, tea.Batch(m.waitForNotice(), tea.Tick(d, func(time.Time) tea.Msg {
			return clearNoticeMsg{seq: seq}
		}))

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeAdd {
			return m.handleAddMode(msg)
		}
		return m.handleNormalMode(msg)
	}
	return m, nil
}

func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.shutdown()
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.cursor = clamp(m.cursor-1, len(m.items))

	case key.Matches(msg, keys.Down):
		m.cursor = clamp(m.cursor+1, len(m.items))

	case key.Matches(msg, keys.Add):
		m.mode = ModeAdd
		m.input.Reset()
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Done):
		if t := m.currentTodo(); t != nil {
			return m, m.toggle(*t)
		}

	case key.Matches(msg, keys.Delete):
		if t := m.currentTodo(); t != nil {
			return m, m.remove(*t)
		}

	case key.Matches(msg, keys.Refresh):
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		text := m.input.Value()
		m.mode = ModeNormal
		m.input.Blur()
		m.input.Reset()
		return m, m.add(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) refresh() tea.Cmd {
	r, ctx := m.refresher, m.ctx
	return func() tea.Msg {
		r.Refresh(ctx)
		return nil
	}
}

func (m Model) add(text string) tea.Cmd {
	todos, r, ctx, wid := m.todos, m.refresher, m.ctx, m.workspace.ID
	return func() tea.Msg {
		t, err := todos.Add(ctx, wid, text)
		if err != nil || t == nil {
			return nil
		}
		r.Refresh(ctx)
		return nil
	}
}

// toggle flips the row locally first; the next poll settles it
func (m *Model) toggle(t model.Todo) tea.Cmd {
	items := make([]model.Todo, len(m.items))
	copy(items, m.items)
	for i := range items {
		if items[i].ID == t.ID {
			items[i].Completed = !t.Completed
		}
	}
	m.items = items
	m.refresher.Set(items)

	todos, r, ctx := m.todos, m.refresher, m.ctx
	return func() tea.Msg {
		if err := todos.Toggle(ctx, t.ID, t.WorkspaceID, t.Completed); err != nil {
			logger.Debug("Toggle failed", logger.F("todo_id", t.ID), logger.F("error", err))
		}
		r.Refresh(ctx)
		return nil
	}
}

func (m Model) remove(t model.Todo) tea.Cmd {
	todos, r, ctx := m.todos, m.refresher, m.ctx
	return func() tea.Msg {
		if err := todos.Remove(ctx, t.ID, t.WorkspaceID); err != nil {
			return nil
		}
		r.Refresh(ctx)
		return nil
	}
}
