package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/toedo/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	list := m.renderTodoList()
	status := m.renderStatusBar()

	body := list
	if m.mode == ModeAdd {
		body = lipgloss.Place(
			m.width, max(m.height-4, 3),
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("toedo › " + m.workspace.DisplayName())
	badge := "private"
	if m.public {
		badge = "public view"
	} else if m.workspace.Public() {
		badge = "shared"
	}
	if m.workspace.HasPassword() {
		badge += " · password"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, BadgeStyle.Render(badge))
}

func (m Model) renderTodoList() string {
	if !m.loaded {
		return TodoListStyle.Render(HelpStyle.Render("Loading todos..."))
	}
	if len(m.items) == 0 {
		return TodoListStyle.Render(HelpStyle.Render("Nothing to do. Press a to add a todo."))
	}

	width := m.width - 12
	var b strings.Builder
	for i, t := range m.items {
		b.WriteString(m.renderTodo(t, i == m.cursor, width))
		b.WriteString("\n")
	}
	done := model.CountCompleted(m.items)
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(fmt.Sprintf("%d/%d done", done, len(m.items))))
	return TodoListStyle.Render(b.String())
}

func (m Model) renderTodo(t model.Todo, selected bool, width int) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	line := check + " " + truncate(t.Text, width)

	switch {
	case selected:
		return TodoItemSelectedStyle.Render("› " + line)
	case t.Completed:
		return TodoDoneStyle.Render("  " + line)
	default:
		return TodoItemStyle.Render("  " + line)
	}
}

func (m Model) renderModal() string {
	title := HeaderStyle.Render("New todo")
	help := HelpStyle.Render("enter save · esc cancel")
	return ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), help))
}

func (m Model) renderStatusBar() string {
	if m.notice != nil {
		return StatusBarStyle.Width(m.width).Render(RenderNotice(*m.notice))
	}
	var parts []string
	for _, b := range keys.normalHelp() {
		parts = append(parts, helpEntry(b))
	}
	return StatusBarStyle.Width(m.width).Render(strings.Join(parts, "  "))
}

func helpEntry(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
