package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/toedo/internal/notify"
)

// Color palette
var (
	// Notice colors
	SuccessColor = lipgloss.Color("#95E1A3") // Green
	ErrorColor   = lipgloss.Color("#FF6B6B") // Red
	WarningColor = lipgloss.Color("#FFE66D") // Yellow

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	// Todo list
	TodoListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	TodoItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TodoItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TodoDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// NoticeStyle returns the style of a notice kind
func NoticeStyle(kind notify.Kind) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch kind {
	case notify.Success:
		return style.Foreground(SuccessColor)
	case notify.Warning:
		return style.Foreground(WarningColor)
	default:
		return style.Foreground(ErrorColor)
	}
}

// RenderNotice formats a notice on one line
func RenderNotice(n notify.Notice) string {
	icon := "✗"
	switch n.Kind {
	case notify.Success:
		icon = "✓"
	case notify.Warning:
		icon = "⚠"
	}
	text := icon + " " + n.Title
	if n.Message != "" {
		text += ": " + n.Message
	}
	return NoticeStyle(n.Kind).Render(text)
}
