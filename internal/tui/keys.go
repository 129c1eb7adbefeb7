package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Done    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Quit    key.Binding
	Enter   key.Binding
	Escape  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Done:    key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "toggle done")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Refresh: key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

// normalHelp lists the bindings shown in the status bar
func (k keyMap) normalHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Add, k.Done, k.Delete, k.Refresh, k.Quit}
}
