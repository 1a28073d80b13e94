package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap TUI 的按鍵設定
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Buy    key.Binding
	Delete key.Binding
	Reload key.Binding
	Quit   key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show film"),
	),
	Buy: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "buy ticket"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete sold out"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Buy, k.Delete, k.Reload, k.Quit}
}
