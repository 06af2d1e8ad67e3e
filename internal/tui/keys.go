package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the mixer screen.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Grab       key.Binding
	NudgeDown  key.Binding
	NudgeUp    key.Binding
	Mute       key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Connect    key.Binding
	Disconnect key.Binding
	Remove     key.Binding
	Cancel     key.Binding
	NextTab    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left column, or -5 while grabbed"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right column, or +5 while grabbed"),
		),
		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "grab/release slider"),
		),
		NudgeDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "volume down"),
		),
		NudgeUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "volume up"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move node up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move node down"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear connections"),
		),
		Remove: key.NewBinding(
			key.WithKeys("delete", "backspace"),
			key.WithHelp("del", "remove node"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grab, k.NudgeDown, k.NudgeUp, k.Mute, k.Connect, k.NextTab, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Grab, k.NudgeDown, k.NudgeUp, k.Mute},
		{k.MoveUp, k.MoveDown, k.Connect, k.Disconnect, k.Remove, k.Cancel},
		{k.NextTab, k.Help, k.Quit},
	}
}
