package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keybindings for both views
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Back     key.Binding
	SortName key.Binding
	SortTime key.Binding
	SortSize key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding

	tree bool
}

// DefaultKeyMap returns default keybindings
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
		Open: key.NewBinding(
			key.WithKeys("enter", "l", "o"),
			key.WithHelp("→/l/enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "h"),
			key.WithHelp("←/h", "back"),
		),
		SortName: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort name"),
		),
		SortTime: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "sort modified"),
		),
		SortSize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort size"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// TreeKeyMap returns keybindings for the tree view, where open toggles
// a folder.
func TreeKeyMap() KeyMap {
	k := DefaultKeyMap()
	k.Open = key.NewBinding(
		key.WithKeys("enter", " ", "l", "o"),
		key.WithHelp("enter/space", "expand/collapse"),
	)
	k.tree = true
	return k
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	if k.tree {
		return []key.Binding{k.Up, k.Down, k.Open, k.Refresh, k.Help, k.Quit}
	}
	return []key.Binding{k.Up, k.Down, k.Open, k.Back, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	if k.tree {
		return [][]key.Binding{
			{k.Up, k.Down, k.Open},
			{k.Refresh, k.Help, k.Quit},
		}
	}
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.SortName, k.SortTime, k.SortSize},
		{k.Refresh, k.Help, k.Quit},
	}
}
