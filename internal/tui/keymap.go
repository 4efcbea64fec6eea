package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the board view.
type KeyMap struct {
	// Navigation
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Actions
	Assign         key.Binding
	View           key.Binding
	OpenPhoto      key.Binding
	Complete       key.Binding
	Reconnect      key.Binding
	Filter         key.Binding
	UrgentOnly     key.Binding
	SwitchLandlord key.Binding
	Help           key.Binding
	Quit           key.Binding
	ConfirmQuit    key.Binding
	ApplyFilter    key.Binding
	CancelFilter   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous ticket"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next ticket"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "newest ticket"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "oldest ticket"),
		),
		Assign: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("enter/a", "assign vendor (local only)"),
		),
		View: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "view details"),
		),
		OpenPhoto: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open photo"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "mark complete"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter tickets"),
		),
		UrgentOnly: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "urgent only"),
		),
		SwitchLandlord: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "switch landlord"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ConfirmQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
		ApplyFilter: key.NewBinding(
			key.WithKeys("enter"),
		),
		CancelFilter: key.NewBinding(
			key.WithKeys("esc"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Top, k.Bottom},
		{k.Assign, k.View, k.OpenPhoto, k.Complete},
		{k.Reconnect, k.Filter, k.UrgentOnly, k.SwitchLandlord, k.Help, k.Quit},
	}
}
