package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Counting
	Increment key.Binding
	Decrement key.Binding
	Reset     key.Binding

	// Counters
	AddCounter    key.Binding
	DeleteCounter key.Binding
	EditCounter   key.Binding

	// Timer
	PauseTimer key.Binding

	// Project lifecycle
	Save       key.Binding
	NewProject key.Binding
	Projects   key.Binding
	Notes      key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next counter"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous counter"),
		),
		Increment: key.NewBinding(
			key.WithKeys("enter", "+", "l"),
			key.WithHelp("enter/+", "count up"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-", "h"),
			key.WithHelp("-", "count down"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset counter"),
		),
		AddCounter: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add counter"),
		),
		DeleteCounter: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete counter"),
		),
		EditCounter: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit counter"),
		),
		PauseTimer: key.NewBinding(
			key.WithKeys("space"),
			key.WithHelp("space", "pause/resume timer"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save project"),
		),
		NewProject: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new project"),
		),
		Projects: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "open project list"),
		),
		Notes: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "notes & pattern"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact
// help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Increment, k.Decrement, k.Up, k.Down,
		k.Save, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the
// expanded help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increment, k.Decrement, k.Reset, k.Up, k.Down},
		{k.AddCounter, k.EditCounter, k.DeleteCounter, k.PauseTimer},
		{k.Save, k.NewProject, k.Projects, k.Notes},
		{k.Back, k.Quit, k.Help},
	}
}
