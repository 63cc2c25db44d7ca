package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for the terminal desktop.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Actions
	Activate   key.Binding
	Edit       key.Binding
	Delete     key.Binding
	AddLink    key.Binding
	AddFolder  key.Binding
	Resize     key.Binding
	Extract    key.Binding
	Search     key.Binding
	NextEngine key.Binding

	// Dialogs
	Confirm key.Binding
	Cancel  key.Binding
	Next    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / cancel"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Move right"),
		),

		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "Open"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Toggle edit mode"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Delete"),
		),
		AddLink: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add link"),
		),
		AddFolder: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Add folder"),
		),
		Resize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Toggle folder size"),
		),
		Extract: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Move link to desktop"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		NextEngine: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "Next search engine"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "Cancel"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Next field"),
		),
	}
}

// ShortHelp returns bindings for the compact help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.Edit, k.Search, k.Help, k.Quit}
}

// FullHelp returns bindings for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Activate, k.Escape},
		{k.Edit, k.Delete, k.AddLink, k.AddFolder},
		{k.Resize, k.Extract, k.Search, k.NextEngine},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
