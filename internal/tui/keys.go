package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding
	Model     key.Binding
	Dismiss   key.Binding
	Back      key.Binding
	Open      key.Binding
	Highlight key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Explain   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// Terminals cannot report ctrl+= or ctrl+-, so zoom also answers to the
// bare and alt-modified keys.
var defaultKeys = keyMap{
	ZoomIn:    key.NewBinding(key.WithKeys("+", "=", "alt+=", "alt++"), key.WithHelp("+", "zoom in")),
	ZoomOut:   key.NewBinding(key.WithKeys("-", "alt+-", "_"), key.WithHelp("-", "zoom out")),
	ZoomReset: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
	Model:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "cycle model")),
	Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close panel")),
	Back:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back to start")),
	Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open another")),
	Highlight: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "keyboard select")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d", " "), key.WithHelp("pgdn", "page down")),
	Explain:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "explain selection")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Model, k.Dismiss, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Highlight, k.Explain, k.Dismiss, k.Model},
		{k.ZoomIn, k.ZoomOut, k.ZoomReset},
		{k.Open, k.Back, k.Help, k.Quit},
	}
}
