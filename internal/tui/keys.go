package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the review workspace bindings. It satisfies help.KeyMap.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Confirm    key.Binding
	Reject     key.Binding
	ConfirmAll key.Binding
	RejectAll  key.Binding
	Detail     key.Binding
	Reload     key.Binding
	Dismiss    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		NextPage:   key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev page")),
		Confirm:    key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("y", "confirm")),
		Reject:     key.NewBinding(key.WithKeys("x", "n"), key.WithHelp("x", "reject")),
		ConfirmAll: key.NewBinding(key.WithKeys("Y", "A"), key.WithHelp("Y", "confirm all")),
		RejectAll:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "reject all")),
		Detail:     key.NewBinding(key.WithKeys("d", " "), key.WithHelp("d", "details")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "load latest")),
		Dismiss:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Reject, k.ConfirmAll, k.RejectAll, k.Detail, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextPage, k.PrevPage, k.Detail, k.Reload},
		{k.Confirm, k.Reject, k.ConfirmAll, k.RejectAll},
		{k.Dismiss, k.Help, k.Quit},
	}
}
