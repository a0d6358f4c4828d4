package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/vibeplanner/internal/core/styles"
)

// confirmPrompt is a yes/no question shown above the help line. It guards
// destructive batch actions.
type confirmPrompt struct {
	message   string
	onConfirm func() tea.Cmd
	done      bool
}

func newConfirmPrompt(message string, onConfirm func() tea.Cmd) *confirmPrompt {
	return &confirmPrompt{message: message, onConfirm: onConfirm}
}

// Update answers the prompt. Any key other than yes cancels.
func (p *confirmPrompt) Update(msg tea.KeyMsg) tea.Cmd {
	p.done = true
	switch msg.String() {
	case "y", "Y", "enter":
		return p.onConfirm()
	}
	return nil
}

func (p *confirmPrompt) Done() bool {
	return p.done
}

func (p *confirmPrompt) View() string {
	return styles.CardFlagStyle.Render(styles.IconFlag+" "+p.message) + " " +
		styles.CardTitleStyle.Render("(y/n)")
}
