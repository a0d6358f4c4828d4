// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style

	// Review workspace styles.
	HeaderStyle       lipgloss.Style
	SummaryStyle      lipgloss.Style
	CardStyle         lipgloss.Style
	CardSelectedStyle lipgloss.Style
	CardTitleStyle    lipgloss.Style
	CardLabelStyle    lipgloss.Style
	CardBusyStyle     lipgloss.Style
	CardFlagStyle     lipgloss.Style
	DiffOldStyle      lipgloss.Style
	DiffNewStyle      lipgloss.Style
	DiffFieldStyle    lipgloss.Style
	EmptyStateStyle   lipgloss.Style
	HelpStyle         lipgloss.Style

	// Pagination.
	DotActiveStyle   lipgloss.Style
	DotInactiveStyle lipgloss.Style

	// Toasts.
	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	// Detail pane.
	DetailStyle lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		MarginBottom(1)
	SummaryStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface).
		Padding(0, 1)
	CardSelectedStyle = CardStyle.
		BorderForeground(ColorPrimary)
	CardTitleStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	CardLabelStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	CardBusyStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)
	CardFlagStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)

	DiffOldStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Strikethrough(true)
	DiffNewStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)
	DiffFieldStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	EmptyStateStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Padding(1, 2)
	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)

	DotActiveStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	DotInactiveStyle = lipgloss.NewStyle().Foreground(ColorSurface)

	toastBase := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	ToastInfoStyle = toastBase.
		BorderForeground(ColorPrimary).
		Foreground(ColorForeground)
	ToastWarningStyle = toastBase.
		BorderForeground(ColorWarning).
		Foreground(ColorWarning)
	ToastErrorStyle = toastBase.
		BorderForeground(ColorError).
		Foreground(ColorError)

	DetailStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(ColorSurface).
		PaddingTop(1)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
