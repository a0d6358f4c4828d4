package styles

// Status glyphs shared by the CLI and the review TUI.
var (
	IconConfirm       = "✓"
	IconReject        = "✗"
	IconFlag          = "⚠"
	IconInFlight      = "…"
	IconNotifyInfo    = "ℹ"
	IconNotifyWarning = "⚠"
	IconNotifyError   = "✗"
)

// Pagination dots.
var (
	IconDotActive   = "●"
	IconDotInactive = "○"
)
