// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/vibeplanner/internal/core/styles"
)

type ctxKey struct{}

// Printer writes status lines to a single writer. It is safe for concurrent
// use so review outcomes from apply workers can be reported directly.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithContext stores p on ctx.
func WithContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored on ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, s)
}

func (p *Printer) prefixed(icon string, color lipgloss.Color, format string, args ...any) {
	mark := lipgloss.NewStyle().Foreground(color).Render(icon)
	p.line(mark + " " + fmt.Sprintf(format, args...))
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *Printer) Successf(format string, args ...any) {
	p.prefixed(styles.IconConfirm, styles.ColorSuccess, format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.prefixed(styles.IconNotifyInfo, styles.ColorPrimary, format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.prefixed(styles.IconNotifyWarning, styles.ColorWarning, format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.prefixed(styles.IconNotifyError, styles.ColorError, format, args...)
}

// Success writes a success line with a muted detail after it.
func (p *Printer) Success(msg, detail string) {
	if detail == "" {
		p.Successf("%s", msg)
		return
	}
	p.Successf("%s %s", msg, styles.DividerStyle.Render(detail))
}

// Section writes a bold heading.
func (p *Printer) Section(title string) {
	p.line(styles.CommandHeaderStyle.Render(title))
}
