package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/review"
	"github.com/colonyops/vibeplanner/internal/core/styles"
	"github.com/colonyops/vibeplanner/pkg/kv"
)

const (
	cardMinWidth  = 34
	maxColumns    = 4
	maxCardDiffs  = 3
	detailPadding = 4
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader()}

	if m.session.Count() == 0 {
		empty := "No pending proposals."
		if m.load != nil {
			empty += " Press r to load the latest turn."
		}
		if m.loading {
			empty = m.spinner.View() + " Loading proposals…"
		}
		sections = append(sections, styles.EmptyStateStyle.Render(empty))
	} else {
		sections = append(sections, m.renderGrid())
		if m.session.ShowPagination() {
			m.pager.SetTotalPages(m.session.TotalPages())
			m.pager.Page = m.session.Page()
			sections = append(sections, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.pager.View()))
		}
		if m.showDetail {
			if card, ok := m.selected(); ok {
				sections = append(sections, m.renderDetail(card.Item))
			}
		}
	}

	if m.prompt != nil {
		sections = append(sections, m.prompt.View())
	}
	sections = append(sections, styles.HelpStyle.Render(m.help.View(m.keys)))

	return withToasts(lipgloss.JoinVertical(lipgloss.Left, sections...), m.toasts, m.width, m.height)
}

func (m *Model) renderHeader() string {
	title := styles.HeaderStyle.Render("Review proposals")
	count := m.session.Count()
	if count == 0 {
		return title
	}

	summary := m.session.Summary()
	if m.session.IsProcessing() {
		summary = m.spinner.View() + " applying… " + summary
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.SummaryStyle.Render(summary))
}

func (m *Model) columns() int {
	cols := m.width / cardMinWidth
	return min(max(cols, 1), maxColumns)
}

func (m *Model) cardWidth() int {
	cols := m.columns()
	// two border cells per card
	return max(m.width/cols-2, cardMinWidth-2)
}

func (m *Model) renderGrid() string {
	cards := m.session.Visible()
	cols := m.columns()
	width := m.cardWidth()

	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		row := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, m.renderCard(cards[i], i == m.cursor, width))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderCard(card review.Card, selected bool, width int) string {
	it := card.Item
	inner := width - 2

	lines := []string{
		styles.CardTitleStyle.Render(truncate(it.Icon()+" "+it.Headline(), inner)),
		styles.CardLabelStyle.Render(cardLabel(it)),
	}

	if it.Display != nil && it.Display.Description != "" {
		lines = append(lines, styles.SummaryStyle.Render(truncate(it.Display.Description, inner)))
	}

	diff := it.Diff()
	for i, c := range diff {
		if i == maxCardDiffs {
			lines = append(lines, styles.DiffFieldStyle.Render(fmt.Sprintf("+%d more", len(diff)-maxCardDiffs)))
			break
		}
		lines = append(lines, renderChange(c, inner))
	}

	switch {
	case card.InFlight:
		lines = append(lines, styles.CardBusyStyle.Render(m.spinner.View()+" applying"))
	case it.Flagged():
		lines = append(lines, styles.CardFlagStyle.Render(truncate(styles.IconFlag+" "+it.Problem, inner)))
	}

	style := styles.CardStyle
	if selected {
		style = styles.CardSelectedStyle
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func cardLabel(it proposal.Item) string {
	if it.Display != nil && it.Display.Footer != "" {
		return it.Display.Footer
	}
	switch it.Operation {
	case proposal.OpBulkCreate, proposal.OpBulkEdit:
		return it.Operation.Verb() + " " + it.Headline()
	}
	return it.Operation.Verb() + " " + it.Type.Label()
}

func renderChange(c proposal.FieldChange, width int) string {
	field := styles.DiffFieldStyle.Render(c.Field + ":")
	after := styles.DiffNewStyle.Render(formatValue(c.After))
	if c.Before == nil {
		return truncateStyled(field+" "+after, width)
	}
	before := styles.DiffOldStyle.Render(formatValue(c.Before))
	return truncateStyled(field+" "+before+" → "+after, width)
}

func (m *Model) renderDetail(it proposal.Item) string {
	width := max(m.width-detailPadding, 20)
	var b strings.Builder

	b.WriteString(styles.CardTitleStyle.Render(it.Icon() + " " + it.Headline()))
	b.WriteString("\n")

	if it.Flagged() {
		b.WriteString(styles.CardFlagStyle.Render(styles.IconFlag + " " + it.Problem))
		b.WriteString("\n")
	}

	if it.Display != nil {
		for _, d := range it.Display.Details {
			b.WriteString("• " + d + "\n")
		}
	}

	switch it.Operation {
	case proposal.OpBulkCreate:
		for _, e := range it.Entries {
			b.WriteString("• " + e.Headline() + "\n")
		}
	case proposal.OpEdit, proposal.OpBulkEdit:
		for _, c := range it.Diff() {
			b.WriteString(renderChange(c, width) + "\n")
		}
	case proposal.OpDelete:
		b.WriteString(styles.DiffOldStyle.Render("record "+it.TargetID) + "\n")
	case proposal.OpCreate:
		if it.Payload != nil {
			writeFields(&b, it.Payload.Fields(), width, m.markdown)
		}
	}

	return styles.DetailStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func writeFields(b *strings.Builder, fields map[string]any, width int, md *markdownRenderer) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "content" {
			continue
		}
		b.WriteString(styles.DiffFieldStyle.Render(k+":") + " " + formatValue(fields[k]) + "\n")
	}

	if content, ok := fields["content"].(string); ok && content != "" {
		b.WriteString("\n" + md.Render(content, width))
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "∅"
	case string:
		return x
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(x, ", ")
	default:
		return fmt.Sprint(x)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// truncateStyled cuts by display width, which ignores escape sequences.
func truncateStyled(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(n).Render(s)
}

// maxCachedRenderers bounds distinct wrap widths kept across resizes.
const maxCachedRenderers = 8

// markdownRenderer caches a glamour renderer per wrap width.
type markdownRenderer struct {
	style     string
	renderers *kv.Store[int, *glamour.TermRenderer]
}

func newMarkdownRenderer(style string) *markdownRenderer {
	return &markdownRenderer{style: style, renderers: kv.New[int, *glamour.TermRenderer]()}
}

// Render returns content as styled markdown, or unchanged when glamour
// cannot build a renderer.
func (r *markdownRenderer) Render(content string, width int) string {
	if r.renderers.Len() >= maxCachedRenderers {
		if _, ok := r.renderers.Get(width); !ok {
			r.renderers.Clear()
		}
	}

	tr, err := r.renderers.GetOrLoad(width, func() (*glamour.TermRenderer, error) {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
		if r.style == "" || r.style == "theme" {
			opts = append(opts, glamour.WithStyles(styles.GlamourStyle()))
		} else {
			opts = append(opts, glamour.WithStandardStyle(r.style))
		}
		return glamour.NewTermRenderer(opts...)
	})
	if err != nil {
		return content
	}

	out, err := tr.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
