package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iopwsy/iop-eln/internal/output"
	"github.com/iopwsy/iop-eln/pkg/eln"
)

// renderNotebooks renders the notebook list with the cursor row highlighted.
func (m Model) renderNotebooks() string {
	styles := m.theme.Styles()
	if len(m.notebooks) == 0 {
		return m.renderStatus()
	}

	height := m.bodyHeight()
	start := 0
	if m.selected >= height {
		start = m.selected - height + 1
	}
	end := min(start+height, len(m.notebooks))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		label := fmt.Sprintf(" %3d  %s", i+1, m.notebooks[i])
		if i == m.selected {
			lines = append(lines, styles.Selected.Width(m.width).Render(label))
			continue
		}
		lines = append(lines, styles.Text.Render(label))
	}
	return strings.Join(lines, "\n")
}

// renderStatus renders the placeholder shown while loading or after a failure.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	switch {
	case m.loading:
		return styles.MutedText.Render(" " + m.spinner.View() + " Fetching from the notebook server...")
	case m.err != nil:
		return styles.DangerText.Render(" "+classifyError(m.err)) + "\n" +
			styles.MutedText.Render(" "+m.err.Error()) + "\n\n" +
			styles.FaintText.Render(" r to retry")
	case m.view == viewNotebooks:
		return styles.MutedText.Render(" No notebooks visible to this account.")
	default:
		return styles.MutedText.Render(" No records.")
	}
}

// renderRecords renders the exported records of the open notebook.
func (m Model) renderRecords() string {
	styles := m.theme.Styles()
	if len(m.datasets) == 0 {
		return styles.MutedText.Render(" No records.")
	}

	var b strings.Builder
	for i, ds := range m.datasets {
		if i > 0 {
			b.WriteString("\n")
		}
		title := ds.Title
		if title == "" {
			title = "(untitled)"
		}
		b.WriteString(styles.Title.Render(title))
		if ds.UID != "" {
			b.WriteString(styles.FaintText.Render("  uid " + string(ds.UID)))
		}
		b.WriteString("\n")
		for _, mod := range ds.Data {
			m.renderModule(&b, mod, styles)
		}
	}
	return b.String()
}

func (m Model) renderModule(b *strings.Builder, mod eln.ModuleData, styles Styles) {
	b.WriteString("  ")
	if mod.Type != "" {
		b.WriteString(styles.KindStyle(mod.Type).Render(mod.Type))
		b.WriteString(" ")
	}
	b.WriteString(styles.Text.Bold(true).Render(mod.Name))
	b.WriteString("\n")

	nameWidth := 0
	for _, e := range mod.Data {
		nameWidth = max(nameWidth, lipgloss.Width(e.Name))
	}
	valueWidth := max(m.width-nameWidth-20, 16)

	for _, e := range mod.Data {
		kind := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.KindColor(e.Type))).
			Width(9)
		fmt.Fprintf(b, "    %s  %s%s\n",
			styles.MutedText.Width(nameWidth).Render(e.Name),
			kind.Render(e.Type),
			output.Truncate(output.FormatValue(e.Data), valueWidth))
	}
}
