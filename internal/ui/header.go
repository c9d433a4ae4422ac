package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iopwsy/iop-eln/internal/output"
	"github.com/iopwsy/iop-eln/internal/state"
	"github.com/iopwsy/iop-eln/pkg/eln"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("eln", styles.Logo)}

	switch m.view {
	case viewRecords:
		parts = append(parts,
			bg.Render("Notebook:", styles.MutedText)+bg.Spaces(1)+
				bg.Render(output.Truncate(m.notebook, 40), styles.Text))
		if !m.loading && m.err == nil {
			parts = append(parts,
				bg.Render("Records:", styles.MutedText)+bg.Spaces(1)+
					bg.Render(fmt.Sprintf("%d", len(m.datasets)), styles.Text))
		}
	default:
		parts = append(parts,
			bg.Render("Notebooks:", styles.MutedText)+bg.Spaces(1)+
				bg.Render(fmt.Sprintf("%d", len(m.notebooks)), styles.Text))
	}

	switch {
	case m.loading:
		parts = append(parts, bg.Render(m.spinner.View()+" Loading...", styles.WarningText.Bold(true)))
	case m.err != nil:
		label := classifyError(m.err)
		if m.offline() {
			label = "OFFLINE " + label
		}
		parts = append(parts, bg.Render(label, styles.DangerText))
	case !m.lastUpdated.IsZero():
		parts = append(parts, bg.Render(m.lastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, bg.Spaces(2)))
}

// snapshotter is implemented by state.Store.
type snapshotter interface {
	Snapshot() state.Snapshot
}

// offline reports whether the service has failed repeatedly. Services that
// keep no snapshot are never offline.
func (m Model) offline() bool {
	s, ok := m.service.(snapshotter)
	return ok && s.Snapshot().IsOffline()
}

// classifyError returns a short label for a failed request.
func classifyError(err error) string {
	var statusErr *eln.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, eln.ErrAuthentication):
		return "AUTH FAILED"
	case errors.Is(err, eln.ErrUnknownNotebook):
		return "UNKNOWN NOTEBOOK"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("HTTP %d", statusErr.StatusCode)
	case errors.Is(err, eln.ErrDataFormat):
		return "BAD REQUEST"
	case errors.Is(err, eln.ErrServer):
		return "SERVER ERROR"
	case strings.Contains(err.Error(), "timeout"), strings.Contains(err.Error(), "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.view {
	case viewRecords:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"ctrl+d/u", "Page"},
			{"r", "Reload"},
			{"esc", "Notebooks"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Open"},
			{"r", "Reload"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
