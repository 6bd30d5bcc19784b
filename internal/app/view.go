package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/htran/stitchcount/internal/engine"
	"github.com/htran/stitchcount/internal/eta"
	"github.com/htran/stitchcount/internal/model"
	"github.com/htran/stitchcount/internal/theme"
)

// View renders the full terminal frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	snap := m.engine.Snapshot()

	header := m.layout.RenderHeader(
		headerTitle(snap),
		timerReadout(snap.Project.Timer),
	)

	var content string
	switch m.currentView {
	case ViewProjects:
		content = m.renderProjects(snap)
	case ViewHelp:
		content = m.helpView.View()
	case ViewSaveForm, ViewCounterForm, ViewNotesForm, ViewConfirm:
		content = m.renderForm()
	default:
		content = m.renderCounters(snap)
	}

	content = lipgloss.NewStyle().
		Width(m.layout.ContentWidth()).
		Height(m.layout.ContentHeight()).
		Render(content)

	return m.layout.RenderWithFrame(header, content, m.renderStatusBar())
}

func headerTitle(snap engine.Snapshot) string {
	name := snap.Project.Name
	if name == "" {
		name = "(unsaved project)"
	}
	if snap.Dirty {
		name += " *"
	}
	return "stitchcount — " + name
}

// timerReadout formats accrued working time as h:mm:ss, with a marker
// while the timer is paused.
func timerReadout(t model.Timer) string {
	total := int64(t.Elapsed / time.Second)
	h := total / 3600
	min := (total % 3600) / 60
	sec := total % 60

	readout := fmt.Sprintf("%d:%02d:%02d", h, min, sec)
	if t.Paused {
		readout += " ⏸"
	}
	return readout
}

func (m Model) renderCounters(snap engine.Snapshot) string {
	counters := counterList(snap.Project)

	var b strings.Builder
	for i, c := range counters {
		b.WriteString(m.renderCounterRow(snap.Project, c, i == m.selectedIdx))
		b.WriteString("\n")
	}

	if snap.Project.Notes != "" || snap.Project.PatternURL != "" {
		b.WriteString("\n")
		if snap.Project.PatternURL != "" {
			b.WriteString(theme.HelpStyle.Render("pattern: " + snap.Project.PatternURL))
			b.WriteString("\n")
		}
		if snap.Project.Notes != "" {
			b.WriteString(theme.HelpStyle.Render(firstLine(snap.Project.Notes)))
			b.WriteString("\n")
		}
	}

	return theme.PanelStyle.
		Width(m.layout.ContentWidth() - 4).
		Render(b.String())
}

func (m Model) renderCounterRow(p *model.Project, c model.Counter, selected bool) string {
	value := fmt.Sprintf("%d", c.Value)
	if c.HasTarget() {
		value = fmt.Sprintf("%d / %d", c.Value, c.Target)
	}

	valueStyle := theme.CounterValueStyle
	if c.HasTarget() && c.Value >= c.Target {
		valueStyle = theme.TargetMetStyle
	}

	line := fmt.Sprintf("%-18s %s", c.Name, valueStyle.Render(value))

	if est, ok := eta.Estimate(p, c.ID); ok {
		line += "  " + theme.EtaStyle.Render("done in "+est)
	} else if c.HasTarget() && c.Value >= c.Target {
		line += "  " + theme.TargetMetStyle.Render("done!")
	}

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) renderProjects(snap engine.Snapshot) string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Render("Saved projects")
	b.WriteString(title)
	b.WriteString("\n\n")

	if len(snap.Saved) == 0 {
		b.WriteString(theme.HelpStyle.Render("No saved projects yet. Press s to save the current one."))
	}

	for i, p := range snap.Saved {
		line := fmt.Sprintf(
			"%-24s %s",
			p.Name,
			theme.HelpStyle.Render(p.LastModified.Format("Jan 2 15:04")),
		)
		if p.ID == snap.Project.ID {
			line += theme.DirtyStyle.Render("  (open)")
		}
		if i == m.projectIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return theme.PanelStyle.
		Width(m.layout.ContentWidth() - 4).
		Render(b.String())
}

func (m Model) renderForm() string {
	if m.forms.form == nil {
		return ""
	}
	return theme.PanelStyle.
		Width(m.layout.ContentWidth() - 4).
		Render(m.forms.form.View())
}

func (m Model) renderStatusBar() string {
	if n := m.sink.Latest(); n != nil {
		return m.layout.RenderStatusBar(
			theme.NotifyStyle(int(n.Severity)).Render(n.Message),
		)
	}
	return m.layout.RenderStatusBar(theme.HelpStyle.Render(m.keyHints()))
}

// keyHints returns the context-sensitive hint line for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewProjects:
		return "enter: open • d: delete • esc: back"
	case ViewHelp:
		return "esc: back"
	case ViewSaveForm, ViewCounterForm, ViewNotesForm, ViewConfirm:
		return "enter: confirm • esc: cancel"
	default:
		return "enter: count • s: save • p: projects • ?: help"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
