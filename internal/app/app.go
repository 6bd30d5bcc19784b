package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/htran/stitchcount/internal/engine"
	"github.com/htran/stitchcount/internal/keys"
	"github.com/htran/stitchcount/internal/model"
	"github.com/htran/stitchcount/internal/ui"
	"github.com/htran/stitchcount/internal/ui/helpview"
)

// TickMsg is sent by the external ticker once per accrual interval.
type TickMsg struct {
	Now time.Time
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewCounters ViewState = iota
	ViewProjects
	ViewHelp
	ViewSaveForm
	ViewCounterForm
	ViewNotesForm
	ViewConfirm
)

// Sink collects engine notifications for the status bar. The engine
// runs synchronously inside Update, so a plain shared cell is enough.
type Sink struct {
	latest *model.Notification
}

// NewSink creates an empty notification sink.
func NewSink() *Sink {
	return &Sink{}
}

// Notify stores the latest notification, replacing any prior one.
func (s *Sink) Notify(n model.Notification) {
	s.latest = &n
}

// Latest returns the most recent notification, or nil.
func (s *Sink) Latest() *model.Notification {
	return s.latest
}

// Clear drops the current notification.
func (s *Sink) Clear() {
	s.latest = nil
}

// Model is the root Bubble Tea model. It consumes engine snapshots
// and routes key input to the active view or form.
type Model struct {
	engine *engine.Engine
	sink   *Sink
	keys   *keys.KeyMap
	layout ui.Layout

	currentView  ViewState
	previousView ViewState
	helpView     helpview.Model

	// Counter view selection: 0 is the main counter, 1..n the subs.
	selectedIdx int

	// Project list selection.
	projectIdx int

	forms formState
	ready bool
}

// New creates the root application model.
func New(eng *engine.Engine, sink *Sink) Model {
	k := keys.DefaultKeyMap()
	return Model{
		engine:      eng,
		sink:        sink,
		keys:        k,
		currentView: ViewCounters,
		helpView:    helpview.New(k, 80, 24),
		forms:       newFormState(),
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.helpView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		return m.updateActiveForm(msg)

	case TickMsg:
		m.engine.TickTimer(msg.Now)
		return m, nil

	case tea.KeyMsg:
		// Global keys that work regardless of current view.
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit

		case key.Matches(msg, m.keys.Quit) && m.currentView == ViewCounters:
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help) && !m.inForm():
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

// handleKey routes key input by view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentView {
	case ViewCounters:
		return m.handleCountersKey(msg)
	case ViewProjects:
		return m.handleProjectsKey(msg)
	case ViewHelp:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
		}
		return m, nil
	default:
		return m.updateActiveForm(msg)
	}
}

func (m Model) handleCountersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	snap := m.engine.Snapshot()
	counters := counterList(snap.Project)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedIdx < len(counters)-1 {
			m.selectedIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}
		return m, nil

	case key.Matches(msg, m.keys.Increment):
		m.sink.Clear()
		m.engine.IncrementCounter(ctx, counters[m.selectedIdx].ID)
		return m, nil

	case key.Matches(msg, m.keys.Decrement):
		m.sink.Clear()
		m.engine.DecrementCounter(ctx, counters[m.selectedIdx].ID)
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.engine.ResetCounter(ctx, counters[m.selectedIdx].ID)
		return m, nil

	case key.Matches(msg, m.keys.PauseTimer):
		m.engine.TogglePause(ctx)
		return m, nil

	case key.Matches(msg, m.keys.AddCounter):
		return m.openCounterForm("", "", 0)

	case key.Matches(msg, m.keys.EditCounter):
		c := counters[m.selectedIdx]
		return m.openCounterForm(c.ID, c.Name, c.Target)

	case key.Matches(msg, m.keys.DeleteCounter):
		c := counters[m.selectedIdx]
		if c.ID == model.MainCounterID {
			return m, nil
		}
		return m.openConfirm(m.engine.RequestDeleteSubCounter(c.ID))

	case key.Matches(msg, m.keys.Save):
		return m.openSaveForm(snap.Project.Name)

	case key.Matches(msg, m.keys.NewProject):
		m.sink.Clear()
		return m.openConfirm(m.engine.RequestNewProject(ctx))

	case key.Matches(msg, m.keys.Notes):
		return m.openNotesForm(snap.Project.Notes, snap.Project.PatternURL)

	case key.Matches(msg, m.keys.Projects):
		if err := m.engine.RefreshProjects(ctx); err != nil {
			return m, nil
		}
		m.projectIdx = 0
		m.previousView = m.currentView
		m.currentView = ViewProjects
		return m, nil
	}
	return m, nil
}

func (m Model) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	saved := m.engine.Snapshot().Saved

	switch {
	case key.Matches(msg, m.keys.Back):
		m.currentView = ViewCounters
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if len(saved) > 0 {
			m.projectIdx = (m.projectIdx + 1) % len(saved)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(saved) > 0 {
			m.projectIdx--
			if m.projectIdx < 0 {
				m.projectIdx = len(saved) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Increment):
		if len(saved) == 0 {
			return m, nil
		}
		m.currentView = ViewCounters
		m.selectedIdx = 0
		return m.openConfirm(m.engine.RequestLoadProject(ctx, saved[m.projectIdx].ID))

	case key.Matches(msg, m.keys.DeleteCounter):
		if len(saved) == 0 {
			return m, nil
		}
		p := saved[m.projectIdx]
		return m.openConfirm(m.engine.RequestDeleteProject(p.ID, p.Name))
	}
	return m, nil
}

// inForm reports whether a huh form currently has input focus.
func (m Model) inForm() bool {
	switch m.currentView {
	case ViewSaveForm, ViewCounterForm, ViewNotesForm, ViewConfirm:
		return true
	}
	return false
}

// counterList flattens the main counter and sub-counters in display
// order.
func counterList(p *model.Project) []model.Counter {
	out := make([]model.Counter, 0, len(p.SubCounters)+1)
	out = append(out, p.MainCounter)
	out = append(out, p.SubCounters...)
	return out
}
