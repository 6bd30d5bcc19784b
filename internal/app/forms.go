package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/htran/stitchcount/internal/engine"
)

// formState carries the active huh form and the values its fields are
// bound to. A fresh instance is built each time a form is opened.
type formState struct {
	form *huh.Form

	name       string
	target     string
	notes      string
	patternURL string
	confirm    bool

	// counterID is the counter being edited, or empty when the form
	// creates a new one.
	counterID string
}

func newFormState() formState {
	return formState{}
}

// openSaveForm opens the project name prompt used for explicit saves.
func (m Model) openSaveForm(currentName string) (Model, tea.Cmd) {
	m.forms = formState{name: currentName}
	m.forms.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Prompt("> ").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}).
				Value(&m.forms.name),
		),
	)
	m.previousView = m.currentView
	m.currentView = ViewSaveForm
	return m, m.forms.form.Init()
}

// openCounterForm opens the add/edit form for a counter. An empty id
// creates a new sub-counter on submit.
func (m Model) openCounterForm(id, name string, target int) (Model, tea.Cmd) {
	m.forms = formState{counterID: id, name: name}
	if target > 0 {
		m.forms.target = strconv.Itoa(target)
	}
	m.forms.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Counter name").
				Prompt("> ").
				Value(&m.forms.name),
			huh.NewInput().
				Title("Target (0 for none)").
				Prompt("> ").
				Validate(validateTarget).
				Value(&m.forms.target),
		),
	)
	m.previousView = m.currentView
	m.currentView = ViewCounterForm
	return m, m.forms.form.Init()
}

// openNotesForm opens the notes and pattern link editor.
func (m Model) openNotesForm(notes, patternURL string) (Model, tea.Cmd) {
	m.forms = formState{notes: notes, patternURL: patternURL}
	m.forms.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Notes").
				Value(&m.forms.notes),
			huh.NewInput().
				Title("Pattern link").
				Prompt("> ").
				Value(&m.forms.patternURL),
		),
	)
	m.previousView = m.currentView
	m.currentView = ViewNotesForm
	return m, m.forms.form.Init()
}

// openConfirm shows a yes/no dialog for a pending action. A nil action
// means the request was applied immediately and no dialog is needed.
func (m Model) openConfirm(action *engine.PendingAction) (Model, tea.Cmd) {
	if action == nil {
		// The request needed no guard and already applied.
		m.clampSelection()
		return m, nil
	}
	m.forms = formState{}
	m.forms.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(action.Title).
				Description(action.Message).
				Affirmative("Yes").
				Negative("No").
				Value(&m.forms.confirm),
		),
	)
	m.previousView = m.currentView
	m.currentView = ViewConfirm
	return m, m.forms.form.Init()
}

// updateActiveForm forwards a message to the active form, if any, and
// handles its completion.
func (m Model) updateActiveForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.inForm() || m.forms.form == nil {
		return m, nil
	}

	updated, cmd := m.forms.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.forms.form = f
	}

	switch m.forms.form.State {
	case huh.StateCompleted:
		return m.completeForm()
	case huh.StateAborted:
		return m.abortForm()
	}
	return m, cmd
}

func (m Model) completeForm() (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch m.currentView {
	case ViewSaveForm:
		m.engine.RenameProject(ctx, strings.TrimSpace(m.forms.name))
		_ = m.engine.SaveActiveProject(ctx, true)

	case ViewCounterForm:
		target := parseTarget(m.forms.target)
		name := strings.TrimSpace(m.forms.name)
		if m.forms.counterID == "" {
			id := m.engine.AddSubCounter(ctx, name)
			m.engine.SetTarget(ctx, id, target)
			m.selectedIdx = len(m.engine.Snapshot().Project.SubCounters)
		} else {
			if name != "" {
				m.engine.RenameCounter(ctx, m.forms.counterID, name)
			}
			m.engine.SetTarget(ctx, m.forms.counterID, target)
		}

	case ViewNotesForm:
		m.engine.SetNotes(ctx, m.forms.notes)
		m.engine.SetPatternURL(ctx, strings.TrimSpace(m.forms.patternURL))

	case ViewConfirm:
		if m.forms.confirm {
			m.engine.ConfirmPending(ctx)
		} else {
			m.engine.CancelPending()
		}
	}

	return m.closeForm()
}

func (m Model) abortForm() (tea.Model, tea.Cmd) {
	if m.currentView == ViewConfirm {
		m.engine.CancelPending()
	}
	return m.closeForm()
}

func (m Model) closeForm() (tea.Model, tea.Cmd) {
	m.forms = newFormState()
	m.currentView = m.previousView
	m.clampSelection()
	return m, nil
}

// clampSelection keeps both cursors inside their lists, which may have
// shrunk after a delete or a project switch.
func (m *Model) clampSelection() {
	snap := m.engine.Snapshot()

	n := len(counterList(snap.Project))
	if m.selectedIdx >= n {
		m.selectedIdx = n - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}

	if m.projectIdx >= len(snap.Saved) {
		m.projectIdx = len(snap.Saved) - 1
	}
	if m.projectIdx < 0 {
		m.projectIdx = 0
	}
}

func validateTarget(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number")
	}
	return nil
}

func parseTarget(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
