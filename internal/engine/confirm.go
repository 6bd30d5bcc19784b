package engine

import (
	"context"
	"fmt"
)

// PendingKind tags the destructive action a confirmation guards.
type PendingKind int

const (
	PendingDeleteProject PendingKind = iota
	PendingDeleteCounter
	PendingDiscardAndLoad
	PendingDiscardAndNew
)

// PendingAction is a deferred destructive or discard-risking intent.
// The engine performs no mutation until the action is confirmed;
// cancelling is always safe. At most one pending action is live at a
// time — requesting a new one replaces the prior unconfirmed one.
type PendingAction struct {
	Kind    PendingKind
	Title   string
	Message string

	// TargetID is the project or counter the action applies to,
	// depending on Kind. Empty for DiscardAndNew.
	TargetID string
}

// RequestDeleteProject stages deletion of a saved project.
func (e *Engine) RequestDeleteProject(id, name string) *PendingAction {
	e.pending = &PendingAction{
		Kind:     PendingDeleteProject,
		Title:    "Delete project",
		Message:  fmt.Sprintf("Delete %q? This cannot be undone.", name),
		TargetID: id,
	}
	return e.pending
}

// RequestDeleteSubCounter stages deletion of a sub-counter and its
// history.
func (e *Engine) RequestDeleteSubCounter(id string) *PendingAction {
	name := id
	if c := e.active.FindCounter(id); c != nil {
		name = c.Name
	}
	e.pending = &PendingAction{
		Kind:     PendingDeleteCounter,
		Title:    "Delete counter",
		Message:  fmt.Sprintf("Delete counter %q and its history?", name),
		TargetID: id,
	}
	return e.pending
}

// RequestLoadProject activates the given saved project. When the
// active project has unsaved changes the load is staged behind a
// confirmation; otherwise it runs immediately and returns nil.
func (e *Engine) RequestLoadProject(ctx context.Context, id string) *PendingAction {
	if !e.dirty {
		e.loadProject(ctx, id)
		return nil
	}
	e.pending = &PendingAction{
		Kind:     PendingDiscardAndLoad,
		Title:    "Discard changes",
		Message:  "The current project has unsaved changes. Discard them and open the selected project?",
		TargetID: id,
	}
	return e.pending
}

// RequestNewProject starts a fresh default project. When the active
// project has unsaved changes the swap is staged behind a
// confirmation; otherwise it runs immediately and returns nil.
func (e *Engine) RequestNewProject(ctx context.Context) *PendingAction {
	if !e.dirty {
		e.startNewProject(ctx)
		return nil
	}
	e.pending = &PendingAction{
		Kind:    PendingDiscardAndNew,
		Title:   "Discard changes",
		Message: "The current project has unsaved changes. Discard them and start a new project?",
	}
	return e.pending
}

// Pending returns the live pending action, or nil.
func (e *Engine) Pending() *PendingAction {
	return e.pending
}

// CancelPending drops the pending action without mutating anything.
func (e *Engine) CancelPending() {
	e.pending = nil
}

// ConfirmPending runs the staged action and clears it. A no-op when
// nothing is pending.
func (e *Engine) ConfirmPending(ctx context.Context) {
	action := e.pending
	e.pending = nil
	if action == nil {
		return
	}

	switch action.Kind {
	case PendingDeleteProject:
		e.DeleteProject(ctx, action.TargetID)
	case PendingDeleteCounter:
		e.DeleteSubCounter(ctx, action.TargetID)
	case PendingDiscardAndLoad:
		e.loadProject(ctx, action.TargetID)
	case PendingDiscardAndNew:
		e.startNewProject(ctx)
	}
}
