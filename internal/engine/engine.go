// Package engine owns the active counting project: every user intent
// runs through it, and it alone decides when state is transient
// versus durable. Mutations are synchronous and run to completion;
// the periodic timer tick and the presentation layer are the only
// re-entry points, so no locking is needed and at most one store
// write is ever in flight.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/htran/stitchcount/internal/history"
	"github.com/htran/stitchcount/internal/model"
	"github.com/htran/stitchcount/internal/store"
	"github.com/htran/stitchcount/internal/timer"
)

// NotifyFunc receives transient user-visible messages from the
// engine, e.g. save outcomes.
type NotifyFunc func(model.Notification)

// Engine orchestrates all project mutations, dirty tracking, and
// persistence. It is constructed at startup and owns the single
// active-project slot for the life of the process.
type Engine struct {
	store  store.Store
	notify NotifyFunc
	clock  func() time.Time

	active   *model.Project
	dirty    bool
	projects []*model.Project
	pending  *PendingAction
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an engine with a fresh default project active. notify
// may be nil.
func New(st store.Store, notify NotifyFunc, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		notify: notify,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.active = model.NewDefaultProject(e.clock())
	return e
}

// Snapshot is the read-only state handed to the presentation layer
// after every mutation.
type Snapshot struct {
	// Project is a deep copy of the active project.
	Project *model.Project

	// Dirty reports unsaved in-memory changes on an ephemeral
	// project.
	Dirty bool

	// Saved is the cached list of stored projects, most recently
	// modified first.
	Saved []*model.Project
}

// Snapshot returns a deep-copied view of the engine state.
func (e *Engine) Snapshot() Snapshot {
	saved := make([]*model.Project, len(e.projects))
	for i, p := range e.projects {
		saved[i] = p.Clone()
	}
	return Snapshot{
		Project: e.active.Clone(),
		Dirty:   e.dirty,
		Saved:   saved,
	}
}

// Active returns the active project. Callers outside the engine
// mutate it only through Apply.
func (e *Engine) Active() *model.Project {
	return e.active
}

// Dirty reports whether the active ephemeral project has unsaved
// changes.
func (e *Engine) Dirty() bool {
	return e.dirty
}

// Apply runs a mutation against the active project, stamps
// lastModified, and applies the dirty/autosave policy: an ephemeral
// project is marked dirty (re-marking is idempotent); a persisted
// project is silently saved. A failed silent save surfaces as a
// non-fatal notification and the in-memory mutation stands — the next
// mutation or explicit save writes current state and so retries.
func (e *Engine) Apply(ctx context.Context, fn func(p *model.Project)) {
	fn(e.active)
	e.active.LastModified = e.clock()

	if !e.active.Persisted() {
		e.dirty = true
		return
	}

	if err := e.store.PutProject(ctx, e.active); err != nil {
		e.notifyf(model.SeverityError, "Autosave failed: %v", err)
	}
}

// IncrementCounter increments the counter and records an increment
// history entry for the estimate.
func (e *Engine) IncrementCounter(ctx context.Context, id string) {
	e.Apply(ctx, func(p *model.Project) {
		c := p.FindCounter(id)
		if c == nil {
			return
		}
		c.Value++
		p.History = append(p.History, model.HistoryEntry{
			CounterID: id,
			Timestamp: e.clock(),
		})
	})
}

// DecrementCounter decrements the counter when its value is positive
// and retracts the most recent history entry for it — an approximate
// undo of the estimate sample, not a general undo. The value never
// goes negative.
func (e *Engine) DecrementCounter(ctx context.Context, id string) {
	e.Apply(ctx, func(p *model.Project) {
		c := p.FindCounter(id)
		if c == nil || c.Value == 0 {
			return
		}
		c.Value--
		p.History, _ = history.RemoveLastFor(p.History, id)
	})
}

// ResetCounter sets the counter back to zero and purges all of its
// history so the estimate never reflects stale samples.
func (e *Engine) ResetCounter(ctx context.Context, id string) {
	e.Apply(ctx, func(p *model.Project) {
		c := p.FindCounter(id)
		if c == nil {
			return
		}
		c.Value = 0
		p.History = history.PurgeFor(p.History, id)
	})
}

// AddSubCounter appends a new sub-counter and returns its id.
func (e *Engine) AddSubCounter(ctx context.Context, name string) string {
	id := uuid.NewString()
	e.Apply(ctx, func(p *model.Project) {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Counter %d", len(p.SubCounters)+2)
		}
		p.SubCounters = append(p.SubCounters, model.Counter{ID: id, Name: name})
	})
	return id
}

// DeleteSubCounter removes the counter and purges its history
// entries. The main counter cannot be deleted.
func (e *Engine) DeleteSubCounter(ctx context.Context, id string) {
	if id == model.MainCounterID {
		return
	}
	e.Apply(ctx, func(p *model.Project) {
		for i := range p.SubCounters {
			if p.SubCounters[i].ID == id {
				p.SubCounters = append(p.SubCounters[:i], p.SubCounters[i+1:]...)
				break
			}
		}
		p.History = history.PurgeFor(p.History, id)
	})
}

// RenameCounter sets the counter's display name.
func (e *Engine) RenameCounter(ctx context.Context, id, name string) {
	e.Apply(ctx, func(p *model.Project) {
		if c := p.FindCounter(id); c != nil {
			c.Name = name
		}
	})
}

// SetTarget sets the counter's target; values below 1 clear it.
func (e *Engine) SetTarget(ctx context.Context, id string, target int) {
	e.Apply(ctx, func(p *model.Project) {
		if c := p.FindCounter(id); c != nil {
			if target < 1 {
				target = 0
			}
			c.Target = target
		}
	})
}

// RenameProject sets the project name.
func (e *Engine) RenameProject(ctx context.Context, name string) {
	e.Apply(ctx, func(p *model.Project) {
		p.Name = name
	})
}

// SetNotes replaces the project notes.
func (e *Engine) SetNotes(ctx context.Context, notes string) {
	e.Apply(ctx, func(p *model.Project) {
		p.Notes = notes
	})
}

// SetPatternURL replaces the pattern link.
func (e *Engine) SetPatternURL(ctx context.Context, url string) {
	e.Apply(ctx, func(p *model.Project) {
		p.PatternURL = url
	})
}

// TogglePause flips the work timer. This is a user intent and goes
// through the normal mutation path, so the accumulated time becomes
// durable on persisted projects.
func (e *Engine) TogglePause(ctx context.Context) {
	now := e.clock()
	e.Apply(ctx, func(p *model.Project) {
		timer.TogglePause(&p.Timer, now)
	})
}

// TickTimer applies one accrual sample. Ticks are transient: they do
// not stamp lastModified, mark dirty, or trigger autosave — a
// persisted project would otherwise write once per second. Elapsed
// time becomes durable on the next real mutation or explicit save.
func (e *Engine) TickTimer(now time.Time) {
	timer.Tick(&e.active.Timer, now)
}

// SetActiveProject swaps the active slot. The dirty flag resets, a
// running incoming timer is resampled so no elapsed time is
// attributed to the swap, and the cross-session resumption flags are
// recorded.
func (e *Engine) SetActiveProject(ctx context.Context, p *model.Project) {
	e.active = p
	e.dirty = false
	e.pending = nil
	timer.Resample(&p.Timer, e.clock())
	e.recordSession(ctx)
}

// recordSession writes the resumption flags for the active project.
// Failure is non-fatal; the next swap rewrites them.
func (e *Engine) recordSession(ctx context.Context) {
	sess := model.Session{
		LastActiveProjectID: e.active.ID,
		WasUnsaved:          !e.active.Persisted(),
	}
	if err := e.store.SaveSession(ctx, sess); err != nil {
		e.notifyf(model.SeverityError, "Could not record session: %v", err)
	}
}

// SaveActiveProject validates and writes the active project. A fresh
// id is assigned on first save. On success the dirty flag clears and,
// for explicit saves only, a success notification is surfaced. On
// store failure an error notification is surfaced, the dirty flag is
// untouched, and no id sticks to a project that never reached the
// store.
func (e *Engine) SaveActiveProject(ctx context.Context, explicit bool) error {
	if strings.TrimSpace(e.active.Name) == "" {
		return ErrNameRequired
	}

	assignedID := ""
	if !e.active.Persisted() {
		assignedID = uuid.NewString()
		e.active.ID = assignedID
	}

	if err := e.store.PutProject(ctx, e.active); err != nil {
		if assignedID != "" {
			e.active.ID = ""
		}
		e.notifyf(model.SeverityError, "Save failed: %v", err)
		return &StoreError{Op: "saving project", Err: err}
	}

	e.dirty = false
	if assignedID != "" {
		// The project just gained a store identity; the resumption
		// flags still point at an ephemeral one.
		e.recordSession(ctx)
	}
	e.refreshProjects(ctx)
	if explicit {
		e.notifyf(model.SeveritySuccess, "Project %q saved", e.active.Name)
	}
	return nil
}

// DeleteProject removes a saved project and refreshes the cached
// list. When the deleted project was active, the most recently
// modified remaining project takes its place, or a fresh default when
// none remain.
func (e *Engine) DeleteProject(ctx context.Context, id string) {
	err := e.store.DeleteProject(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Already gone; fall through to refresh so the cached list
		// catches up.
	case err != nil:
		e.notifyf(model.SeverityError, "Delete failed: %v", err)
		return
	}

	e.refreshProjects(ctx)

	if e.active.ID == id {
		if len(e.projects) > 0 {
			e.SetActiveProject(ctx, e.projects[0].Clone())
		} else {
			e.startNewProject(ctx)
		}
	}
}

// RefreshProjects reloads the cached saved-project list from the
// store.
func (e *Engine) RefreshProjects(ctx context.Context) error {
	return e.refreshProjects(ctx)
}

func (e *Engine) refreshProjects(ctx context.Context) error {
	projects, err := e.store.ListProjects(ctx)
	if err != nil {
		e.notifyf(model.SeverityError, "Could not list projects: %v", err)
		return &StoreError{Op: "listing projects", Err: err}
	}
	e.projects = projects
	return nil
}

// loadProject activates a saved project by id. A vanished id falls
// back to the most recently modified remaining project, or a fresh
// default.
func (e *Engine) loadProject(ctx context.Context, id string) {
	p, err := e.store.GetProject(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		e.notifyf(model.SeverityInfo, "Project no longer exists")
		e.refreshProjects(ctx)
		if len(e.projects) > 0 {
			e.SetActiveProject(ctx, e.projects[0].Clone())
		} else {
			e.startNewProject(ctx)
		}
		return
	case err != nil:
		e.notifyf(model.SeverityError, "Load failed: %v", err)
		return
	}
	e.SetActiveProject(ctx, p)
}

// startNewProject abandons the active slot for a fresh default
// project. A persisted predecessor stays in the store untouched.
func (e *Engine) startNewProject(ctx context.Context) {
	e.SetActiveProject(ctx, model.NewDefaultProject(e.clock()))
}

func (e *Engine) notifyf(sev model.Severity, format string, args ...any) {
	if e.notify == nil {
		return
	}
	e.notify(model.Notification{
		Message:   fmt.Sprintf(format, args...),
		Severity:  sev,
		CreatedAt: e.clock(),
	})
}
