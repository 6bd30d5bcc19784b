package model

import (
	"encoding/json"
	"time"
)

// MainCounterID is the reserved identifier of every project's primary
// counter.
const MainCounterID = "main"

// Project is a single counting project: one main counter, optional
// sub-counters, a work timer, and the increment history the ETA is
// derived from.
//
// A project with an empty ID is ephemeral: it exists only in process
// memory until it is saved for the first time.
type Project struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Notes        string         `json:"notes"`
	PatternURL   string         `json:"pattern_url"`
	LastModified time.Time      `json:"last_modified"`
	Timer        Timer          `json:"timer"`
	MainCounter  Counter        `json:"main_counter"`
	SubCounters  []Counter      `json:"sub_counters"`
	History      []HistoryEntry `json:"increment_history"`
}

// Counter tracks a single non-negative count toward an optional target.
type Counter struct {
	// ID is unique within the project; "main" is reserved.
	ID string `json:"id"`

	// Name is the user-facing label.
	Name string `json:"name"`

	// Value is the current count. Never negative.
	Value int `json:"value"`

	// Target is the goal value. Zero means no target is set.
	Target int `json:"target"`
}

// HasTarget reports whether a completion target is set.
func (c Counter) HasTarget() bool {
	return c.Target >= 1
}

// Timer accumulates elapsed working time from wall-clock samples.
type Timer struct {
	// Elapsed is the accumulated working time. Monotonically
	// non-decreasing while running.
	Elapsed time.Duration

	// Paused stops accrual without losing elapsed time.
	Paused bool

	// LastTick is the wall-clock time of the last accrual sample.
	// Meaningful only while running.
	LastTick time.Time
}

// timerDoc is the stored document form of Timer; elapsed time is kept
// as integer milliseconds.
type timerDoc struct {
	TotalElapsedMs int64     `json:"total_elapsed_ms"`
	Paused         bool      `json:"paused"`
	LastTick       time.Time `json:"last_tick"`
}

// MarshalJSON writes the timer in its stored document form.
func (t Timer) MarshalJSON() ([]byte, error) {
	return json.Marshal(timerDoc{
		TotalElapsedMs: t.Elapsed.Milliseconds(),
		Paused:         t.Paused,
		LastTick:       t.LastTick,
	})
}

// UnmarshalJSON reads the timer from its stored document form.
func (t *Timer) UnmarshalJSON(data []byte) error {
	var doc timerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	t.Elapsed = time.Duration(doc.TotalElapsedMs) * time.Millisecond
	t.Paused = doc.Paused
	t.LastTick = doc.LastTick
	return nil
}

// HistoryEntry records a single counter increment. CounterID is a
// plain identifier, not a live reference: entries for a deleted
// counter are pruned when the counter goes away.
type HistoryEntry struct {
	CounterID string    `json:"counter_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDefaultProject returns a fresh ephemeral project with a
// zero-valued main counter, an empty history, and a running timer.
func NewDefaultProject(now time.Time) *Project {
	return &Project{
		LastModified: now,
		Timer: Timer{
			LastTick: now,
		},
		MainCounter: Counter{
			ID:   MainCounterID,
			Name: "Rows",
		},
	}
}

// Persisted reports whether the project has a store identity.
func (p *Project) Persisted() bool {
	return p.ID != ""
}

// FindCounter resolves a counter id within the project. The reserved
// id "main" resolves to the main counter; all others are looked up in
// the sub-counter list. Returns nil when no counter matches.
func (p *Project) FindCounter(id string) *Counter {
	if id == MainCounterID {
		return &p.MainCounter
	}
	for i := range p.SubCounters {
		if p.SubCounters[i].ID == id {
			return &p.SubCounters[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the project. Used for read-only
// snapshots handed to the presentation layer.
func (p *Project) Clone() *Project {
	cp := *p
	cp.SubCounters = append([]Counter(nil), p.SubCounters...)
	cp.History = append([]HistoryEntry(nil), p.History...)
	return &cp
}
