// Package timer implements wall-clock accrual for a project's work
// timer. It is a pure function of (timer, now): the periodic cadence
// that drives it lives outside, in the application's ticker.
package timer

import (
	"time"

	"github.com/htran/stitchcount/internal/model"
)

// Tick applies one accrual sample at now. It is a no-op while the
// timer is paused. A zero, stale, or future LastTick contributes zero
// elapsed time for this sample; accrual never goes negative.
func Tick(t *model.Timer, now time.Time) {
	if t.Paused {
		return
	}
	if !t.LastTick.IsZero() && now.After(t.LastTick) {
		t.Elapsed += now.Sub(t.LastTick)
	}
	t.LastTick = now
}

// TogglePause flips the paused state. When transitioning back to
// running, LastTick is resampled so the paused interval is never
// counted.
func TogglePause(t *model.Timer, now time.Time) {
	t.Paused = !t.Paused
	if !t.Paused {
		t.LastTick = now
	}
}

// Resample resets LastTick to now without accruing. Used when a
// project becomes active so no elapsed time is attributed to the swap
// itself.
func Resample(t *model.Timer, now time.Time) {
	if !t.Paused {
		t.LastTick = now
	}
}
