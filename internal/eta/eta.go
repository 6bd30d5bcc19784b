// Package eta derives a human-facing completion estimate from a
// project's timer and increment history.
//
// The estimate is a coarse heuristic: total elapsed time divided by
// the number of recorded increments, preferring the counter's own
// series and falling back to the whole history when the counter has
// none. It depends entirely on history density and is not a
// statistically rigorous forecast.
package eta

import (
	"fmt"
	"time"

	"github.com/htran/stitchcount/internal/history"
	"github.com/htran/stitchcount/internal/model"
)

// Estimate returns the formatted time remaining until the counter
// reaches its target. The second return is false when no estimate is
// available: unknown counter, no target set, target already met, or
// no history to average over.
func Estimate(p *model.Project, counterID string) (string, bool) {
	c := p.FindCounter(counterID)
	if c == nil || !c.HasTarget() || c.Target <= c.Value {
		return "", false
	}

	series := history.ForCounter(p.History, counterID)
	if len(series) == 0 {
		series = history.Sorted(p.History)
	}
	if len(series) == 0 {
		return "", false
	}

	avg := p.Timer.Elapsed / time.Duration(len(series))
	remaining := time.Duration(c.Target-c.Value) * avg

	return FormatDuration(ceilToMinute(remaining)), true
}

// ceilToMinute rounds d up to a whole minute.
func ceilToMinute(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	m := d / time.Minute
	if d%time.Minute != 0 {
		m++
	}
	return m * time.Minute
}

// FormatDuration renders a remaining duration for display: below one
// minute "less than 1 minute", below an hour "~N min", otherwise
// "~Hh Mm".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than 1 minute"
	}
	minutes := int(d / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("~%d min", minutes)
	}
	return fmt.Sprintf("~%dh %dm", minutes/60, minutes%60)
}
