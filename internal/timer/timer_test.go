package timer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/htran/stitchcount/internal/model"
	"github.com/htran/stitchcount/internal/timer"
)

func TestTickAccrues(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := model.Timer{LastTick: base}

	timer.Tick(&tm, base.Add(time.Second))
	timer.Tick(&tm, base.Add(3*time.Second))

	require.Equal(t, 3*time.Second, tm.Elapsed)
	require.Equal(t, base.Add(3*time.Second), tm.LastTick)
}

func TestTickPausedIsNoop(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := model.Timer{Paused: true, LastTick: base}

	timer.Tick(&tm, base.Add(time.Minute))

	require.Zero(t, tm.Elapsed)
	require.Equal(t, base, tm.LastTick)
}

func TestTickZeroLastTick(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := model.Timer{}

	timer.Tick(&tm, now)

	require.Zero(t, tm.Elapsed)
	require.Equal(t, now, tm.LastTick)
}

func TestTickClockSkewNeverNegative(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := model.Timer{LastTick: base}

	timer.Tick(&tm, base.Add(2*time.Second))
	// Clock went backwards between samples.
	timer.Tick(&tm, base.Add(time.Second))

	require.Equal(t, 2*time.Second, tm.Elapsed)
	require.GreaterOrEqual(t, tm.Elapsed, time.Duration(0))
	require.Equal(t, base.Add(time.Second), tm.LastTick)
}

func TestTogglePauseResamplesOnResume(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := model.Timer{LastTick: base}

	timer.TogglePause(&tm, base.Add(time.Second))
	require.True(t, tm.Paused)

	// A long pause; resuming must not count it.
	resume := base.Add(10 * time.Minute)
	timer.TogglePause(&tm, resume)
	require.False(t, tm.Paused)
	require.Equal(t, resume, tm.LastTick)

	timer.Tick(&tm, resume.Add(time.Second))
	require.Equal(t, time.Second, tm.Elapsed)
}

func TestResampleOnlyWhileRunning(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	running := model.Timer{LastTick: base}
	timer.Resample(&running, base.Add(time.Hour))
	require.Equal(t, base.Add(time.Hour), running.LastTick)

	paused := model.Timer{Paused: true, LastTick: base}
	timer.Resample(&paused, base.Add(time.Hour))
	require.Equal(t, base, paused.LastTick)
}
