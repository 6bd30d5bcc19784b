package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/htran/stitchcount/internal/engine"
	"github.com/htran/stitchcount/internal/model"
)

func TestRequestDeleteCounterDefersMutation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	subID := h.engine.AddSubCounter(ctx, "Sleeve")
	h.engine.IncrementCounter(ctx, subID)

	action := h.engine.RequestDeleteSubCounter(subID)

	require.NotNil(t, action)
	require.Equal(t, engine.PendingDeleteCounter, action.Kind)
	require.Contains(t, action.Message, "Sleeve")
	// Nothing mutated before confirmation.
	require.NotNil(t, h.engine.Active().FindCounter(subID))

	h.engine.ConfirmPending(ctx)

	require.Nil(t, h.engine.Active().FindCounter(subID))
	require.Nil(t, h.engine.Pending())
}

func TestCancelPendingIsAlwaysSafe(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	subID := h.engine.AddSubCounter(ctx, "Sleeve")

	h.engine.RequestDeleteSubCounter(subID)
	h.engine.CancelPending()

	require.Nil(t, h.engine.Pending())
	require.NotNil(t, h.engine.Active().FindCounter(subID))

	// Confirming after a cancel is a no-op.
	h.engine.ConfirmPending(ctx)
	require.NotNil(t, h.engine.Active().FindCounter(subID))
}

func TestNewRequestReplacesPrior(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.engine.AddSubCounter(ctx, "Sleeve")
	second := h.engine.AddSubCounter(ctx, "Collar")

	h.engine.RequestDeleteSubCounter(first)
	h.engine.RequestDeleteSubCounter(second)
	h.engine.ConfirmPending(ctx)

	// Only the replacement ran; no stacking.
	require.NotNil(t, h.engine.Active().FindCounter(first))
	require.Nil(t, h.engine.Active().FindCounter(second))
}

func TestLoadWhileCleanRunsImmediately(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Cardigan")
	savedID := h.engine.Active().ID
	h.advance(time.Minute)
	h.engine.RequestNewProject(ctx)
	require.Empty(t, h.engine.Active().ID)

	action := h.engine.RequestLoadProject(ctx, savedID)

	require.Nil(t, action)
	require.Equal(t, savedID, h.engine.Active().ID)
}

func TestLoadWhileDirtyNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Cardigan")
	savedID := h.engine.Active().ID
	h.advance(time.Minute)
	h.engine.RequestNewProject(ctx)
	h.engine.IncrementCounter(ctx, model.MainCounterID)
	require.True(t, h.engine.Dirty())

	action := h.engine.RequestLoadProject(ctx, savedID)

	require.NotNil(t, action)
	require.Equal(t, engine.PendingDiscardAndLoad, action.Kind)
	require.Empty(t, h.engine.Active().ID)

	h.engine.ConfirmPending(ctx)

	require.Equal(t, savedID, h.engine.Active().ID)
	require.False(t, h.engine.Dirty())
}

func TestNewProjectWhileDirtyNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.IncrementCounter(ctx, model.MainCounterID)
	action := h.engine.RequestNewProject(ctx)

	require.NotNil(t, action)
	require.Equal(t, engine.PendingDiscardAndNew, action.Kind)
	require.Equal(t, 1, h.engine.Active().MainCounter.Value)

	h.engine.ConfirmPending(ctx)

	require.Zero(t, h.engine.Active().MainCounter.Value)
	require.False(t, h.engine.Dirty())
}

func TestStartNewDoesNotDeleteSavedPredecessor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Cardigan")
	savedID := h.engine.Active().ID

	h.engine.RequestNewProject(ctx)

	// Abandoning the slot never converts or removes the stored copy.
	require.Empty(t, h.engine.Active().ID)
	require.Contains(t, h.store.projects, savedID)
}

func TestConfirmedDeleteProjectRuns(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Cardigan")
	savedID := h.engine.Active().ID

	action := h.engine.RequestDeleteProject(savedID, "Cardigan")
	require.Equal(t, engine.PendingDeleteProject, action.Kind)
	require.Contains(t, h.store.projects, savedID)

	h.engine.ConfirmPending(ctx)

	require.NotContains(t, h.store.projects, savedID)
	require.Empty(t, h.engine.Active().ID)
}
