package engine_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/htran/stitchcount/internal/engine"
	"github.com/htran/stitchcount/internal/model"
	"github.com/htran/stitchcount/internal/store"
)

// fakeStore is an in-memory store.Store with injectable failures.
type fakeStore struct {
	projects map[string]*model.Project
	session  model.Session

	putErr  error
	getErr  error
	listErr error
	delErr  error

	putCalls     int
	sessionSaves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{projects: make(map[string]*model.Project)}
}

func (f *fakeStore) PutProject(_ context.Context, p *model.Project) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	f.projects[p.ID] = p.Clone()
	return nil
}

func (f *fakeStore) GetProject(_ context.Context, id string) (*model.Project, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p.Clone(), nil
}

func (f *fakeStore) ListProjects(_ context.Context) ([]*model.Project, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Project
	for _, p := range f.projects {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

func (f *fakeStore) DeleteProject(_ context.Context, id string) error {
	if f.delErr != nil {
		return f.delErr
	}
	if _, ok := f.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeStore) SaveSession(_ context.Context, s model.Session) error {
	f.sessionSaves++
	f.session = s
	return nil
}

func (f *fakeStore) LoadSession(_ context.Context) (model.Session, error) {
	return f.session, nil
}

type testHarness struct {
	engine        *engine.Engine
	store         *fakeStore
	notifications []model.Notification
	now           time.Time
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		store: newFakeStore(),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.engine = engine.New(h.store,
		func(n model.Notification) { h.notifications = append(h.notifications, n) },
		engine.WithClock(func() time.Time { return h.now }),
	)
	return h
}

func (h *testHarness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func (h *testHarness) saveAs(t *testing.T, name string) {
	t.Helper()
	h.engine.RenameProject(context.Background(), name)
	require.NoError(t, h.engine.SaveActiveProject(context.Background(), false))
}

func TestIncrementAppendsHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.IncrementCounter(ctx, model.MainCounterID)
	h.advance(10 * time.Second)
	h.engine.IncrementCounter(ctx, model.MainCounterID)

	p := h.engine.Active()
	require.Equal(t, 2, p.MainCounter.Value)
	require.Len(t, p.History, 2)
	require.Equal(t, model.MainCounterID, p.History[0].CounterID)
}

func TestCounterNeverNegative(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.DecrementCounter(ctx, model.MainCounterID)
	h.engine.IncrementCounter(ctx, model.MainCounterID)
	h.engine.DecrementCounter(ctx, model.MainCounterID)
	h.engine.DecrementCounter(ctx, model.MainCounterID)
	h.engine.DecrementCounter(ctx, model.MainCounterID)

	require.Zero(t, h.engine.Active().MainCounter.Value)
	require.Empty(t, h.engine.Active().History)
}

func TestDecrementRemovesOnlyMostRecentEntry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	subID := h.engine.AddSubCounter(ctx, "Sleeve")

	h.engine.IncrementCounter(ctx, model.MainCounterID)
	h.advance(time.Second)
	h.engine.IncrementCounter(ctx, subID)
	h.advance(time.Second)
	h.engine.IncrementCounter(ctx, model.MainCounterID)

	h.engine.DecrementCounter(ctx, model.MainCounterID)

	p := h.engine.Active()
	require.Equal(t, 1, p.MainCounter.Value)
	require.Len(t, p.History, 2)
	// The sub-counter's entry survived, and main's oldest survived.
	var mainCount, subCount int
	for _, e := range p.History {
		switch e.CounterID {
		case model.MainCounterID:
			mainCount++
		case subID:
			subCount++
		}
	}
	require.Equal(t, 1, mainCount)
	require.Equal(t, 1, subCount)
}

func TestResetPurgesHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	subID := h.engine.AddSubCounter(ctx, "Sleeve")

	for i := 0; i < 3; i++ {
		h.engine.IncrementCounter(ctx, model.MainCounterID)
		h.engine.IncrementCounter(ctx, subID)
	}
	h.engine.ResetCounter(ctx, model.MainCounterID)

	p := h.engine.Active()
	require.Zero(t, p.MainCounter.Value)
	for _, e := range p.History {
		require.NotEqual(t, model.MainCounterID, e.CounterID)
	}
	require.Len(t, p.History, 3)
}

func TestDeleteSubCounterPurgesHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	subID := h.engine.AddSubCounter(ctx, "Sleeve")

	h.engine.IncrementCounter(ctx, subID)
	h.engine.IncrementCounter(ctx, model.MainCounterID)
	h.engine.DeleteSubCounter(ctx, subID)

	p := h.engine.Active()
	require.Nil(t, p.FindCounter(subID))
	require.Len(t, p.History, 1)
	require.Equal(t, model.MainCounterID, p.History[0].CounterID)
}

func TestMainCounterCannotBeDeleted(t *testing.T) {
	h := newHarness(t)

	h.engine.DeleteSubCounter(context.Background(), model.MainCounterID)

	require.NotNil(t, h.engine.Active().FindCounter(model.MainCounterID))
}

func TestEphemeralMutationMarksDirty(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.False(t, h.engine.Dirty())
	h.engine.IncrementCounter(ctx, model.MainCounterID)
	require.True(t, h.engine.Dirty())
	// Re-marking is idempotent.
	h.engine.IncrementCounter(ctx, model.MainCounterID)
	require.True(t, h.engine.Dirty())
	require.Zero(t, h.store.putCalls)
}

func TestPersistedMutationAutosavesSilently(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Cardigan")
	h.notifications = nil
	puts := h.store.putCalls

	h.engine.IncrementCounter(ctx, model.MainCounterID)

	require.False(t, h.engine.Dirty())
	require.Equal(t, puts+1, h.store.putCalls)
	// Silent: no success notification.
	require.Empty(t, h.notifications)
	require.Equal(t, 1, h.store.projects[h.engine.Active().ID].MainCounter.Value)
}

func TestFailedAutosaveKeepsMutationAndNotifies(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Cardigan")
	h.notifications = nil
	h.store.putErr = errors.New("disk full")

	h.engine.IncrementCounter(ctx, model.MainCounterID)

	// Optimistic: the in-memory mutation stands, no rollback.
	require.Equal(t, 1, h.engine.Active().MainCounter.Value)
	require.False(t, h.engine.Dirty())
	require.Len(t, h.notifications, 1)
	require.Equal(t, model.SeverityError, h.notifications[0].Severity)

	// The next mutation naturally retries with current state.
	h.store.putErr = nil
	h.engine.IncrementCounter(ctx, model.MainCounterID)
	require.Equal(t, 2, h.store.projects[h.engine.Active().ID].MainCounter.Value)
}

func TestSaveRejectsWhitespaceName(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.RenameProject(ctx, "   ")
	puts := h.store.putCalls
	err := h.engine.SaveActiveProject(ctx, true)

	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, h.engine.Active().ID)
	require.Equal(t, puts, h.store.putCalls)
	require.True(t, h.engine.Dirty())
}

func TestExplicitSaveAssignsIDAndNotifies(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.RenameProject(ctx, "Cardigan")
	require.NoError(t, h.engine.SaveActiveProject(ctx, true))

	p := h.engine.Active()
	require.NotEmpty(t, p.ID)
	require.False(t, h.engine.Dirty())
	require.Contains(t, h.store.projects, p.ID)

	var success int
	for _, n := range h.notifications {
		if n.Severity == model.SeveritySuccess {
			success++
		}
	}
	require.Equal(t, 1, success)
}

func TestFailedFirstSaveLeavesProjectEphemeral(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.RenameProject(ctx, "Cardigan")
	h.store.putErr = errors.New("disk full")

	err := h.engine.SaveActiveProject(ctx, true)

	var serr *engine.StoreError
	require.ErrorAs(t, err, &serr)
	require.Empty(t, h.engine.Active().ID)
	require.True(t, h.engine.Dirty())
}

func TestSaveRecordsSessionOnFirstPersist(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.RenameProject(ctx, "Cardigan")
	require.NoError(t, h.engine.SaveActiveProject(ctx, false))

	require.Equal(t, h.engine.Active().ID, h.store.session.LastActiveProjectID)
	require.False(t, h.store.session.WasUnsaved)
}

func TestSetActiveProjectResamplesRunningTimer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	incoming := model.NewDefaultProject(h.now.Add(-time.Hour))
	incoming.ID = "p-1"
	incoming.Name = "Cardigan"
	incoming.Timer.LastTick = h.now.Add(-time.Hour)

	h.engine.SetActiveProject(ctx, incoming)
	h.engine.TickTimer(h.now.Add(time.Second))

	// Only the one second after the swap accrued, not the hour gap.
	require.Equal(t, time.Second, h.engine.Active().Timer.Elapsed)
	require.Equal(t, "p-1", h.store.session.LastActiveProjectID)
	require.False(t, h.store.session.WasUnsaved)
}

func TestSetActiveEphemeralRecordsUnsaved(t *testing.T) {
	h := newHarness(t)

	h.engine.SetActiveProject(context.Background(), model.NewDefaultProject(h.now))

	require.True(t, h.store.session.WasUnsaved)
	require.Empty(t, h.store.session.LastActiveProjectID)
}

func TestTickIsTransient(t *testing.T) {
	h := newHarness(t)

	h.saveAs(t, "Cardigan")
	puts := h.store.putCalls
	before := h.engine.Active().LastModified

	h.engine.TickTimer(h.now.Add(time.Second))

	require.Equal(t, puts, h.store.putCalls)
	require.False(t, h.engine.Dirty())
	require.Equal(t, before, h.engine.Active().LastModified)
	require.Equal(t, time.Second, h.engine.Active().Timer.Elapsed)
}

func TestTogglePauseIsDurable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Cardigan")
	h.engine.TickTimer(h.now.Add(5 * time.Second))
	puts := h.store.putCalls

	h.engine.TogglePause(ctx)

	require.True(t, h.engine.Active().Timer.Paused)
	require.Equal(t, puts+1, h.store.putCalls)
	require.Equal(t, 5*time.Second, h.store.projects[h.engine.Active().ID].Timer.Elapsed)
}

func TestDeleteActiveActivatesMostRecent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Three saved projects, active is the newest.
	h.saveAs(t, "Oldest")
	oldestID := h.engine.Active().ID
	h.advance(time.Minute)

	h.engine.RequestNewProject(ctx)
	h.saveAs(t, "Middle")
	middleID := h.engine.Active().ID
	h.advance(time.Minute)

	h.engine.RequestNewProject(ctx)
	h.saveAs(t, "Active")
	activeID := h.engine.Active().ID

	h.engine.DeleteProject(ctx, activeID)

	// The most recently modified remaining project wins, not an
	// arbitrary one.
	require.Equal(t, middleID, h.engine.Active().ID)
	require.NotEqual(t, oldestID, h.engine.Active().ID)
	require.NotContains(t, h.store.projects, activeID)
}

func TestDeleteLastProjectFallsBackToDefault(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Only")
	id := h.engine.Active().ID

	h.engine.DeleteProject(ctx, id)

	require.Empty(t, h.engine.Active().ID)
	require.Zero(t, h.engine.Active().MainCounter.Value)
	require.True(t, h.store.session.WasUnsaved)
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "First")
	firstID := h.engine.Active().ID
	h.advance(time.Minute)
	h.engine.RequestNewProject(ctx)
	h.saveAs(t, "Second")
	secondID := h.engine.Active().ID

	h.engine.DeleteProject(ctx, firstID)

	require.Equal(t, secondID, h.engine.Active().ID)
}

func TestDeleteVanishedProjectRefreshesList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.saveAs(t, "Cardigan")
	h.engine.DeleteProject(ctx, "never-existed")

	// No error surfaced as fatal; the cached list stays coherent.
	require.Len(t, h.engine.Snapshot().Saved, 1)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.engine.IncrementCounter(ctx, model.MainCounterID)
	snap := h.engine.Snapshot()

	snap.Project.MainCounter.Value = 99
	snap.Project.History[0].CounterID = "tampered"

	require.Equal(t, 1, h.engine.Active().MainCounter.Value)
	require.Equal(t, model.MainCounterID, h.engine.Active().History[0].CounterID)
}
