package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/codec"
	"github.com/metalagman/achievements/internal/dispatch"
	"github.com/metalagman/achievements/internal/telemetry"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMemStore(blob string) *memStore {
	return &memStore{data: map[string]string{codec.StoreKey: blob}}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.sets++
	return nil
}

type noteRecorder struct {
	mu    sync.Mutex
	notes []dispatch.Notification
}

func (r *noteRecorder) Notify(_ context.Context, n dispatch.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

func (r *noteRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notes))
	for _, n := range r.notes {
		out = append(out, n.Message)
	}
	return out
}

const seedTree = `[
	{"name":"Goblin slayer","state":"INCOMPLETE","children":[
		{"type":"SLAY","name":"Goblin","quantity":1,"count":0,"state":"INCOMPLETE","progress":"INCOMPLETE","children":[]}
	]},
	{"type":"CHUNK","regionId":12850,"state":"INCOMPLETE","progress":"INCOMPLETE","children":[]}
]`

func startTracker(t *testing.T, store *memStore, notes *noteRecorder) (*Tracker, func()) {
	t.Helper()

	tr := New(telemetry.NewMirror(), store, notes, Options{
		Ironman:       true,
		Notifications: dispatch.Options{Enabled: true, ReadyTicks: 2},
		Display:       Display{AchievementInProgress: true, RequirementInProgress: true},
		SweepInterval: time.Hour,
	})
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- tr.Run(ctx) }()
	stop := func() {
		cancel()
		select {
		case err := <-errc:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatalf("tracker did not stop")
		}
	}
	return tr, stop
}

func submitAll(t *testing.T, tr *Tracker, evs ...telemetry.Event) {
	t.Helper()
	for _, ev := range evs {
		require.NoError(t, tr.Submit(context.Background(), ev))
	}
}

func TestTrackerEndToEnd(t *testing.T) {
	t.Parallel()

	store := newMemStore(seedTree)
	notes := &noteRecorder{}
	tr, stop := startTracker(t, store, notes)

	goblin := &telemetry.NPC{Index: 7, ID: 100, Name: "Goblin", HealthRatio: 10, HealthScale: 30}
	submitAll(t, tr,
		telemetry.Catalog{NPCHealth: map[int]int{100: 5}},
		telemetry.GameStateChanged{State: telemetry.LoggedIn},
		telemetry.GameTick{Tick: 1, RegionID: 12850},
		telemetry.GameTick{Tick: 2, RegionID: 12850},
		telemetry.GameTick{Tick: 3, RegionID: 12850, NPCs: []telemetry.NPC{*goblin}},
		telemetry.HitsplatApplied{NPC: goblin, Hitsplat: telemetry.Hitsplat{Type: telemetry.HitsplatDamageMe, Amount: 5}},
		telemetry.ActorDeath{NPC: goblin},
	)

	view, err := tr.View(context.Background())
	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.Equal(t, "COMPLETE", view[0].State)
	assert.Equal(t, "Defeat a Goblin (1/1)", view[0].Children[0].Label)
	assert.Equal(t, "0/0", view[0].Children[0].Path)
	assert.Equal(t, "COMPLETE", view[1].State)
	assert.Equal(t, "CHUNK", view[1].Kind)

	stop()

	assert.Equal(t, []string{
		"Achievement Requirement complete: Defeat a Goblin (1/1)",
		"Congratulations! You have completed Goblin slayer. Your Achievements have been updated.",
	}, notes.messages(), "the chunk completed before the client was ready")

	blob, err := store.Get(context.Background(), codec.StoreKey)
	require.NoError(t, err)
	roots, err := codec.Decode([]byte(blob))
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, achievement.Complete, roots[0].State())
	assert.Equal(t, 1, roots[0].Children()[0].Requirement.Spec.(*achievement.SlaySpec).Count)
}

func TestTrackerDoClickIsSilent(t *testing.T) {
	t.Parallel()

	store := newMemStore(seedTree)
	notes := &noteRecorder{}
	tr, stop := startTracker(t, store, notes)

	submitAll(t, tr,
		telemetry.GameStateChanged{State: telemetry.LoggedIn},
		telemetry.GameTick{Tick: 10, RegionID: 1},
	)
	err := tr.Do(context.Background(), func(tree *achievement.Tree) ([]achievement.Transition, error) {
		e, err := tree.Lookup(achievement.Path{0})
		if err != nil {
			return nil, err
		}
		return tree.Click(e.ID())
	})
	require.NoError(t, err)

	view, err := tr.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "COMPLETE", view[0].State)
	assert.True(t, view[0].Forced)

	stop()
	assert.Empty(t, notes.messages())
}

func TestTrackerConfigureDisablesNotifications(t *testing.T) {
	t.Parallel()

	store := newMemStore(seedTree)
	notes := &noteRecorder{}
	tr, stop := startTracker(t, store, notes)

	require.NoError(t, tr.Configure(context.Background(), Options{
		Ironman:       false,
		Notifications: dispatch.Options{Enabled: false, ReadyTicks: 2},
	}))
	select {
	case <-tr.Updates():
	case <-time.After(time.Second):
		t.Fatalf("configure should signal a refresh")
	}

	goblin := &telemetry.NPC{Index: 3, ID: 100, Name: "Goblin", HealthRatio: -1, HealthScale: -1}
	submitAll(t, tr,
		telemetry.GameStateChanged{State: telemetry.LoggedIn},
		telemetry.GameTick{Tick: 5, RegionID: 1},
		telemetry.GameTick{Tick: 6, RegionID: 1, NPCs: []telemetry.NPC{*goblin}},
		telemetry.HitsplatApplied{NPC: goblin, Hitsplat: telemetry.Hitsplat{Type: telemetry.HitsplatDamageMe, Amount: 1}},
		telemetry.ActorDeath{NPC: goblin},
	)

	view, err := tr.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "COMPLETE", view[0].State)

	stop()
	assert.Empty(t, notes.messages())
}

func TestTrackerMalformedLoadKeepsTree(t *testing.T) {
	t.Parallel()

	tr, stop := startTracker(t, newMemStore(seedTree), &noteRecorder{})
	defer stop()

	err := tr.Load(context.Background(), []byte(`[{"name":`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrMalformed))

	view, err := tr.View(context.Background())
	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.Equal(t, "Goblin slayer", view[0].Label)

	require.NoError(t, tr.Load(context.Background(), []byte(`[{"name":"fresh"}]`)))
	view, err = tr.View(context.Background())
	require.NoError(t, err)
	require.Len(t, view, 1)
	assert.Equal(t, "fresh", view[0].Label)
}

func TestTrackerMalformedStoreStartsEmpty(t *testing.T) {
	t.Parallel()

	tr, stop := startTracker(t, newMemStore(`not json`), &noteRecorder{})
	defer stop()

	view, err := tr.View(context.Background())
	require.NoError(t, err)
	assert.Empty(t, view)
}

func TestTrackerUnreadableStoreIsNotOverwritten(t *testing.T) {
	t.Parallel()

	store := newMemStore(`not json`)
	tr, stop := startTracker(t, store, &noteRecorder{})

	require.NoError(t, tr.Do(context.Background(), Add(nil, achievement.NewAchievement("edited"))))
	require.Error(t, tr.Load(context.Background(), []byte(`[{"name":`)))

	view, err := tr.View(context.Background())
	require.NoError(t, err)
	require.Len(t, view, 1)
	stop()

	assert.Equal(t, `not json`, store.data[codec.StoreKey])
	assert.Zero(t, store.sets)
}

func TestTrackerImportResumesPersistence(t *testing.T) {
	t.Parallel()

	store := newMemStore(`not json`)
	tr, stop := startTracker(t, store, &noteRecorder{})

	require.NoError(t, tr.Load(context.Background(), []byte(`[{"name":"imported"}]`)))
	require.NoError(t, tr.Do(context.Background(), Add(nil, achievement.NewAchievement("edited"))))
	stop()

	roots, err := codec.Decode([]byte(store.data[codec.StoreKey]))
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "imported", roots[0].Name)
	assert.Equal(t, "edited", roots[1].Name)
}

func TestTrackerSweepForgetsDespawnedNpcs(t *testing.T) {
	t.Parallel()

	notes := &noteRecorder{}
	tr, stop := startTracker(t, newMemStore(seedTree), notes)

	goblin := &telemetry.NPC{Index: 7, ID: 100, Name: "Goblin", HealthRatio: 10, HealthScale: 30}
	submitAll(t, tr,
		telemetry.GameStateChanged{State: telemetry.LoggedIn},
		telemetry.GameTick{Tick: 5, NPCs: []telemetry.NPC{*goblin}},
		telemetry.HitsplatApplied{NPC: goblin, Hitsplat: telemetry.Hitsplat{Type: telemetry.HitsplatDamageMe, Amount: 1}},
		telemetry.GameTick{Tick: 6},
	)
	require.NoError(t, tr.Sweep(context.Background()))
	submitAll(t, tr, telemetry.ActorDeath{NPC: goblin})

	view, err := tr.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INCOMPLETE", view[0].State)
	stop()
}

func TestTrackerStopped(t *testing.T) {
	t.Parallel()

	tr, stop := startTracker(t, newMemStore(""), &noteRecorder{})
	stop()

	err := tr.Submit(context.Background(), telemetry.GameTick{Tick: 1})
	assert.ErrorIs(t, err, ErrStopped)
	_, err = tr.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestBuildViewHonoursDisplay(t *testing.T) {
	t.Parallel()

	tree := achievement.NewTree(nil)
	root := achievement.NewAchievement("root")
	req := achievement.NewRequirement(&achievement.SlaySpec{Name: "Cow", Quantity: 2, Count: 1})
	req.Requirement.Progress = achievement.InProgress
	require.NoError(t, root.AddChild(req))
	_, err := tree.Append(achievement.Root, root)
	require.NoError(t, err)

	view := BuildView(tree, Display{AchievementInProgress: false, RequirementInProgress: true})
	assert.Equal(t, "INCOMPLETE", view[0].State)
	assert.Equal(t, "IN_PROGRESS", view[0].Children[0].State)
}
