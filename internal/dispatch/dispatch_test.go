package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

type fakeSink struct {
	notes    []Notification
	persists int
	refresh  int
}

func (s *fakeSink) Notify(n Notification) { s.notes = append(s.notes, n) }
func (s *fakeSink) Persist()              { s.persists++ }
func (s *fakeSink) Refresh()              { s.refresh++ }

func loggedIn(tick int) *telemetry.Mirror {
	m := telemetry.NewMirror()
	m.Observe(telemetry.GameStateChanged{State: telemetry.LoggedIn})
	m.Observe(telemetry.GameTick{Tick: tick})
	return m
}

func TestDispatchAnnouncesEarnedCompletionOnce(t *testing.T) {
	t.Parallel()

	m := loggedIn(0)
	sink := &fakeSink{}
	d := New(m, sink, Options{Enabled: true, Color: "#781478", ReadyTicks: 2})
	d.MarkLogin()
	m.Observe(telemetry.GameTick{Tick: 3})

	bus := event.NewBus()
	tree := achievement.NewTree(bus)
	root := achievement.NewAchievement("Goblin slayer")
	require.NoError(t, root.AddChild(achievement.NewRequirement(&achievement.SlaySpec{Name: "Goblin", Quantity: 1})))
	ts, err := tree.Append(achievement.Root, root)
	require.NoError(t, err)
	d.Dispatch(ts, tree.TakeDirty())
	assert.Empty(t, sink.notes)
	assert.Equal(t, 1, sink.persists)

	bus.Publish(event.KilledNpc{NPC: telemetry.NPC{Name: "Goblin"}})
	d.Dispatch(tree.Drain(), tree.TakeDirty())
	require.Len(t, sink.notes, 2)
	assert.Equal(t, "Achievement Requirement complete: Defeat a Goblin (1/1)", sink.notes[0].Message)
	assert.True(t, sink.notes[0].Requirement)
	assert.Equal(t, "Congratulations! You have completed Goblin slayer. Your Achievements have been updated.", sink.notes[1].Message)
	assert.Equal(t, "#781478", sink.notes[1].Color)
	assert.Equal(t, 2, sink.persists)
	assert.Equal(t, 2, sink.refresh)

	d.Dispatch(tree.Refresh(), tree.TakeDirty())
	assert.Len(t, sink.notes, 2)
	assert.Equal(t, 2, sink.persists, "settled tree requests nothing")
}

func TestDispatchForcedCompletionIsSilent(t *testing.T) {
	t.Parallel()

	m := loggedIn(10)
	sink := &fakeSink{}
	d := New(m, sink, Options{Enabled: true})

	tree := achievement.NewTree(event.NewBus())
	e := achievement.NewRequirement(&achievement.AbstractSpec{Name: "Pet a cat"})
	_, err := tree.Append(achievement.Root, e)
	require.NoError(t, err)
	tree.TakeDirty()

	ts, err := tree.Click(e.ID())
	require.NoError(t, err)
	d.Dispatch(ts, tree.TakeDirty())

	assert.Equal(t, achievement.Complete, e.State())
	assert.Empty(t, sink.notes)
	assert.Equal(t, 1, sink.persists)
	assert.Equal(t, 1, sink.refresh)
}

func TestDispatchHoldsNotificationsUntilReady(t *testing.T) {
	t.Parallel()

	m := loggedIn(5)
	sink := &fakeSink{}
	d := New(m, sink, Options{Enabled: true, ReadyTicks: 2})
	d.MarkLogin()

	tr := achievement.Transition{Node: achievement.NewAchievement("a"), From: achievement.InProgress, To: achievement.Complete, Cause: achievement.CauseRefresh}
	d.Dispatch([]achievement.Transition{tr}, false)
	assert.False(t, d.Ready())
	assert.Empty(t, sink.notes)
	assert.Equal(t, 1, sink.persists, "persistence is never held back")

	m.Observe(telemetry.GameTick{Tick: 8})
	assert.True(t, d.Ready())
	d.Dispatch([]achievement.Transition{tr}, false)
	assert.Len(t, sink.notes, 1)

	d.SetOptions(Options{Enabled: false})
	d.Dispatch([]achievement.Transition{tr}, false)
	assert.Len(t, sink.notes, 1)
}

func TestDispatchCounterOnlyChangePersists(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	d := New(telemetry.NewMirror(), sink, Options{})
	d.Dispatch(nil, false)
	assert.Zero(t, sink.persists)
	d.Dispatch(nil, true)
	assert.Equal(t, 1, sink.persists)
	assert.Equal(t, 1, sink.refresh)
}
