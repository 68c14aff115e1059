package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withStates(states ...State) []*Element {
	out := make([]*Element, len(states))
	for i, s := range states {
		out[i] = &Element{state: s}
	}
	return out
}

func TestChildrenState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		states []State
		want   State
	}{
		{name: "no children", want: Complete},
		{name: "all complete", states: []State{Complete, Complete}, want: Complete},
		{name: "all incomplete", states: []State{Incomplete, Incomplete}, want: Incomplete},
		{name: "one complete", states: []State{Incomplete, Complete}, want: InProgress},
		{name: "one in progress", states: []State{InProgress, Incomplete}, want: InProgress},
		{name: "in progress and complete", states: []State{InProgress, Complete}, want: InProgress},
		{name: "single in progress", states: []State{InProgress}, want: InProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ChildrenState(withStates(tt.states...)))
		})
	}
}

func TestChildrenStateExhaustive(t *testing.T) {
	t.Parallel()

	all := []State{Incomplete, InProgress, Complete}
	var gen func(prefix []State, n int)
	gen = func(prefix []State, n int) {
		got := ChildrenState(withStates(prefix...))
		allComplete, anyStarted := true, false
		for _, s := range prefix {
			if s != Complete {
				allComplete = false
			}
			if s != Incomplete {
				anyStarted = true
			}
		}
		want := Incomplete
		switch {
		case allComplete:
			want = Complete
		case anyStarted:
			want = InProgress
		}
		assert.Equal(t, want, got, "children %v", prefix)
		if n == 0 {
			return
		}
		for _, s := range all {
			gen(append(append([]State(nil), prefix...), s), n-1)
		}
	}
	gen(nil, 4)
}

func TestRequirementBlendsProgressWithChildren(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		progress State
		children []State
		want     State
	}{
		{name: "leaf mirrors progress", progress: InProgress, want: InProgress},
		{name: "complete with incomplete child", progress: Complete, children: []State{Incomplete}, want: InProgress},
		{name: "complete with complete children", progress: Complete, children: []State{Complete}, want: Complete},
		{name: "incomplete with started child", progress: Incomplete, children: []State{InProgress}, want: InProgress},
		{name: "incomplete with incomplete children", progress: Incomplete, children: []State{Incomplete}, want: Incomplete},
		{name: "in progress wins", progress: InProgress, children: []State{Complete}, want: InProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewRequirement(&AbstractSpec{Name: "r"})
			e.Requirement.Progress = tt.progress
			e.children = withStates(tt.children...)
			e.refresh(CauseRefresh)
			assert.Equal(t, tt.want, e.State())
		})
	}
}

func TestForceCompleteClearsOnceOrganicallyComplete(t *testing.T) {
	t.Parallel()

	e := NewAchievement("parent")
	e.children = withStates(Incomplete)
	e.forceComplete = true

	tr, ok := e.refresh(CauseClick)
	assert.True(t, ok)
	assert.True(t, tr.Forced)
	assert.Equal(t, Complete, e.State())
	assert.True(t, e.ForceComplete())

	e.children[0].state = Complete
	_, ok = e.refresh(CauseEvent)
	assert.False(t, ok, "state was already complete")
	assert.False(t, e.ForceComplete())

	e.children[0].state = Incomplete
	e.refresh(CauseEvent)
	assert.Equal(t, Incomplete, e.State())
}

func TestForcedAbstractLeafStaysForced(t *testing.T) {
	t.Parallel()

	e := NewRequirement(&AbstractSpec{Name: "manual"})
	e.forceComplete = true
	e.refresh(CauseClick)
	e.refresh(CauseRefresh)

	assert.Equal(t, Complete, e.State())
	assert.True(t, e.ForceComplete())
}

func TestTransitionCompleted(t *testing.T) {
	t.Parallel()

	assert.True(t, Transition{From: InProgress, To: Complete, Cause: CauseEvent}.Completed())
	assert.True(t, Transition{From: Incomplete, To: Complete, Cause: CauseRefresh}.Completed())
	assert.False(t, Transition{From: Incomplete, To: Complete, Forced: true, Cause: CauseEvent}.Completed())
	assert.False(t, Transition{From: Incomplete, To: Complete, Cause: CauseEdit}.Completed())
	assert.False(t, Transition{From: Incomplete, To: Complete, Cause: CauseReset}.Completed())
	assert.False(t, Transition{From: Incomplete, To: InProgress, Cause: CauseEvent}.Completed())
}
