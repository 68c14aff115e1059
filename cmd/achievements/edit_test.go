package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/tracker"
)

func TestElementFlags_Build(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags elementFlags
		label string
		kind  achievement.Kind
	}{
		{
			name:  "achievement",
			flags: elementFlags{name: "Goblin slayer"},
			label: "Goblin slayer",
		},
		{
			name:  "skill xp",
			flags: elementFlags{kind: "skill", skill: "mining", target: "xp", value: 1000, quantity: 1},
			label: "1000 Mining XP",
			kind:  achievement.KindSkill,
		},
		{
			name:  "dropped item",
			flags: elementFlags{kind: "item", name: "Bones", quantity: 10, tracking: "dropped"},
			label: "Bones (0/10)",
			kind:  achievement.KindItem,
		},
		{
			name:  "proper noun",
			flags: elementFlags{kind: "SLAY", name: "Obor", quantity: 1, properNoun: true},
			label: "Defeat Obor (0/1)",
			kind:  achievement.KindSlay,
		},
		{
			name:  "default quest",
			flags: elementFlags{kind: "quest", quantity: 1},
			label: "Complete Cook's Assistant",
			kind:  achievement.KindQuest,
		},
		{
			name:  "chunk nickname",
			flags: elementFlags{kind: "chunk", regionID: 12850, nickname: "Lumbridge", quantity: 1},
			label: "Unlock Lumbridge",
			kind:  achievement.KindChunk,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, err := tc.flags.build()
			require.NoError(t, err)
			assert.Equal(t, tc.label, e.Label())
			if tc.kind == "" {
				assert.False(t, e.IsRequirement())
				return
			}
			require.True(t, e.IsRequirement())
			assert.Equal(t, tc.kind, e.Requirement.Kind())
		})
	}
}

func TestElementFlags_BuildErrors(t *testing.T) {
	t.Parallel()

	for _, f := range []elementFlags{
		{},
		{kind: "fishing", quantity: 1},
		{kind: "item", name: "Bones", quantity: 0, tracking: "inventory"},
		{kind: "item", name: "Bones", quantity: 1, tracking: "bank"},
		{kind: "skill", skill: "ATTACK", target: "boosted", quantity: 1},
	} {
		if _, err := f.build(); err == nil {
			t.Fatalf("build(%+v) should fail", f)
		}
	}
}

func TestRenderNodes(t *testing.T) {
	t.Parallel()

	nodes := []tracker.Node{{
		Path:  "0",
		Label: "Goblin slayer",
		State: "IN_PROGRESS",
		Children: []tracker.Node{
			{Path: "0/0", Label: "Defeat a Goblin (1/1)", State: "COMPLETE", Forced: true},
		},
	}}

	var tree strings.Builder
	require.NoError(t, renderNodes(&tree, nodes, "tree"))
	assert.Equal(t, "[~] Goblin slayer  #0\n  [x] Defeat a Goblin (1/1) (forced)  #0/0\n", tree.String())

	var y strings.Builder
	require.NoError(t, renderNodes(&y, nodes, "yaml"))
	assert.Contains(t, y.String(), "label: Goblin slayer")

	var empty strings.Builder
	require.NoError(t, renderNodes(&empty, nil, "tree"))
	assert.Equal(t, "no achievements\n", empty.String())

	assert.Error(t, renderNodes(&empty, nodes, "xml"))
}
