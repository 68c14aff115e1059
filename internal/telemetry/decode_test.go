package telemetry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SelectsEventByType(t *testing.T) {
	t.Parallel()

	ev, err := Decode([]byte(`{"type":"hitsplat_applied","npc":{"index":7,"id":3029,"name":"Goblin","healthRatio":-1,"healthScale":-1},"hitsplat":{"hitsplatType":"DAMAGE_ME","amount":4}}`))
	require.NoError(t, err)

	hit, ok := ev.(HitsplatApplied)
	require.True(t, ok, "got %T", ev)
	require.NotNil(t, hit.NPC)
	assert.Equal(t, 7, hit.NPC.Index)
	assert.True(t, hit.NPC.HealthHidden())
	assert.True(t, hit.Hitsplat.Mine())
	assert.False(t, hit.Hitsplat.Others())
	assert.Equal(t, 4, hit.Hitsplat.Amount)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"type":"teleport"}`))
	assert.True(t, errors.Is(err, ErrUnknownEvent))

	_, err = Decode([]byte(`{"tick":1}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{not json`))
	assert.Error(t, err)
}

func TestScanner_SkipsCommentsAndReportsLine(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"# session start",
		`{"type":"game_state_changed","state":"LOGGED_IN"}`,
		"",
		`{"type":"game_tick","tick":3,"regionId":12850}`,
		`{"type":"bogus"}`,
	}, "\n")

	sc := NewScanner(strings.NewReader(input))
	var got []Event
	for sc.Scan() {
		got = append(got, sc.Event())
	}
	require.Len(t, got, 2)
	assert.Equal(t, GameStateChanged{State: LoggedIn}, got[0])
	assert.Equal(t, 12850, got[1].(GameTick).RegionID)
	require.Error(t, sc.Err())
	assert.Contains(t, sc.Err().Error(), "line 5")
}

func TestMirror_FoldsEvents(t *testing.T) {
	t.Parallel()

	m := NewMirror()
	m.Observe(Catalog{
		Items:     map[int]string{1333: "Rune scimitar"},
		NPCHealth: map[int]int{3029: 5},
		Quests:    []Quest{{ID: 1, Name: "Cook's Assistant"}},
	})
	m.Observe(GameStateChanged{State: LoggedIn})
	m.Observe(StatChanged{Skill: "Attack", XP: 83, Level: 2})
	m.Observe(QuestVarChanged{QuestID: 1, State: QuestInProgress})
	m.Observe(ItemContainerChanged{ContainerID: InventoryContainerID, Items: []ItemStack{{ID: 1333, Quantity: 1}}})
	m.Observe(GameTick{Tick: 10, RegionID: 12850, NPCs: []NPC{{Index: 1, ID: 3029, Name: "Goblin"}}})

	assert.Equal(t, LoggedIn, m.GameState())
	assert.Equal(t, 2, m.RealSkillLevel("Attack"))
	assert.Equal(t, 1, m.RealSkillLevel("Mining"))
	assert.Equal(t, 83, m.SkillExperience("Attack"))
	assert.Equal(t, QuestInProgress, m.QuestState(1))
	assert.Equal(t, QuestNotStarted, m.QuestState(2))
	assert.Equal(t, "Rune scimitar", m.ItemName(1333))
	inv, ok := m.Inventory()
	require.True(t, ok)
	assert.Len(t, inv, 1)
	assert.Equal(t, 12850, m.PlayerRegionID())
	assert.Equal(t, 10, m.TickCount())
	hp, ok := m.NPCMaxHealth(3029)
	assert.True(t, ok)
	assert.Equal(t, 5, hp)
	assert.Len(t, m.NPCs(), 1)
}
