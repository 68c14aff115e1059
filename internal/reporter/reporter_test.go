package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

func itemMirror() *telemetry.Mirror {
	m := telemetry.NewMirror()
	m.Observe(telemetry.Catalog{Items: map[int]string{526: "Bones", 995: "Coins"}})
	return m
}

func TestItemsLoot(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	r := NewItems(itemMirror(), rec, true)

	r.OnLoot(telemetry.LootReceived{Name: "Goblin", Kind: telemetry.LootNPC, Items: []telemetry.ItemStack{{ID: 526, Quantity: 1}, {ID: 995, Quantity: 0}}})
	r.OnLoot(telemetry.LootReceived{Name: "Zezima", Kind: telemetry.LootPlayer, Items: []telemetry.ItemStack{{ID: 526, Quantity: 1}}})
	require.Len(t, rec.events, 1, "player loot is dropped in ironman mode")

	got := rec.events[0].(event.ItemsValidated)
	assert.Equal(t, event.SourceLoot, got.Source)
	assert.Equal(t, []event.NamedItem{{ID: 526, Name: "Bones", Quantity: 1}}, got.Items)

	r.SetIronman(false)
	r.OnLoot(telemetry.LootReceived{Name: "Zezima", Kind: telemetry.LootPlayer, Items: []telemetry.ItemStack{{ID: 526, Quantity: 1}}})
	require.Len(t, rec.events, 2)
	assert.Equal(t, event.SourcePlayerLoot, rec.events[1].(event.ItemsValidated).Source)
}

func TestItemsInventory(t *testing.T) {
	t.Parallel()

	m := itemMirror()
	rec := &recorder{}
	r := NewItems(m, rec, true)

	r.OnContainer(telemetry.ItemContainerChanged{ContainerID: 94, Items: []telemetry.ItemStack{{ID: 526, Quantity: 1}}})
	assert.Empty(t, rec.events, "equipment is not the inventory")

	inv := telemetry.ItemContainerChanged{ContainerID: telemetry.InventoryContainerID, Items: []telemetry.ItemStack{{ID: 526, Quantity: 2}}}
	m.Observe(inv)
	r.OnContainer(inv)
	require.Len(t, rec.events, 1)
	assert.Equal(t, event.SourceInventory, rec.events[0].(event.ItemsValidated).Source)

	r.Refresh()
	assert.Len(t, rec.events, 1, "refresh needs a logged in client")

	m.Observe(telemetry.GameStateChanged{State: telemetry.LoggedIn})
	r.Refresh()
	require.Len(t, rec.events, 2)
	assert.Equal(t, rec.events[0], rec.events[1])
}

func TestQuestsUpdatePostsChanges(t *testing.T) {
	t.Parallel()

	m := telemetry.NewMirror()
	m.Observe(telemetry.Catalog{Quests: []telemetry.Quest{{ID: 1, Name: "Cook's Assistant"}, {ID: 2, Name: "Dragon Slayer"}}})
	m.Observe(telemetry.QuestVarChanged{QuestID: 1, State: telemetry.QuestFinished})
	rec := &recorder{}
	r := NewQuests(m, rec)

	r.Update()
	assert.Len(t, rec.events, 2)

	r.Update()
	assert.Len(t, rec.events, 2, "no changes")

	m.Observe(telemetry.QuestVarChanged{QuestID: 2, State: telemetry.QuestInProgress})
	r.OnWidgetLoaded(telemetry.WidgetLoaded{GroupID: telemetry.QuestCompletedWidgetGroup})
	require.Len(t, rec.events, 3)
	got := rec.events[2].(event.QuestStateChanged)
	assert.Equal(t, 2, got.Quest.ID)
	assert.Equal(t, telemetry.QuestInProgress, got.State)

	r.OnWidgetLoaded(telemetry.WidgetLoaded{GroupID: 1})
	r.OnScript(telemetry.ScriptPostFired{ScriptID: telemetry.QuestListProgressShowScript})
	assert.Len(t, rec.events, 5)
}

func TestQuestsUpdateLogsChanges(t *testing.T) {
	var buf bytes.Buffer
	prev, level := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(level)
	})

	m := telemetry.NewMirror()
	m.Observe(telemetry.Catalog{Quests: []telemetry.Quest{{ID: 7, Name: "Rune Mysteries"}}})
	m.Observe(telemetry.QuestVarChanged{QuestID: 7, State: telemetry.QuestFinished})
	r := NewQuests(m, &recorder{})

	r.Update()
	r.Update()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var line map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &line))
	assert.Equal(t, "quest state changed", line["message"])
	assert.Equal(t, "Rune Mysteries", line["name"])
	assert.Equal(t, string(telemetry.QuestFinished), line["state"])
}

func TestChunkPostsOnRegionChange(t *testing.T) {
	t.Parallel()

	m := telemetry.NewMirror()
	rec := &recorder{}
	r := NewChunk(m, rec)

	m.Observe(telemetry.GameTick{Tick: 1, RegionID: 12850})
	r.OnTick()
	assert.Empty(t, rec.events, "not logged in")

	m.Observe(telemetry.GameStateChanged{State: telemetry.LoggedIn})
	r.OnTick()
	r.OnTick()
	m.Observe(telemetry.GameTick{Tick: 2, RegionID: 12851})
	r.OnTick()
	require.Len(t, rec.events, 2)
	assert.Equal(t, event.ChunkEntered{RegionID: 12851}, rec.events[1])

	r.Reset()
	r.OnTick()
	assert.Len(t, rec.events, 3)
}

func TestStat(t *testing.T) {
	t.Parallel()

	got := Stat(telemetry.StatChanged{Skill: "Attack", XP: 83, Level: 2, BoostedLevel: 5})
	assert.Equal(t, event.StatChanged{Skill: "ATTACK", Level: 2, XP: 83}, got)
}
