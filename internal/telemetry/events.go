package telemetry

// Event is a raw telemetry event delivered by the host.
type Event interface {
	EventType() string
}

// GameStateChanged reports a login, logout or loading transition.
type GameStateChanged struct {
	State GameState `json:"state"`
}

// GameTick is emitted once per server tick with the visible NPCs and the
// player's current region.
type GameTick struct {
	Tick     int   `json:"tick"`
	RegionID int   `json:"regionId"`
	NPCs     []NPC `json:"npcs,omitempty"`
}

// HitsplatType classifies a hitsplat by its owner and outcome.
type HitsplatType string

// Hitsplat types.
const (
	HitsplatBlockMe     HitsplatType = "BLOCK_ME"
	HitsplatBlockOther  HitsplatType = "BLOCK_OTHER"
	HitsplatDamageMe    HitsplatType = "DAMAGE_ME"
	HitsplatDamageOther HitsplatType = "DAMAGE_OTHER"
	HitsplatPoison      HitsplatType = "POISON"
	HitsplatVenom       HitsplatType = "VENOM"
	HitsplatDisease     HitsplatType = "DISEASE"
	HitsplatHeal        HitsplatType = "HEAL"
)

// Hitsplat is a single damage marker.
type Hitsplat struct {
	Type   HitsplatType `json:"hitsplatType"`
	Amount int          `json:"amount"`
}

// Mine reports whether the local player caused the hitsplat.
func (h Hitsplat) Mine() bool {
	return h.Type == HitsplatBlockMe || h.Type == HitsplatDamageMe
}

// Others reports whether another player caused the hitsplat.
func (h Hitsplat) Others() bool {
	return h.Type == HitsplatBlockOther || h.Type == HitsplatDamageOther
}

// HitsplatApplied is a hitsplat landing on an actor. NPC is nil when the
// actor is a player.
type HitsplatApplied struct {
	NPC      *NPC     `json:"npc,omitempty"`
	Hitsplat Hitsplat `json:"hitsplat"`
}

// ActorDeath reports an actor dying. NPC is nil when the actor is a player.
type ActorDeath struct {
	NPC *NPC `json:"npc,omitempty"`
}

// LootRecordType is the origin of a loot drop.
type LootRecordType string

// Loot record types.
const (
	LootNPC        LootRecordType = "NPC"
	LootPlayer     LootRecordType = "PLAYER"
	LootEvent      LootRecordType = "EVENT"
	LootPickpocket LootRecordType = "PICKPOCKET"
	LootUnknown    LootRecordType = "UNKNOWN"
)

// LootReceived is a loot drop credited to the player.
type LootReceived struct {
	Name  string         `json:"name"`
	Kind  LootRecordType `json:"lootType"`
	Items []ItemStack    `json:"items"`
}

// ItemContainerChanged is a full snapshot of an item container.
type ItemContainerChanged struct {
	ContainerID int         `json:"containerId"`
	Items       []ItemStack `json:"items"`
}

// StatChanged reports a skill's experience and level.
type StatChanged struct {
	Skill        Skill `json:"skill"`
	XP           int   `json:"xp"`
	Level        int   `json:"level"`
	BoostedLevel int   `json:"boostedLevel"`
}

// WidgetLoaded reports an interface group being opened.
type WidgetLoaded struct {
	GroupID int `json:"groupId"`
}

// ScriptPostFired reports a client script having run.
type ScriptPostFired struct {
	ScriptID int `json:"scriptId"`
}

// QuestVarChanged updates the host's quest state. The tracker never reacts
// to it directly; quest changes are discovered by the quest reporter.
type QuestVarChanged struct {
	QuestID int        `json:"questId"`
	State   QuestState `json:"state"`
}

// Catalog seeds host lookup tables: item names, NPC max health and the
// quest list.
type Catalog struct {
	Items     map[int]string `json:"items,omitempty"`
	NPCHealth map[int]int    `json:"npcHealth,omitempty"`
	Quests    []Quest        `json:"quests,omitempty"`
}

// EventType implements Event.
func (GameStateChanged) EventType() string { return "game_state_changed" }

// EventType implements Event.
func (GameTick) EventType() string { return "game_tick" }

// EventType implements Event.
func (HitsplatApplied) EventType() string { return "hitsplat_applied" }

// EventType implements Event.
func (ActorDeath) EventType() string { return "actor_death" }

// EventType implements Event.
func (LootReceived) EventType() string { return "loot_received" }

// EventType implements Event.
func (ItemContainerChanged) EventType() string { return "item_container_changed" }

// EventType implements Event.
func (StatChanged) EventType() string { return "stat_changed" }

// EventType implements Event.
func (WidgetLoaded) EventType() string { return "widget_loaded" }

// EventType implements Event.
func (ScriptPostFired) EventType() string { return "script_post_fired" }

// EventType implements Event.
func (QuestVarChanged) EventType() string { return "quest_var_changed" }

// EventType implements Event.
func (Catalog) EventType() string { return "catalog" }
