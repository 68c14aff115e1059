// Package telemetry models the raw game client events and the read-only view
// of game state that the achievement tracker consumes.
package telemetry

import "strings"

// GameState is the client connection state.
type GameState string

// Game states reported by the host.
const (
	LoginScreen GameState = "LOGIN_SCREEN"
	Loading     GameState = "LOADING"
	LoggedIn    GameState = "LOGGED_IN"
)

// Skill identifies a player skill, e.g. "ATTACK".
type Skill string

// Canonical returns the upper case form used for lookups.
func (s Skill) Canonical() Skill {
	return Skill(strings.ToUpper(strings.TrimSpace(string(s))))
}

// QuestState is the host's view of a quest.
type QuestState string

// Quest states.
const (
	QuestNotStarted QuestState = "NOT_STARTED"
	QuestInProgress QuestState = "IN_PROGRESS"
	QuestFinished   QuestState = "FINISHED"
)

// Quest identifies a quest.
type Quest struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ItemStack is an item id and quantity as reported by the host.
type ItemStack struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// NPC is a snapshot of a spawned NPC. Index identifies the spawned instance,
// ID the NPC definition.
type NPC struct {
	Index       int    `json:"index"`
	ID          int    `json:"id"`
	Name        string `json:"name"`
	HealthRatio int    `json:"healthRatio"`
	HealthScale int    `json:"healthScale"`
}

// HealthHidden reports whether the NPC's health bar is not displayed.
func (n NPC) HealthHidden() bool {
	return n.HealthScale == -1
}

// Host identifiers used by the normalizers.
const (
	InventoryContainerID        = 93
	QuestCompletedWidgetGroup   = 153
	QuestListProgressShowScript = 1340
)

// Client is the read model of the running game client.
type Client interface {
	GameState() GameState
	TickCount() int
	RealSkillLevel(skill Skill) int
	SkillExperience(skill Skill) int
	Quests() []Quest
	QuestState(questID int) QuestState
	Inventory() ([]ItemStack, bool)
	ItemName(id int) string
	PlayerRegionID() int
	NPCs() []NPC
	NPCMaxHealth(npcID int) (int, bool)
}

// Observer is implemented by clients that rebuild their state from the
// telemetry stream itself.
type Observer interface {
	Observe(ev Event)
}
