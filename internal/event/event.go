// Package event defines the domain events derived from game telemetry and a
// synchronous bus that delivers them to requirement evaluators.
package event

import "github.com/metalagman/achievements/internal/telemetry"

// Type identifies a domain event.
type Type string

// Domain event types.
const (
	TypeKilledNpc         Type = "killed_npc"
	TypeItemsValidated    Type = "items_validated"
	TypeQuestStateChanged Type = "quest_state_changed"
	TypeChunkEntered      Type = "chunk_entered"
	TypeStatChanged       Type = "stat_changed"
)

// Event is a domain event.
type Event interface {
	Type() Type
}

// KilledNpc is posted exactly once per NPC killed by the player.
type KilledNpc struct {
	NPC telemetry.NPC
}

// ItemSource tells where a batch of validated items came from.
type ItemSource string

// Item sources.
const (
	SourceInventory  ItemSource = "INVENTORY"
	SourceLoot       ItemSource = "LOOT"
	SourcePlayerLoot ItemSource = "PLAYER_LOOT"
)

// NamedItem is an item resolved to its display name.
type NamedItem struct {
	ID       int
	Name     string
	Quantity int
}

// ItemsValidated carries items gained by the player or a full inventory
// snapshot, depending on Source.
type ItemsValidated struct {
	Source ItemSource
	Items  []NamedItem
}

// QuestStateChanged reports a quest's new state.
type QuestStateChanged struct {
	Quest telemetry.Quest
	State telemetry.QuestState
}

// ChunkEntered reports the player entering a map region.
type ChunkEntered struct {
	RegionID int
}

// StatChanged reports a skill's level and experience.
type StatChanged struct {
	Skill telemetry.Skill
	Level int
	XP    int
}

// Type implements Event.
func (KilledNpc) Type() Type { return TypeKilledNpc }

// Type implements Event.
func (ItemsValidated) Type() Type { return TypeItemsValidated }

// Type implements Event.
func (QuestStateChanged) Type() Type { return TypeQuestStateChanged }

// Type implements Event.
func (ChunkEntered) Type() Type { return TypeChunkEntered }

// Type implements Event.
func (StatChanged) Type() Type { return TypeStatChanged }
