package achievement

import "strings"

// Kind is the requirement kind. The set is closed.
type Kind string

// Requirement kinds.
const (
	KindAbstract Kind = "ABSTRACT"
	KindSkill    Kind = "SKILL"
	KindItem     Kind = "ITEM"
	KindSlay     Kind = "SLAY"
	KindQuest    Kind = "QUEST"
	KindChunk    Kind = "CHUNK"
)

// Kinds lists every requirement kind in display order.
var Kinds = []Kind{KindAbstract, KindSkill, KindItem, KindSlay, KindQuest, KindChunk}

// ParseKind maps a discriminator to a kind. Unknown values degrade to
// KindAbstract and report false.
func ParseKind(v string) (Kind, bool) {
	k := Kind(strings.ToUpper(strings.TrimSpace(v)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return KindAbstract, false
}

// Description returns the editor help text for the kind.
func (k Kind) Description() string {
	switch k {
	case KindSkill:
		return "Require a skill level or XP amount."
	case KindItem:
		return "Collect an item."
	case KindSlay:
		return "Slay a monster."
	case KindQuest:
		return "Require quest completion."
	case KindChunk:
		return "Require a chunk to be unlocked by entering it."
	default:
		return "A requirement that must be marked as completed manually."
	}
}

// SkillTarget selects what a skill requirement compares.
type SkillTarget string

// Skill targets.
const (
	TargetLevel SkillTarget = "LEVEL"
	TargetXP    SkillTarget = "XP"
)

// Tracking selects how an item requirement counts items.
type Tracking string

// Item tracking options.
const (
	// TrackInventory recounts the inventory on every snapshot.
	TrackInventory Tracking = "INVENTORY"
	// TrackDropped accumulates items received from loot.
	TrackDropped Tracking = "DROPPED"
)
