package achievement

import (
	"fmt"
	"strings"

	"github.com/metalagman/achievements/internal/telemetry"
)

const unknownName = "Unknown"

// Spec holds the kind specific fields of a requirement. Implementations are
// the pointer types declared in this file.
type Spec interface {
	Kind() Kind
	label(progress State) string
	clone() Spec
}

// AbstractSpec is a requirement that is only ever completed by force.
type AbstractSpec struct {
	Name string
}

// SkillSpec requires a real skill level or an XP amount.
type SkillSpec struct {
	Skill  telemetry.Skill
	Target SkillTarget
	Value  int
}

// ItemSpec requires collecting a quantity of a named item.
type ItemSpec struct {
	Name     string
	Quantity int
	Count    int
	Tracking Tracking
}

// SlaySpec requires killing a quantity of a named NPC.
type SlaySpec struct {
	Name       string
	ProperNoun bool
	Quantity   int
	Count      int
}

// QuestSpec requires a quest to be finished.
type QuestSpec struct {
	QuestID   int
	QuestName string
}

// ChunkSpec requires entering a map region.
type ChunkSpec struct {
	RegionID int
	Nickname string
}

func (*AbstractSpec) Kind() Kind { return KindAbstract }
func (*SkillSpec) Kind() Kind    { return KindSkill }
func (*ItemSpec) Kind() Kind     { return KindItem }
func (*SlaySpec) Kind() Kind     { return KindSlay }
func (*QuestSpec) Kind() Kind    { return KindQuest }
func (*ChunkSpec) Kind() Kind    { return KindChunk }

func (s *AbstractSpec) label(State) string {
	if s.Name == "" {
		return unknownName
	}
	return s.Name
}

func (s *SkillSpec) label(State) string {
	skill := titleCase(string(s.Skill))
	if s.Target == TargetXP {
		return fmt.Sprintf("%d %s XP", s.Value, skill)
	}
	return fmt.Sprintf("%d %s", s.Value, skill)
}

func (s *ItemSpec) label(progress State) string {
	name := s.Name
	if name == "" {
		name = unknownName
	}
	return fmt.Sprintf("%s (%d/%d)", name, shownCount(s.Count, s.Quantity, progress), s.Quantity)
}

func (s *SlaySpec) label(progress State) string {
	name := s.Name
	if name == "" {
		name = unknownName
	}
	if !s.ProperNoun {
		name = article(name) + " " + name
	}
	return fmt.Sprintf("Defeat %s (%d/%d)", name, shownCount(s.Count, s.Quantity, progress), s.Quantity)
}

func (s *QuestSpec) label(State) string {
	if s.QuestName == "" {
		return fmt.Sprintf("Complete quest %d", s.QuestID)
	}
	return "Complete " + s.QuestName
}

func (s *ChunkSpec) label(State) string {
	if s.Nickname == "" {
		return fmt.Sprintf("Unlock Chunk %d", s.RegionID)
	}
	return "Unlock " + s.Nickname
}

func (s *AbstractSpec) clone() Spec { c := *s; return &c }
func (s *SkillSpec) clone() Spec    { c := *s; return &c }
func (s *ItemSpec) clone() Spec     { c := *s; return &c }
func (s *SlaySpec) clone() Spec     { c := *s; return &c }
func (s *QuestSpec) clone() Spec    { c := *s; return &c }
func (s *ChunkSpec) clone() Spec    { c := *s; return &c }

// DefaultSpec returns a fresh spec of the given kind with editor defaults.
func DefaultSpec(kind Kind) Spec {
	switch kind {
	case KindSkill:
		return &SkillSpec{Skill: "ATTACK", Target: TargetLevel, Value: 1}
	case KindItem:
		return &ItemSpec{Quantity: 1, Tracking: TrackInventory}
	case KindSlay:
		return &SlaySpec{Quantity: 1}
	case KindQuest:
		return &QuestSpec{QuestID: 0, QuestName: "Cook's Assistant"}
	case KindChunk:
		return &ChunkSpec{}
	default:
		return &AbstractSpec{}
	}
}

func shownCount(count, quantity int, progress State) int {
	if progress == Complete || count > quantity {
		return quantity
	}
	return count
}

func article(name string) string {
	if name == "" {
		return "a"
	}
	switch strings.ToLower(name[:1]) {
	case "a", "e", "i", "o", "u":
		return "an"
	}
	return "a"
}

func titleCase(v string) string {
	v = strings.ToLower(strings.ReplaceAll(v, "_", " "))
	words := strings.Fields(v)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
