package codec

import (
	"encoding/json"
	"fmt"

	"github.com/metalagman/achievements/internal/achievement"
)

// Encode serializes roots in the persisted format.
func Encode(roots []*achievement.Element) ([]byte, error) {
	out := encodeList(roots)
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode achievements: %w", err)
	}
	return data, nil
}

// EncodeIndent is Encode with indentation, for humans.
func EncodeIndent(roots []*achievement.Element) ([]byte, error) {
	data, err := json.MarshalIndent(encodeList(roots), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode achievements: %w", err)
	}
	return data, nil
}

func encodeList(list []*achievement.Element) []encoded {
	out := make([]encoded, 0, len(list))
	for _, e := range list {
		out = append(out, encodeNode(e))
	}
	return out
}

func encodeNode(e *achievement.Element) encoded {
	expanded := e.UIExpanded
	n := encoded{
		header: header{
			State:         e.State(),
			ForceComplete: e.ForceComplete(),
			UIExpanded:    &expanded,
		},
		Children: encodeList(e.Children()),
	}
	r := e.Requirement
	if r == nil {
		n.Name = e.Name
		return n
	}
	progress := r.Progress
	n.Type = string(r.Kind())
	n.Progress = &progress
	switch s := r.Spec.(type) {
	case *achievement.AbstractSpec:
		n.Name = s.Name
	case *achievement.SkillSpec:
		n.Skill = ptr(string(s.Skill))
		n.TargetType = ptr(string(s.Target))
		n.Target = ptr(s.Value)
	case *achievement.ItemSpec:
		n.Name = s.Name
		n.Quantity = ptr(s.Quantity)
		n.Count = ptr(s.Count)
		n.TrackingOption = ptr(string(s.Tracking))
	case *achievement.SlaySpec:
		n.Name = s.Name
		n.ProperNoun = ptr(s.ProperNoun)
		n.Quantity = ptr(s.Quantity)
		n.Count = ptr(s.Count)
	case *achievement.QuestSpec:
		n.QuestID = ptr(s.QuestID)
		n.QuestName = ptr(s.QuestName)
	case *achievement.ChunkSpec:
		n.RegionID = ptr(s.RegionID)
		n.Nickname = ptr(s.Nickname)
	}
	return n
}

func ptr[T any](v T) *T { return &v }
