// Package codec reads and writes the persisted achievement tree.
//
// The format is a JSON array of nodes. A node carrying a "type" field is a
// requirement, anything else is a plain achievement. Cached states are
// restored as-is; the tree revalidates them once attached.
package codec

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/telemetry"
)

// StoreKey is the key/value store key holding the serialized tree.
const StoreKey = "achievementsData"

// ErrMalformed is returned when a blob cannot be parsed as a tree.
var ErrMalformed = errors.New("malformed achievements data")

//go:embed schema.json
var schemaJSON string

var schema = mustSchema()

func mustSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("compile achievements schema: %v", err))
	}
	return s
}

type header struct {
	Type          string             `json:"type,omitempty"`
	Name          string             `json:"name,omitempty"`
	State         achievement.State  `json:"state"`
	Progress      *achievement.State `json:"progress,omitempty"`
	ForceComplete bool               `json:"forceComplete"`
	UIExpanded    *bool              `json:"uiExpanded,omitempty"`
}

// kindFields is the union of every requirement kind's fields. Only the
// fields of the node's kind are set.
type kindFields struct {
	Skill          *string `json:"skill,omitempty"`
	TargetType     *string `json:"targetType,omitempty"`
	Target         *int    `json:"target,omitempty"`
	Quantity       *int    `json:"quantity,omitempty"`
	Count          *int    `json:"count,omitempty"`
	TrackingOption *string `json:"trackingOption,omitempty"`
	ProperNoun     *bool   `json:"properNoun,omitempty"`
	QuestID        *int    `json:"questId,omitempty"`
	QuestName      *string `json:"questName,omitempty"`
	RegionID       *int    `json:"regionId,omitempty"`
	Nickname       *string `json:"nickname,omitempty"`
}

type decoded struct {
	header
	Children []json.RawMessage `json:"children"`
}

type encoded struct {
	header
	kindFields
	Children []encoded `json:"children"`
}

// Validate checks a blob against the tree schema.
func Validate(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, schemaErr.String())
	}
	sort.Strings(errs)
	return fmt.Errorf("%w: %s", ErrMalformed, strings.Join(errs, "; "))
}

// Decode parses a blob into detached roots. An empty blob is an empty tree.
// Unknown requirement kinds and undecodable kind fields degrade to abstract
// requirements; structural problems fail the whole decode with ErrMalformed.
func Decode(data []byte) ([]*achievement.Element, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return decodeList(raws, "")
}

func decodeList(raws []json.RawMessage, prefix string) ([]*achievement.Element, error) {
	out := make([]*achievement.Element, 0, len(raws))
	for i, raw := range raws {
		path := fmt.Sprintf("%s%d", prefix, i)
		e, err := decodeNode(raw, path)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeNode(raw json.RawMessage, path string) (*achievement.Element, error) {
	var n decoded
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: node %s: %v", ErrMalformed, path, err)
	}

	var e *achievement.Element
	if typ := gjson.GetBytes(raw, "type"); typ.Exists() {
		e = achievement.NewRequirement(decodeSpec(raw, typ.String(), n.Name, path))
		if n.Progress != nil {
			e.Requirement.Progress = *n.Progress
		}
	} else {
		e = achievement.NewAchievement(n.Name)
	}
	if n.UIExpanded != nil {
		e.UIExpanded = *n.UIExpanded
	}
	if err := e.Restore(n.State, n.ForceComplete); err != nil {
		return nil, fmt.Errorf("restore node %s: %w", path, err)
	}

	children, err := decodeList(n.Children, path+"/")
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if err := e.AddChild(c); err != nil {
			return nil, fmt.Errorf("add child to node %s: %w", path, err)
		}
	}
	return e, nil
}

func decodeSpec(raw json.RawMessage, typ, name, path string) achievement.Spec {
	kind, known := achievement.ParseKind(typ)
	if !known {
		log.Warn().Str("node", path).Str("type", typ).Msg("unknown requirement type, loading as abstract")
		return &achievement.AbstractSpec{Name: name}
	}
	spec, err := decodeKind(raw, kind, name)
	if err != nil {
		log.Warn().Err(err).Str("node", path).Str("type", typ).Msg("bad requirement fields, loading as abstract")
		return &achievement.AbstractSpec{Name: name}
	}
	return spec
}

func decodeKind(raw json.RawMessage, kind achievement.Kind, name string) (achievement.Spec, error) {
	var f kindFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode %s fields: %w", strings.ToLower(string(kind)), err)
	}
	switch kind {
	case achievement.KindSkill:
		target := achievement.SkillTarget(strings.ToUpper(str(f.TargetType, string(achievement.TargetLevel))))
		if target != achievement.TargetLevel && target != achievement.TargetXP {
			return nil, fmt.Errorf("decode skill fields: unknown target type %q", target)
		}
		return &achievement.SkillSpec{
			Skill:  telemetry.Skill(str(f.Skill, "")).Canonical(),
			Target: target,
			Value:  num(f.Target, 0),
		}, nil
	case achievement.KindItem:
		tracking := achievement.Tracking(strings.ToUpper(str(f.TrackingOption, string(achievement.TrackInventory))))
		if tracking != achievement.TrackInventory && tracking != achievement.TrackDropped {
			return nil, fmt.Errorf("decode item fields: unknown tracking option %q", tracking)
		}
		return &achievement.ItemSpec{
			Name:     name,
			Quantity: num(f.Quantity, 1),
			Count:    num(f.Count, 0),
			Tracking: tracking,
		}, nil
	case achievement.KindSlay:
		return &achievement.SlaySpec{
			Name:       name,
			ProperNoun: f.ProperNoun != nil && *f.ProperNoun,
			Quantity:   num(f.Quantity, 1),
			Count:      num(f.Count, 0),
		}, nil
	case achievement.KindQuest:
		return &achievement.QuestSpec{QuestID: num(f.QuestID, 0), QuestName: str(f.QuestName, "")}, nil
	case achievement.KindChunk:
		return &achievement.ChunkSpec{RegionID: num(f.RegionID, 0), Nickname: str(f.Nickname, "")}, nil
	default:
		return &achievement.AbstractSpec{Name: name}, nil
	}
}

func str(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func num(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
