package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/telemetry"
	"github.com/metalagman/achievements/internal/tracker"
)

// elementFlags describes a node to create from command line flags.
type elementFlags struct {
	kind       string
	name       string
	skill      string
	target     string
	value      int
	quantity   int
	tracking   string
	properNoun bool
	questID    int
	questName  string
	regionID   int
	nickname   string
}

func (f *elementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "", "requirement kind: abstract, skill, item, slay, quest or chunk (empty for an achievement)")
	cmd.Flags().StringVar(&f.name, "name", "", "achievement, item or NPC name")
	cmd.Flags().StringVar(&f.skill, "skill", "ATTACK", "skill for skill requirements")
	cmd.Flags().StringVar(&f.target, "target", string(achievement.TargetLevel), "skill target: level or xp")
	cmd.Flags().IntVar(&f.value, "value", 1, "skill level or XP to reach")
	cmd.Flags().IntVar(&f.quantity, "quantity", 1, "item or kill quantity")
	cmd.Flags().StringVar(&f.tracking, "tracking", string(achievement.TrackInventory), "item tracking: inventory or dropped")
	cmd.Flags().BoolVar(&f.properNoun, "proper-noun", false, "NPC name is a proper noun")
	cmd.Flags().IntVar(&f.questID, "quest-id", 0, "quest id")
	cmd.Flags().StringVar(&f.questName, "quest-name", "", "quest name")
	cmd.Flags().IntVar(&f.regionID, "region", 0, "region id for chunk requirements")
	cmd.Flags().StringVar(&f.nickname, "nickname", "", "chunk nickname")
}

func (f *elementFlags) build() (*achievement.Element, error) {
	if strings.TrimSpace(f.kind) == "" {
		name := strings.TrimSpace(f.name)
		if name == "" {
			return nil, fmt.Errorf("name is required")
		}
		return achievement.NewAchievement(name), nil
	}
	kind, ok := achievement.ParseKind(f.kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", f.kind)
	}
	if f.quantity < 1 {
		return nil, fmt.Errorf("quantity must be > 0")
	}

	e := achievement.NewRequirementOfKind(kind)
	switch s := e.Requirement.Spec.(type) {
	case *achievement.SkillSpec:
		target := achievement.SkillTarget(strings.ToUpper(f.target))
		if target != achievement.TargetLevel && target != achievement.TargetXP {
			return nil, fmt.Errorf("unknown skill target %q", f.target)
		}
		s.Skill = telemetry.Skill(f.skill).Canonical()
		s.Target = target
		s.Value = f.value
	case *achievement.ItemSpec:
		tracking := achievement.Tracking(strings.ToUpper(f.tracking))
		if tracking != achievement.TrackInventory && tracking != achievement.TrackDropped {
			return nil, fmt.Errorf("unknown tracking option %q", f.tracking)
		}
		s.Name = f.name
		s.Quantity = f.quantity
		s.Tracking = tracking
	case *achievement.SlaySpec:
		s.Name = f.name
		s.ProperNoun = f.properNoun
		s.Quantity = f.quantity
	case *achievement.QuestSpec:
		if f.questID != 0 || f.questName != "" {
			s.QuestID = f.questID
			s.QuestName = f.questName
		}
	case *achievement.ChunkSpec:
		s.RegionID = f.regionID
		s.Nickname = f.nickname
	case *achievement.AbstractSpec:
		s.Name = f.name
	}
	return e, nil
}

func kindsHelp() string {
	var b strings.Builder
	b.WriteString("Requirement kinds:\n")
	for _, k := range achievement.Kinds {
		fmt.Fprintf(&b, "  %-9s %s\n", strings.ToLower(string(k)), k.Description())
	}
	return b.String()
}

func addCmd() *cobra.Command {
	var flags elementFlags
	cmd := &cobra.Command{
		Use:   "add [parent-path]",
		Short: "Add an achievement or requirement",
		Long:  "Add an achievement or requirement. Without a parent path the node is added at the top level.\n\n" + kindsHelp(),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parent achievement.Path
			if len(args) == 1 {
				p, err := achievement.ParsePath(args[0])
				if err != nil {
					return err
				}
				parent = p
			}
			e, err := flags.build()
			if err != nil {
				return err
			}
			return runOp(cmd, tracker.Add(parent, e))
		},
	}
	flags.register(cmd)
	return cmd
}

func replaceCmd() *cobra.Command {
	var flags elementFlags
	cmd := &cobra.Command{
		Use:   "replace <path>",
		Short: "Replace a node, keeping its position",
		Long:  "Replace a node, keeping its position. The old subtree is dropped.\n\n" + kindsHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := achievement.ParsePath(args[0])
			if err != nil {
				return err
			}
			e, err := flags.build()
			if err != nil {
				return err
			}
			return runOp(cmd, tracker.Replace(p, e))
		},
	}
	flags.register(cmd)
	return cmd
}

// runOp applies op to the stored tree and persists the result.
func runOp(cmd *cobra.Command, op tracker.Op) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	return withTracker(cmd.Context(), a, func(ctx context.Context, tr *tracker.Tracker) error {
		return tr.Do(ctx, op)
	})
}
