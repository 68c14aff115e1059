package tracker

import (
	"context"
	"strconv"

	"github.com/metalagman/achievements/internal/achievement"
)

// Display selects which in-progress states are shown as such.
type Display struct {
	AchievementInProgress bool
	RequirementInProgress bool
}

// Node is a rendered tree node.
type Node struct {
	Path     string `json:"path"`
	Label    string `json:"label"`
	State    string `json:"state"`
	Forced   bool   `json:"forced"`
	Kind     string `json:"kind,omitempty"`
	Expanded bool   `json:"expanded"`
	Children []Node `json:"children"`
}

// BuildView renders the tree.
func BuildView(tree *achievement.Tree, d Display) []Node {
	return buildList(tree.Roots(), "", d)
}

func buildList(list []*achievement.Element, prefix string, d Display) []Node {
	out := make([]Node, 0, len(list))
	for i, e := range list {
		path := prefix + strconv.Itoa(i)
		n := Node{
			Path:     path,
			Label:    e.Label(),
			State:    shownState(e, d).String(),
			Forced:   e.ForceComplete(),
			Expanded: e.UIExpanded,
			Children: buildList(e.Children(), path+"/", d),
		}
		if e.Requirement != nil {
			n.Kind = string(e.Requirement.Kind())
		}
		out = append(out, n)
	}
	return out
}

func shownState(e *achievement.Element, d Display) achievement.State {
	s := e.State()
	if s != achievement.InProgress {
		return s
	}
	if e.IsRequirement() && !d.RequirementInProgress {
		return achievement.Incomplete
	}
	if !e.IsRequirement() && !d.AchievementInProgress {
		return achievement.Incomplete
	}
	return s
}

// View renders the tree on the tracker goroutine.
func (t *Tracker) View(ctx context.Context) ([]Node, error) {
	var nodes []Node
	err := t.Do(ctx, func(tree *achievement.Tree) ([]achievement.Transition, error) {
		nodes = BuildView(tree, t.opts.Display)
		return nil, nil
	})
	return nodes, err
}
