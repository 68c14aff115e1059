package tracker

import "github.com/metalagman/achievements/internal/achievement"

// Op is a tree operation run on the tracker goroutine through Do.
type Op = func(tree *achievement.Tree) ([]achievement.Transition, error)

// Click toggles force completion of the node at p.
func Click(p achievement.Path) Op {
	return func(tree *achievement.Tree) ([]achievement.Transition, error) {
		e, err := tree.Lookup(p)
		if err != nil {
			return nil, err
		}
		return tree.Click(e.ID())
	}
}

// Reset resets the node at p.
func Reset(p achievement.Path) Op {
	return func(tree *achievement.Tree) ([]achievement.Transition, error) {
		e, err := tree.Lookup(p)
		if err != nil {
			return nil, err
		}
		return tree.Reset(e.ID())
	}
}

// Remove removes the node at p with its subtree.
func Remove(p achievement.Path) Op {
	return func(tree *achievement.Tree) ([]achievement.Transition, error) {
		e, err := tree.Lookup(p)
		if err != nil {
			return nil, err
		}
		return tree.Remove(e.ID())
	}
}

// Move reorders the node at p among its siblings.
func Move(p achievement.Path, index int) Op {
	return func(tree *achievement.Tree) ([]achievement.Transition, error) {
		e, err := tree.Lookup(p)
		if err != nil {
			return nil, err
		}
		return nil, tree.Move(e.ID(), index)
	}
}

// Add appends e under the node at parent, or at the top level when parent
// is empty.
func Add(parent achievement.Path, e *achievement.Element) Op {
	return func(tree *achievement.Tree) ([]achievement.Transition, error) {
		id := achievement.Root
		if len(parent) > 0 {
			p, err := tree.Lookup(parent)
			if err != nil {
				return nil, err
			}
			id = p.ID()
		}
		return tree.Append(id, e)
	}
}

// Replace swaps the node at p for e.
func Replace(p achievement.Path, e *achievement.Element) Op {
	return func(tree *achievement.Tree) ([]achievement.Transition, error) {
		old, err := tree.Lookup(p)
		if err != nil {
			return nil, err
		}
		return tree.Replace(old.ID(), e)
	}
}

// Expand sets the UI expansion flag of the node at p.
func Expand(p achievement.Path, expanded bool) Op {
	return func(tree *achievement.Tree) ([]achievement.Transition, error) {
		e, err := tree.Lookup(p)
		if err != nil {
			return nil, err
		}
		return nil, tree.SetExpanded(e.ID(), expanded)
	}
}
