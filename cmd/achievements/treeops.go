package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/tracker"
)

func pathCmd(use, short string, op func(achievement.Path) tracker.Op) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := achievement.ParsePath(args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, op(p))
		},
	}
}

func clickCmd() *cobra.Command {
	return pathCmd("click", "Toggle manual completion of a node", tracker.Click)
}

func resetCmd() *cobra.Command {
	return pathCmd("reset", "Reset a node and its subtree", tracker.Reset)
}

func removeCmd() *cobra.Command {
	return pathCmd("remove", "Remove a node and its subtree", tracker.Remove)
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <path> <index>",
		Short: "Move a node to another position among its siblings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := achievement.ParsePath(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			return runOp(cmd, tracker.Move(p, index))
		},
	}
}

func expandCmd() *cobra.Command {
	var collapse bool
	cmd := &cobra.Command{
		Use:   "expand <path>",
		Short: "Expand or collapse a node in the tree view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := achievement.ParsePath(args[0])
			if err != nil {
				return err
			}
			return runOp(cmd, tracker.Expand(p, !collapse))
		},
	}
	cmd.Flags().BoolVar(&collapse, "collapse", false, "collapse instead of expand")
	return cmd
}
