package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/tracker"
)

func showCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the achievement tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			var nodes []tracker.Node
			err = withTracker(cmd.Context(), a, func(ctx context.Context, tr *tracker.Tracker) error {
				nodes, err = tr.View(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return renderNodes(cmd.OutOrStdout(), nodes, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "tree", "output format: tree, json or yaml")
	return cmd
}

func renderNodes(w io.Writer, nodes []tracker.Node, format string) error {
	switch strings.ToLower(format) {
	case "tree", "":
		if len(nodes) == 0 {
			_, err := fmt.Fprintln(w, "no achievements")
			return err
		}
		return renderTree(w, nodes, 0)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nodes); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTree(w io.Writer, nodes []tracker.Node, depth int) error {
	for _, n := range nodes {
		forced := ""
		if n.Forced {
			forced = " (forced)"
		}
		if _, err := fmt.Fprintf(w, "%s[%s] %s%s  #%s\n", strings.Repeat("  ", depth), stateMark(n.State), n.Label, forced, n.Path); err != nil {
			return err
		}
		if err := renderTree(w, n.Children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func stateMark(state string) string {
	switch state {
	case achievement.Complete.String():
		return "x"
	case achievement.InProgress.String():
		return "~"
	default:
		return " "
	}
}
