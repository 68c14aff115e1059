package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/codec"
	"github.com/metalagman/achievements/internal/tracker"
)

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the achievement tree as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			var data []byte
			err = withTracker(cmd.Context(), a, func(ctx context.Context, tr *tracker.Tracker) error {
				return tr.Do(ctx, func(tree *achievement.Tree) ([]achievement.Transition, error) {
					var err error
					data, err = codec.EncodeIndent(tree.Roots())
					return nil, err
				})
			})
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the achievement tree with an exported one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			err = withTracker(cmd.Context(), a, func(ctx context.Context, tr *tracker.Tracker) error {
				return tr.Load(ctx, data)
			})
			if errors.Is(err, codec.ErrMalformed) {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			return err
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
