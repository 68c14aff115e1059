package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/achievements/internal/telemetry"
	"github.com/metalagman/achievements/internal/tracker"
)

func replayCmd() *cobra.Command {
	var sweepEvery int
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "replay <telemetry.jsonl>",
		Short: "Replay a recorded telemetry session against the achievement tree",
		Long:  "Replay a JSONL telemetry recording. Completions are printed and journaled; use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			ctx := cmd.Context()
			notifiers := tracker.Notifiers{&chatNotifier{w: cmd.OutOrStdout()}}
			var store tracker.Store = a.store
			if dryRun {
				store = readOnlyStore{a.store}
			} else {
				sessionID := uuid.NewString()
				if err := a.store.StartSession(ctx, sessionID, "replay:"+filepath.Base(args[0])); err != nil {
					return err
				}
				notifiers = append(notifiers, journalNotifier{store: a.store, sessionID: sessionID})
				log.Info().Str("session", sessionID).Msg("replay session started")
			}

			tr := tracker.New(telemetry.NewMirror(), store, notifiers, trackerOptions(a.cfg))
			n, err := replay(ctx, tr, in, sweepEvery)
			if err != nil {
				return err
			}
			log.Info().Int("events", n).Msg("replay finished")
			return nil
		},
	}
	cmd.Flags().IntVar(&sweepEvery, "sweep-every", 16, "run the periodic sweep every N game ticks (0 disables)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not persist the tree or journal completions")
	return cmd
}

// replay feeds a telemetry stream to tr and returns the number of events
// delivered. The tracker is stopped, with its writes flushed, on return.
func replay(ctx context.Context, tr *tracker.Tracker, r io.Reader, sweepEvery int) (int, error) {
	stop := startTracker(ctx, tr)
	n, err := feed(ctx, tr, r, sweepEvery)
	if err == nil {
		// Round trip through the tracker so every event has been handled.
		_, err = tr.Snapshot(ctx)
	}
	if stopErr := stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return n, err
}

func feed(ctx context.Context, tr *tracker.Tracker, r io.Reader, sweepEvery int) (int, error) {
	sc := telemetry.NewScanner(r)
	n, ticks := 0, 0
	for sc.Scan() {
		ev := sc.Event()
		if err := tr.Submit(ctx, ev); err != nil {
			return n, err
		}
		n++
		if _, ok := ev.(telemetry.GameTick); ok && sweepEvery > 0 {
			ticks++
			if ticks%sweepEvery == 0 {
				if err := tr.Sweep(ctx); err != nil {
					return n, err
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read telemetry: %w", err)
	}
	return n, nil
}
