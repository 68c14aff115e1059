package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/metalagman/achievements/internal/config"
	"github.com/metalagman/achievements/internal/db"
	"github.com/metalagman/achievements/internal/dispatch"
	"github.com/metalagman/achievements/internal/telemetry"
	"github.com/metalagman/achievements/internal/tracker"
)

type app struct {
	repoRoot string
	cfg      config.Config
	store    *db.Store
	close    func()
}

func openApp() (*app, error) {
	repoRoot, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return nil, err
	}
	storeDB, err := db.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return &app{
		repoRoot: repoRoot,
		cfg:      cfg,
		store:    db.NewStore(storeDB),
		close:    func() { _ = storeDB.Close() },
	}, nil
}

func trackerOptions(cfg config.Config) tracker.Options {
	return tracker.Options{
		Ironman: cfg.Ironman,
		Notifications: dispatch.Options{
			Enabled:    cfg.Notifications.Enabled,
			Color:      cfg.Notifications.Color,
			ReadyTicks: cfg.Tracker.ReadyTicks,
		},
		Display: tracker.Display{
			AchievementInProgress: cfg.Display.AchievementInProgress,
			RequirementInProgress: cfg.Display.RequirementInProgress,
		},
		SweepInterval: cfg.Tracker.SweepInterval,
	}
}

// startTracker runs tr in the background. The returned stop function
// cancels it and waits until pending writes are flushed.
func startTracker(ctx context.Context, tr *tracker.Tracker) func() error {
	ctx, cancel := context.WithCancel(ctx)
	errc := make(chan error, 1)
	go func() { errc <- tr.Run(ctx) }()
	return sync.OnceValue(func() error {
		cancel()
		return <-errc
	})
}

// withTracker runs fn against an offline tracker over the stored tree.
func withTracker(ctx context.Context, a *app, fn func(ctx context.Context, tr *tracker.Tracker) error) error {
	tr := tracker.New(telemetry.NewMirror(), a.store, nil, trackerOptions(a.cfg))
	stop := startTracker(ctx, tr)
	err := fn(ctx, tr)
	if stopErr := stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

// chatNotifier prints completions the way the game chat shows them.
type chatNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *chatNotifier) Notify(_ context.Context, n dispatch.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "[%s] %s\n", n.Color, n.Message)
	return err
}

// journalNotifier records completions in the session journal.
type journalNotifier struct {
	store     *db.Store
	sessionID string
}

func (j journalNotifier) Notify(ctx context.Context, n dispatch.Notification) error {
	log.Info().Str("session", j.sessionID).Str("name", n.Name).Bool("requirement", n.Requirement).Msg("completion")
	return j.store.RecordCompletion(ctx, db.Completion{
		SessionID:   j.sessionID,
		Name:        n.Name,
		Requirement: n.Requirement,
		Message:     n.Message,
	})
}

// readOnlyStore serves the stored tree but discards writes.
type readOnlyStore struct {
	tracker.Store
}

func (readOnlyStore) Set(context.Context, string, string) error { return nil }
