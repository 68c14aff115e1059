// Package tracker runs the achievement tree on a single goroutine. Telemetry,
// editor operations and the periodic sweep are all delivered to that
// goroutine as messages; persistence and notifications are handed to a
// separate sink goroutine in order.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/codec"
	"github.com/metalagman/achievements/internal/dispatch"
	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/reporter"
	"github.com/metalagman/achievements/internal/telemetry"
)

// ErrStopped is returned when the tracker is no longer running.
var ErrStopped = errors.New("tracker stopped")

const (
	inboxSize   = 256
	effectsSize = 128
)

// Store is the key/value contract used to persist the tree.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Notifier delivers completion notifications.
type Notifier interface {
	Notify(ctx context.Context, n dispatch.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n dispatch.Notification) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n dispatch.Notification) error { return f(ctx, n) }

// Notifiers fans a notification out to every notifier.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(ctx context.Context, n dispatch.Notification) error {
	var errs []error
	for _, x := range ns {
		if err := x.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options configures a Tracker.
type Options struct {
	Ironman       bool
	Notifications dispatch.Options
	Display       Display
	SweepInterval time.Duration
}

// Tracker owns the achievement tree and everything that mutates it.
type Tracker struct {
	client   telemetry.Client
	store    Store
	notifier Notifier
	opts     Options

	bus        *event.Bus
	tree       *achievement.Tree
	npcs       *reporter.NpcKill
	items      *reporter.Items
	quests     *reporter.Quests
	chunk      *reporter.Chunk
	dispatcher *dispatch.Dispatcher
	// held suppresses persistence while the stored blob is unreadable, so
	// it is not overwritten before the user imports a replacement.
	held bool

	inbox   chan func()
	sweeps  chan struct{}
	effects chan effect
	updates chan struct{}
	done    chan struct{}
}

type effect struct {
	note *dispatch.Notification
	blob []byte
}

// New creates a tracker. Run must be called to start processing.
func New(client telemetry.Client, store Store, notifier Notifier, opts Options) *Tracker {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 10 * time.Second
	}
	bus := event.NewBus()
	t := &Tracker{
		client:   client,
		store:    store,
		notifier: notifier,
		opts:     opts,
		bus:      bus,
		tree:     achievement.NewTree(bus),
		npcs:     reporter.NewNpcKill(client, bus, opts.Ironman),
		items:    reporter.NewItems(client, bus, opts.Ironman),
		quests:   reporter.NewQuests(client, bus),
		chunk:    reporter.NewChunk(client, bus),
		inbox:    make(chan func(), inboxSize),
		sweeps:   make(chan struct{}, 1),
		effects:  make(chan effect, effectsSize),
		updates:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	t.dispatcher = dispatch.New(client, sink{t}, opts.Notifications)
	return t
}

// Run loads the persisted tree and processes messages until ctx is done.
// Pending side effects are flushed before Run returns.
func (t *Tracker) Run(ctx context.Context) error {
	defer close(t.done)

	sinkDone := make(chan struct{})
	go t.drain(context.WithoutCancel(ctx), sinkDone)
	defer func() {
		close(t.effects)
		<-sinkDone
	}()

	t.load(ctx)

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", t.opts.SweepInterval), t.requestSweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	defer c.Stop()

	log.Info().Dur("sweep_interval", t.opts.SweepInterval).Int("nodes", t.tree.Len()).Msg("tracker started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("tracker stopped")
			return nil
		case fn := <-t.inbox:
			fn()
		case <-t.sweeps:
			t.sweep()
		}
	}
}

// Submit queues a telemetry event.
func (t *Tracker) Submit(ctx context.Context, ev telemetry.Event) error {
	return t.send(ctx, func() { t.handle(ev) })
}

// Do runs fn on the tracker goroutine and dispatches the transitions it
// returns. It is the only way to mutate the tree from outside.
func (t *Tracker) Do(ctx context.Context, fn func(tree *achievement.Tree) ([]achievement.Transition, error)) error {
	errc := make(chan error, 1)
	if err := t.send(ctx, func() {
		ts, err := fn(t.tree)
		t.flush(ts)
		errc <- err
	}); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrStopped
	}
}

// Configure applies new options on the tracker goroutine. A changed sweep
// interval takes effect on the next Run.
func (t *Tracker) Configure(ctx context.Context, opts Options) error {
	return t.Do(ctx, func(*achievement.Tree) ([]achievement.Transition, error) {
		t.opts.Ironman = opts.Ironman
		t.opts.Notifications = opts.Notifications
		t.opts.Display = opts.Display
		t.npcs.SetIronman(opts.Ironman)
		t.items.SetIronman(opts.Ironman)
		t.dispatcher.SetOptions(opts.Notifications)
		sink{t}.Refresh()
		return nil, nil
	})
}

// Snapshot returns the tree in the persisted format.
func (t *Tracker) Snapshot(ctx context.Context) ([]byte, error) {
	var data []byte
	err := t.Do(ctx, func(tree *achievement.Tree) ([]achievement.Transition, error) {
		var err error
		data, err = codec.Encode(tree.Roots())
		return nil, err
	})
	return data, err
}

// Load replaces the tree with a serialized one. A malformed blob leaves the
// tree untouched and returns codec.ErrMalformed. A successful load resumes
// persistence held back by an unreadable stored blob.
func (t *Tracker) Load(ctx context.Context, data []byte) error {
	return t.Do(ctx, func(tree *achievement.Tree) ([]achievement.Transition, error) {
		roots, err := codec.Decode(data)
		if err != nil {
			return nil, err
		}
		t.held = false
		return tree.ReplaceAll(roots)
	})
}

// Sweep runs the periodic sweep now.
func (t *Tracker) Sweep(ctx context.Context) error {
	return t.Do(ctx, func(*achievement.Tree) ([]achievement.Transition, error) {
		t.sweep()
		return nil, nil
	})
}

// Updates signals after every batch of changes. Signals coalesce; a
// receiver should re-read the whole tree.
func (t *Tracker) Updates() <-chan struct{} { return t.updates }

// Done is closed once Run has returned.
func (t *Tracker) Done() <-chan struct{} { return t.done }

func (t *Tracker) send(ctx context.Context, fn func()) error {
	select {
	case <-t.done:
		return ErrStopped
	default:
	}
	select {
	case t.inbox <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrStopped
	}
}

func (t *Tracker) requestSweep() {
	select {
	case t.sweeps <- struct{}{}:
	default:
	}
}

func (t *Tracker) load(ctx context.Context) {
	blob, err := t.store.Get(ctx, codec.StoreKey)
	if err != nil {
		log.Error().Err(err).Msg("load achievements")
		return
	}
	roots, err := codec.Decode([]byte(blob))
	if err != nil {
		log.Error().Err(err).Msg("load achievements, persistence held until import")
		t.held = true
		return
	}
	ts, err := t.tree.ReplaceAll(roots)
	if err != nil {
		log.Error().Err(err).Msg("attach achievements")
	}
	t.flush(ts)
}

func (t *Tracker) handle(ev telemetry.Event) {
	if o, ok := t.client.(telemetry.Observer); ok {
		o.Observe(ev)
	}
	switch e := ev.(type) {
	case telemetry.GameStateChanged:
		switch e.State {
		case telemetry.LoggedIn:
			t.dispatcher.MarkLogin()
			t.flush(t.tree.ForceUpdate(t.client))
			t.items.Refresh()
		case telemetry.LoginScreen:
			t.chunk.Reset()
			t.npcs.Reset()
		}
	case telemetry.GameTick:
		t.npcs.OnTick()
		t.chunk.OnTick()
	case telemetry.HitsplatApplied:
		t.npcs.OnHitsplat(e)
	case telemetry.ActorDeath:
		t.npcs.OnDeath(e)
	case telemetry.LootReceived:
		t.items.OnLoot(e)
	case telemetry.ItemContainerChanged:
		t.items.OnContainer(e)
	case telemetry.StatChanged:
		t.bus.Publish(reporter.Stat(e))
	case telemetry.WidgetLoaded:
		t.quests.OnWidgetLoaded(e)
	case telemetry.ScriptPostFired:
		t.quests.OnScript(e)
	}
	t.flush(nil)
}

func (t *Tracker) sweep() {
	if t.client.GameState() != telemetry.LoggedIn {
		return
	}
	t.npcs.Sweep()
	t.quests.Update()
	t.flush(nil)
}

// flush dispatches ts together with everything event delivery produced.
func (t *Tracker) flush(ts []achievement.Transition) {
	ts = append(ts, t.tree.Drain()...)
	t.dispatcher.Dispatch(ts, t.tree.TakeDirty())
}

// drain applies side effects in order until the effects channel closes.
func (t *Tracker) drain(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for e := range t.effects {
		switch {
		case e.note != nil:
			if t.notifier == nil {
				continue
			}
			if err := t.notifier.Notify(ctx, *e.note); err != nil {
				log.Error().Err(err).Str("name", e.note.Name).Msg("notify completion")
			}
		case e.blob != nil:
			if err := t.store.Set(ctx, codec.StoreKey, string(e.blob)); err != nil {
				log.Error().Err(err).Msg("persist achievements")
			}
		}
	}
}

// sink adapts the tracker to dispatch.Sink.
type sink struct{ t *Tracker }

func (s sink) Notify(n dispatch.Notification) {
	s.t.effects <- effect{note: &n}
}

func (s sink) Persist() {
	if s.t.held {
		log.Warn().Msg("stored achievements unreadable, skipping persist")
		return
	}
	data, err := codec.Encode(s.t.tree.Roots())
	if err != nil {
		log.Error().Err(err).Msg("encode achievements")
		return
	}
	s.t.effects <- effect{blob: data}
}

func (s sink) Refresh() {
	select {
	case s.t.updates <- struct{}{}:
	default:
	}
}
