// Package dispatch turns tree transitions into completion notifications,
// persistence requests and UI refresh signals.
package dispatch

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/telemetry"
)

// Notification is an earned completion announced to the player.
type Notification struct {
	Name        string
	Requirement bool
	Message     string
	Color       string
}

// Sink receives the side effects of a batch of transitions.
type Sink interface {
	Notify(n Notification)
	Persist()
	Refresh()
}

// Options configures notification delivery.
type Options struct {
	Enabled bool
	Color   string
	// ReadyTicks is the number of game ticks after login during which
	// notifications are held back.
	ReadyTicks int
}

// Dispatcher is the single observer of tree transitions. It runs on the
// goroutine that owns the tree.
type Dispatcher struct {
	client    telemetry.Client
	sink      Sink
	opts      Options
	loginTick int
}

// New creates a dispatcher.
func New(client telemetry.Client, sink Sink, opts Options) *Dispatcher {
	return &Dispatcher{client: client, sink: sink, opts: opts}
}

// SetOptions replaces the notification options.
func (d *Dispatcher) SetOptions(opts Options) { d.opts = opts }

// MarkLogin records the tick at which the player logged in.
func (d *Dispatcher) MarkLogin() { d.loginTick = d.client.TickCount() }

// Ready reports whether the client has been logged in long enough for
// completions to be announced.
func (d *Dispatcher) Ready() bool {
	return d.client.GameState() == telemetry.LoggedIn &&
		d.client.TickCount()-d.loginTick > d.opts.ReadyTicks
}

// Dispatch handles one batch of transitions. Earned completions are
// announced; any change requests a single persist and refresh.
func (d *Dispatcher) Dispatch(ts []achievement.Transition, dirty bool) {
	announce := d.opts.Enabled && d.Ready()
	for _, t := range ts {
		log.Debug().
			Str("node", t.Node.Label()).
			Str("from", t.From.String()).
			Str("to", t.To.String()).
			Bool("forced", t.Forced).
			Str("cause", t.Cause.String()).
			Msg("transition")
		if !t.Completed() || !announce {
			continue
		}
		d.sink.Notify(Notification{
			Name:        t.Node.Label(),
			Requirement: t.Node.IsRequirement(),
			Message:     Message(t.Node),
			Color:       d.opts.Color,
		})
	}
	if len(ts) == 0 && !dirty {
		return
	}
	d.sink.Persist()
	d.sink.Refresh()
}

// Message returns the chat line announcing the element's completion.
func Message(e *achievement.Element) string {
	if e.IsRequirement() {
		return "Achievement Requirement complete: " + e.Label()
	}
	return fmt.Sprintf("Congratulations! You have completed %s. Your Achievements have been updated.", e.Label())
}
