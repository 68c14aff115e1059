package reporter

import (
	"github.com/rs/zerolog/log"

	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

// Items posts ItemsValidated for loot drops and inventory snapshots.
type Items struct {
	client  telemetry.Client
	pub     event.Publisher
	ironman bool
}

// NewItems creates an item reporter.
func NewItems(client telemetry.Client, pub event.Publisher, ironman bool) *Items {
	return &Items{client: client, pub: pub, ironman: ironman}
}

// SetIronman toggles dropping of loot from other players.
func (r *Items) SetIronman(on bool) { r.ironman = on }

// OnLoot posts a loot drop. Player kill loot does not count in ironman mode.
func (r *Items) OnLoot(ev telemetry.LootReceived) {
	source := event.SourceLoot
	if ev.Kind == telemetry.LootPlayer {
		if r.ironman {
			log.Debug().Int("stacks", len(ev.Items)).Msg("drop player kill loot")
			return
		}
		source = event.SourcePlayerLoot
	}
	r.pub.Publish(event.ItemsValidated{Source: source, Items: r.named(ev.Items)})
}

// OnContainer posts a snapshot of the inventory. Other containers are
// ignored.
func (r *Items) OnContainer(ev telemetry.ItemContainerChanged) {
	if ev.ContainerID != telemetry.InventoryContainerID {
		return
	}
	r.pub.Publish(event.ItemsValidated{Source: event.SourceInventory, Items: r.named(ev.Items)})
}

// Refresh re-posts the current inventory when logged in.
func (r *Items) Refresh() {
	if r.client.GameState() != telemetry.LoggedIn {
		return
	}
	items, ok := r.client.Inventory()
	if !ok {
		return
	}
	r.pub.Publish(event.ItemsValidated{Source: event.SourceInventory, Items: r.named(items)})
}

func (r *Items) named(stacks []telemetry.ItemStack) []event.NamedItem {
	out := make([]event.NamedItem, 0, len(stacks))
	for _, s := range stacks {
		if s.ID < 0 || s.Quantity <= 0 {
			continue
		}
		out = append(out, event.NamedItem{ID: s.ID, Name: r.client.ItemName(s.ID), Quantity: s.Quantity})
	}
	return out
}
