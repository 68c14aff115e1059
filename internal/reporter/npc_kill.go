// Package reporter turns raw telemetry into the domain events consumed by
// requirement evaluators.
package reporter

import (
	"github.com/rs/zerolog/log"

	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

// NpcKill credits NPC deaths to the player. NPCs the player damaged are
// tracked; NPCs damaged by other players are ignored while ironman
// exclusivity is on. An ignored NPC the player hit behind a hidden health
// bar is re-validated on the next tick: if the player's hit started at full
// health the kill is credited after all.
//
// NpcKill is not safe for concurrent use.
type NpcKill struct {
	client  telemetry.Client
	pub     event.Publisher
	ironman bool

	tracked map[int]telemetry.NPC
	ignored map[int]telemetry.NPC
	pending *pendingHit
}

type pendingHit struct {
	npc    telemetry.NPC
	amount int
}

// NewNpcKill creates a reporter posting KilledNpc to pub.
func NewNpcKill(client telemetry.Client, pub event.Publisher, ironman bool) *NpcKill {
	return &NpcKill{
		client:  client,
		pub:     pub,
		ironman: ironman,
		tracked: make(map[int]telemetry.NPC),
		ignored: make(map[int]telemetry.NPC),
	}
}

// SetIronman toggles exclusivity against other players' damage.
func (r *NpcKill) SetIronman(on bool) { r.ironman = on }

// Tracked reports whether the NPC instance would be credited on death.
func (r *NpcKill) Tracked(index int) bool {
	_, ok := r.tracked[index]
	return ok
}

// Ignored reports whether the NPC instance was claimed by another player.
func (r *NpcKill) Ignored(index int) bool {
	_, ok := r.ignored[index]
	return ok
}

// Pending reports whether a full-health validation awaits the next tick.
func (r *NpcKill) Pending() bool { return r.pending != nil }

// OnHitsplat records who damaged an NPC.
func (r *NpcKill) OnHitsplat(ev telemetry.HitsplatApplied) {
	if ev.NPC == nil {
		return
	}
	npc := *ev.NPC
	hit := ev.Hitsplat
	switch {
	case hit.Mine() && hit.Type != telemetry.HitsplatBlockMe:
		if _, ok := r.ignored[npc.Index]; !ok {
			r.tracked[npc.Index] = npc
		} else if npc.HealthHidden() {
			r.pending = &pendingHit{npc: npc, amount: hit.Amount}
		}
	case hit.Others() && hit.Type != telemetry.HitsplatBlockOther && r.ironman:
		delete(r.tracked, npc.Index)
		r.ignored[npc.Index] = npc
	}
}

// OnTick resolves a pending full-health validation. The NPC's health before
// the player's hit is rebuilt from the now visible health bar; when it equals
// the NPC's maximum the player started the fight and the NPC is tracked.
func (r *NpcKill) OnTick() {
	p := r.pending
	if p == nil {
		return
	}
	r.pending = nil

	npc := p.npc
	for _, cur := range r.client.NPCs() {
		if cur.Index == npc.Index {
			npc = cur
			break
		}
	}
	maxHealth, known := r.client.NPCMaxHealth(npc.ID)
	if !known {
		maxHealth = 0
	}
	original := DisplayedHealth(maxHealth, npc.HealthRatio, npc.HealthScale) + p.amount
	log.Debug().
		Int("npc", npc.Index).
		Str("name", npc.Name).
		Int("original_health", original).
		Int("max_health", maxHealth).
		Msg("validate full health")
	if known && original == maxHealth {
		delete(r.ignored, npc.Index)
		r.tracked[npc.Index] = npc
	}
}

// OnDeath credits a tracked NPC. Ignored NPCs are dropped silently.
func (r *NpcKill) OnDeath(ev telemetry.ActorDeath) {
	if ev.NPC == nil {
		return
	}
	idx := ev.NPC.Index
	if _, ok := r.ignored[idx]; ok {
		delete(r.ignored, idx)
		return
	}
	if _, ok := r.tracked[idx]; !ok {
		return
	}
	delete(r.tracked, idx)
	r.pub.Publish(event.KilledNpc{NPC: *ev.NPC})
}

// Sweep forgets NPCs that healed back to full or are no longer visible.
func (r *NpcKill) Sweep() {
	visible := make(map[int]telemetry.NPC)
	for _, npc := range r.client.NPCs() {
		visible[npc.Index] = npc
	}
	for _, set := range []map[int]telemetry.NPC{r.tracked, r.ignored} {
		for idx := range set {
			cur, ok := visible[idx]
			if !ok || (!cur.HealthHidden() && cur.HealthScale > 0 && cur.HealthRatio/cur.HealthScale == 1) {
				delete(set, idx)
			}
		}
	}
}

// Reset forgets every candidate NPC.
func (r *NpcKill) Reset() {
	clear(r.tracked)
	clear(r.ignored)
	r.pending = nil
}

// DisplayedHealth converts a health bar reading back to hit points. It
// inverts the server's ratio formula and returns 0 when the maximum is
// unknown or the scale cannot be inverted.
func DisplayedHealth(maxHealth, ratio, scale int) int {
	if maxHealth <= 0 || scale <= 1 {
		return 0
	}
	n := maxHealth * max(0, ratio-1)
	d := scale - 1
	return (n + d - 1) / d
}
