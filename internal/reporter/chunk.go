package reporter

import (
	"github.com/rs/zerolog/log"

	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

// Chunk posts ChunkEntered whenever the player's region changes.
type Chunk struct {
	client telemetry.Client
	pub    event.Publisher
	last   int
	seen   bool
}

// NewChunk creates a chunk reporter.
func NewChunk(client telemetry.Client, pub event.Publisher) *Chunk {
	return &Chunk{client: client, pub: pub}
}

// OnTick checks the player's region.
func (r *Chunk) OnTick() {
	if r.client.GameState() != telemetry.LoggedIn {
		return
	}
	id := r.client.PlayerRegionID()
	if r.seen && id == r.last {
		return
	}
	r.last, r.seen = id, true
	log.Debug().Int("region", id).Msg("entered chunk")
	r.pub.Publish(event.ChunkEntered{RegionID: id})
}

// Reset forgets the last region so the next tick posts again.
func (r *Chunk) Reset() { r.seen = false }
