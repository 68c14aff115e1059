package reporter

import (
	"github.com/rs/zerolog/log"

	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

// Quests posts QuestStateChanged when the host's quest states move. Finished
// quests are cached and never re-read by Update.
type Quests struct {
	client telemetry.Client
	pub    event.Publisher
	states map[int]telemetry.QuestState
}

// NewQuests creates a quest reporter.
func NewQuests(client telemetry.Client, pub event.Publisher) *Quests {
	return &Quests{client: client, pub: pub, states: make(map[int]telemetry.QuestState)}
}

// OnWidgetLoaded checks for changes when the quest completed scroll opens.
func (r *Quests) OnWidgetLoaded(ev telemetry.WidgetLoaded) {
	if ev.GroupID == telemetry.QuestCompletedWidgetGroup {
		r.Update()
	}
}

// OnScript posts every quest when the quest list is redrawn.
func (r *Quests) OnScript(ev telemetry.ScriptPostFired) {
	if ev.ScriptID == telemetry.QuestListProgressShowScript {
		r.PostAll()
	}
}

// Update posts quests whose state changed since they were last seen.
func (r *Quests) Update() {
	for _, q := range r.client.Quests() {
		prev, seen := r.states[q.ID]
		if seen && prev == telemetry.QuestFinished {
			continue
		}
		st := r.client.QuestState(q.ID)
		if seen && st == prev {
			continue
		}
		r.states[q.ID] = st
		log.Debug().Int("quest", q.ID).Str("name", q.Name).Str("state", string(st)).Msg("quest state changed")
		r.pub.Publish(event.QuestStateChanged{Quest: q, State: st})
	}
}

// PostAll re-reads and posts every quest.
func (r *Quests) PostAll() {
	for _, q := range r.client.Quests() {
		st := r.client.QuestState(q.ID)
		r.states[q.ID] = st
		r.pub.Publish(event.QuestStateChanged{Quest: q, State: st})
	}
}
