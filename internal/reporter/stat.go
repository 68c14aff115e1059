package reporter

import (
	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

// Stat converts a raw stat change into its domain event.
func Stat(ev telemetry.StatChanged) event.StatChanged {
	return event.StatChanged{Skill: ev.Skill.Canonical(), Level: ev.Level, XP: ev.XP}
}
