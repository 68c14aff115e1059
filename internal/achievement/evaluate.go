package achievement

import (
	"strings"

	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

// apply evaluates a domain event against the requirement and reports
// whether progress or a counter changed. Complete progress is sticky.
func (r *Requirement) apply(ev event.Event) bool {
	if r.Progress == Complete {
		return false
	}
	switch s := r.Spec.(type) {
	case *SkillSpec:
		if e, ok := ev.(event.StatChanged); ok && sameName(string(e.Skill), string(s.Skill)) {
			return r.evaluateSkill(s, e.Level, e.XP)
		}
	case *ItemSpec:
		if e, ok := ev.(event.ItemsValidated); ok {
			return r.evaluateItems(s, e)
		}
	case *SlaySpec:
		if e, ok := ev.(event.KilledNpc); ok && sameName(e.NPC.Name, s.Name) {
			s.Count++
			r.Progress = countProgress(s.Count, s.Quantity)
			return true
		}
	case *QuestSpec:
		if e, ok := ev.(event.QuestStateChanged); ok && e.Quest.ID == s.QuestID {
			if s.QuestName == "" && e.Quest.Name != "" {
				s.QuestName = e.Quest.Name
			}
			return r.setProgress(questProgress(e.State))
		}
	case *ChunkSpec:
		if e, ok := ev.(event.ChunkEntered); ok && e.RegionID == s.RegionID {
			return r.setProgress(Complete)
		}
	}
	return false
}

func (r *Requirement) evaluateSkill(s *SkillSpec, level, xp int) bool {
	reached := level >= s.Value
	if s.Target == TargetXP {
		reached = xp >= s.Value
	}
	if !reached {
		return false
	}
	return r.setProgress(Complete)
}

func (r *Requirement) evaluateItems(s *ItemSpec, ev event.ItemsValidated) bool {
	n := matchingQuantity(s.Name, ev.Items)
	switch {
	case s.Tracking == TrackDropped && ev.Source != event.SourceInventory:
		if n == 0 {
			return false
		}
		s.Count += n
	case s.Tracking == TrackInventory && ev.Source == event.SourceInventory:
		if n == s.Count {
			return r.setProgress(countProgress(s.Count, s.Quantity))
		}
		s.Count = n
	default:
		return false
	}
	r.Progress = countProgress(s.Count, s.Quantity)
	return true
}

// forceUpdate re-reads the requirement's progress from the client. It is
// used after login to catch up with changes made while untracked.
func (r *Requirement) forceUpdate(c telemetry.Client) bool {
	if r.Progress == Complete {
		return false
	}
	switch s := r.Spec.(type) {
	case *SkillSpec:
		return r.evaluateSkill(s, c.RealSkillLevel(s.Skill), c.SkillExperience(s.Skill))
	case *ItemSpec:
		return r.setProgress(countProgress(s.Count, s.Quantity))
	case *SlaySpec:
		return r.setProgress(countProgress(s.Count, s.Quantity))
	case *QuestSpec:
		return r.setProgress(questProgress(c.QuestState(s.QuestID)))
	case *ChunkSpec:
		if c.GameState() == telemetry.LoggedIn && c.PlayerRegionID() == s.RegionID {
			return r.setProgress(Complete)
		}
	}
	return false
}

func (r *Requirement) setProgress(p State) bool {
	if r.Progress == p {
		return false
	}
	r.Progress = p
	return true
}

func countProgress(count, quantity int) State {
	switch {
	case count >= quantity:
		return Complete
	case count > 0:
		return InProgress
	default:
		return Incomplete
	}
}

func questProgress(s telemetry.QuestState) State {
	switch s {
	case telemetry.QuestFinished:
		return Complete
	case telemetry.QuestInProgress:
		return InProgress
	default:
		return Incomplete
	}
}

func matchingQuantity(name string, items []event.NamedItem) int {
	n := 0
	for _, it := range items {
		if sameName(it.Name, name) {
			n += it.Quantity
		}
	}
	return n
}

func sameName(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
