package telemetry

// Mirror is a Client rebuilt from the telemetry stream. It lets recorded
// sessions be replayed without a running game client.
type Mirror struct {
	state      GameState
	tick       int
	region     int
	levels     map[Skill]int
	xp         map[Skill]int
	quests     []Quest
	questState map[int]QuestState
	inventory  []ItemStack
	hasInv     bool
	itemNames  map[int]string
	npcHealth  map[int]int
	npcs       []NPC
}

var (
	_ Client   = (*Mirror)(nil)
	_ Observer = (*Mirror)(nil)
)

// NewMirror creates an empty mirror on the login screen.
func NewMirror() *Mirror {
	return &Mirror{
		state:      LoginScreen,
		levels:     make(map[Skill]int),
		xp:         make(map[Skill]int),
		questState: make(map[int]QuestState),
		itemNames:  make(map[int]string),
		npcHealth:  make(map[int]int),
	}
}

// Observe folds a telemetry event into the mirrored state.
func (m *Mirror) Observe(ev Event) {
	switch e := ev.(type) {
	case GameStateChanged:
		m.state = e.State
	case GameTick:
		m.tick = e.Tick
		m.region = e.RegionID
		m.npcs = append(m.npcs[:0], e.NPCs...)
	case HitsplatApplied:
		if e.NPC != nil {
			m.upsertNPC(*e.NPC)
		}
	case ItemContainerChanged:
		if e.ContainerID == InventoryContainerID {
			m.inventory = append([]ItemStack(nil), e.Items...)
			m.hasInv = true
		}
	case StatChanged:
		m.levels[e.Skill.Canonical()] = e.Level
		m.xp[e.Skill.Canonical()] = e.XP
	case QuestVarChanged:
		m.questState[e.QuestID] = e.State
	case Catalog:
		for id, name := range e.Items {
			m.itemNames[id] = name
		}
		for id, hp := range e.NPCHealth {
			m.npcHealth[id] = hp
		}
		if len(e.Quests) > 0 {
			m.quests = append([]Quest(nil), e.Quests...)
		}
	}
}

func (m *Mirror) upsertNPC(npc NPC) {
	for i := range m.npcs {
		if m.npcs[i].Index == npc.Index {
			m.npcs[i] = npc
			return
		}
	}
	m.npcs = append(m.npcs, npc)
}

// GameState implements Client.
func (m *Mirror) GameState() GameState { return m.state }

// TickCount implements Client.
func (m *Mirror) TickCount() int { return m.tick }

// RealSkillLevel implements Client.
func (m *Mirror) RealSkillLevel(skill Skill) int {
	if lvl, ok := m.levels[skill.Canonical()]; ok {
		return lvl
	}
	return 1
}

// SkillExperience implements Client.
func (m *Mirror) SkillExperience(skill Skill) int { return m.xp[skill.Canonical()] }

// Quests implements Client.
func (m *Mirror) Quests() []Quest { return m.quests }

// QuestState implements Client.
func (m *Mirror) QuestState(questID int) QuestState {
	if st, ok := m.questState[questID]; ok {
		return st
	}
	return QuestNotStarted
}

// Inventory implements Client.
func (m *Mirror) Inventory() ([]ItemStack, bool) { return m.inventory, m.hasInv }

// ItemName implements Client.
func (m *Mirror) ItemName(id int) string { return m.itemNames[id] }

// PlayerRegionID implements Client.
func (m *Mirror) PlayerRegionID() int { return m.region }

// NPCs implements Client.
func (m *Mirror) NPCs() []NPC { return m.npcs }

// NPCMaxHealth implements Client.
func (m *Mirror) NPCMaxHealth(npcID int) (int, bool) {
	hp, ok := m.npcHealth[npcID]
	return hp, ok
}
