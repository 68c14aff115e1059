package achievement

// Cause records what triggered a state transition.
type Cause int

// Transition causes.
const (
	// CauseEvent is a domain event delivered to a requirement.
	CauseEvent Cause = iota
	// CauseRefresh is a whole tree revalidation, such as after login or load.
	CauseRefresh
	// CauseClick is a user toggling force completion.
	CauseClick
	// CauseReset is a user resetting a node.
	CauseReset
	// CauseEdit is a structural edit of the tree.
	CauseEdit
)

func (c Cause) String() string {
	switch c {
	case CauseEvent:
		return "event"
	case CauseRefresh:
		return "refresh"
	case CauseClick:
		return "click"
	case CauseReset:
		return "reset"
	case CauseEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Transition is an observed change of an element's reported state.
type Transition struct {
	Node   *Element
	From   State
	To     State
	Forced bool
	Cause  Cause
}

// Completed reports whether the transition is an earned completion, the
// only kind that is announced to the player. User driven transitions are
// never announced.
func (t Transition) Completed() bool {
	if t.To != Complete || t.From == Complete || t.Forced {
		return false
	}
	return t.Cause == CauseEvent || t.Cause == CauseRefresh
}

// ChildrenState aggregates the states of children. No children, or all
// children complete, is Complete. Any child complete or in progress makes
// the aggregate InProgress. Otherwise it is Incomplete.
func ChildrenState(children []*Element) State {
	complete, inProgress := true, false
	for _, c := range children {
		switch c.state {
		case Complete:
			inProgress = true
		case InProgress:
			complete = false
			inProgress = true
		default:
			complete = false
		}
	}
	switch {
	case complete:
		return Complete
	case inProgress:
		return InProgress
	default:
		return Incomplete
	}
}

// organicState is the state the element reports without force completion.
func (e *Element) organicState() State {
	cs := ChildrenState(e.children)
	r := e.Requirement
	if r == nil {
		return cs
	}
	if len(e.children) == 0 {
		return r.Progress
	}
	if (r.Progress == Complete && cs != Complete) || (r.Progress == Incomplete && cs != Incomplete) {
		return InProgress
	}
	return r.Progress
}

// refresh recomputes the reported state from children and progress. Force
// completion is dropped once the organic state is complete.
func (e *Element) refresh(cause Cause) (Transition, bool) {
	next := e.organicState()
	forced := false
	if e.forceComplete {
		if next == Complete {
			e.forceComplete = false
		} else {
			next = Complete
			forced = true
		}
	}
	return e.setState(next, forced, cause)
}

func (e *Element) setState(next State, forced bool, cause Cause) (Transition, bool) {
	if e.state == next {
		return Transition{}, false
	}
	t := Transition{Node: e, From: e.state, To: next, Forced: forced, Cause: cause}
	e.state = next
	return t, true
}

// reset clears progress, counters and force completion of this element only.
// The reported state is left for the following refresh to derive, so a reset
// that ends where it started yields no transition. Quest requirements mirror
// game state and ignore resets entirely.
func (e *Element) reset() {
	if r := e.Requirement; r != nil {
		if r.Kind() == KindQuest {
			return
		}
		r.Progress = Incomplete
		switch s := r.Spec.(type) {
		case *ItemSpec:
			s.Count = 0
		case *SlaySpec:
			s.Count = 0
		}
	}
	e.forceComplete = false
}
