package achievement

// NodeID identifies an element attached to a Tree. Detached elements have
// the zero id.
type NodeID uint64

// Root is the parent id used to address the top level of a tree.
const Root NodeID = 0

// Requirement is the requirement part of an element: the progress its
// evaluator reports and the kind specific fields.
type Requirement struct {
	Progress State
	Spec     Spec
}

// Kind returns the requirement kind.
func (r *Requirement) Kind() Kind {
	if r.Spec == nil {
		return KindAbstract
	}
	return r.Spec.Kind()
}

// Element is a node of the achievement tree. An element with a nil
// Requirement is a plain achievement whose state is fully determined by its
// children.
type Element struct {
	id            NodeID
	parent        *Element
	children      []*Element
	state         State
	forceComplete bool

	Name        string
	UIExpanded  bool
	Requirement *Requirement
}

// NewAchievement returns a detached plain achievement.
func NewAchievement(name string) *Element {
	return &Element{Name: name, UIExpanded: true}
}

// NewRequirement returns a detached requirement element for spec.
func NewRequirement(spec Spec) *Element {
	if spec == nil {
		spec = &AbstractSpec{}
	}
	return &Element{UIExpanded: true, Requirement: &Requirement{Spec: spec}}
}

// NewRequirementOfKind returns a detached requirement with editor defaults.
func NewRequirementOfKind(kind Kind) *Element {
	return NewRequirement(DefaultSpec(kind))
}

func (e *Element) ID() NodeID          { return e.id }
func (e *Element) Parent() *Element    { return e.parent }
func (e *Element) State() State        { return e.state }
func (e *Element) ForceComplete() bool { return e.forceComplete }
func (e *Element) Attached() bool      { return e.id != Root }

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// IsRequirement reports whether the element carries a requirement.
func (e *Element) IsRequirement() bool { return e.Requirement != nil }

// Restore sets the cached state and force flag, as read back from storage.
// It is only allowed on detached elements; attached ones are revalidated by
// the tree.
func (e *Element) Restore(state State, forceComplete bool) error {
	if e.Attached() {
		return ErrAttached
	}
	e.state = state
	e.forceComplete = forceComplete
	return nil
}

// AddChild appends child to a detached element.
func (e *Element) AddChild(child *Element) error {
	if e.Attached() || child.Attached() || child.parent != nil {
		return ErrAttached
	}
	child.parent = e
	e.children = append(e.children, child)
	return nil
}

// Label returns the display text of the element.
func (e *Element) Label() string {
	if e.Requirement == nil {
		if e.Name == "" {
			return unknownName
		}
		return e.Name
	}
	return e.Requirement.Spec.label(e.Requirement.Progress)
}

// Walk visits the element and its descendants in pre-order. Returning false
// from fn skips the element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// Clone returns a detached deep copy of the subtree.
func (e *Element) Clone() *Element {
	c := &Element{
		state:         e.state,
		forceComplete: e.forceComplete,
		Name:          e.Name,
		UIExpanded:    e.UIExpanded,
	}
	if e.Requirement != nil {
		c.Requirement = &Requirement{Progress: e.Requirement.Progress, Spec: e.Requirement.Spec.clone()}
	}
	for _, child := range e.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
