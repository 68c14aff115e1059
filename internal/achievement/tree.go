package achievement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/metalagman/achievements/internal/event"
	"github.com/metalagman/achievements/internal/telemetry"
)

// Registrar subscribes requirement evaluators to domain events.
type Registrar interface {
	Subscribe(id event.SubscriberID, handler event.Handler) error
	Unsubscribe(id event.SubscriberID)
}

// Path addresses a node by child indexes from the top level, "0/2/1".
type Path []int

// ParsePath parses a slash separated path.
func ParsePath(v string) (Path, error) {
	v = strings.Trim(strings.TrimSpace(v), "/")
	if v == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parts := strings.Split(v, "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, v)
		}
		p = append(p, i)
	}
	return p, nil
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "/")
}

// Tree owns the achievement forest. Nodes are addressed by NodeID; every
// requirement node is subscribed to the registrar while attached.
//
// Tree is not safe for concurrent use. Event delivery through the registrar
// must happen on the goroutine that owns the tree.
type Tree struct {
	reg    Registrar
	roots  []*Element
	nodes  map[NodeID]*Element
	nextID NodeID
	outbox []Transition
	dirty  bool
}

// NewTree returns an empty tree whose requirements subscribe to reg.
func NewTree(reg Registrar) *Tree {
	return &Tree{reg: reg, nodes: make(map[NodeID]*Element)}
}

// Roots returns a copy of the top level elements.
func (t *Tree) Roots() []*Element {
	out := make([]*Element, len(t.roots))
	copy(out, t.roots)
	return out
}

// Len returns the number of attached nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Find returns the attached node with id.
func (t *Tree) Find(id NodeID) (*Element, bool) {
	e, ok := t.nodes[id]
	return e, ok
}

// Lookup resolves a path.
func (t *Tree) Lookup(p Path) (*Element, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	level := t.roots
	var e *Element
	for depth, i := range p {
		if i < 0 || i >= len(level) {
			return nil, fmt.Errorf("%w: %s (index %d at depth %d)", ErrNotFound, p, i, depth)
		}
		e = level[i]
		level = e.children
	}
	return e, nil
}

// PathOf returns the path of an attached node.
func (t *Tree) PathOf(id NodeID) (Path, error) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	var rev Path
	for n := e; n != nil; n = n.parent {
		rev = append(rev, indexOf(t.siblings(n), n))
	}
	p := make(Path, len(rev))
	for i := range rev {
		p[i] = rev[len(rev)-1-i]
	}
	return p, nil
}

// Walk visits every node in pre-order.
func (t *Tree) Walk(fn func(*Element) bool) {
	for _, r := range t.roots {
		r.Walk(fn)
	}
}

// Insert attaches a detached subtree under parent at index. Root addresses
// the top level; a negative index appends.
func (t *Tree) Insert(parent NodeID, index int, e *Element) ([]Transition, error) {
	if err := checkDetached(e); err != nil {
		return nil, err
	}
	var p *Element
	if parent != Root {
		var ok bool
		if p, ok = t.nodes[parent]; !ok {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, parent)
		}
	}
	list := t.roots
	if p != nil {
		list = p.children
	}
	if index < 0 || index > len(list) {
		index = len(list)
	}
	if err := t.attach(e, p); err != nil {
		return nil, err
	}
	list = insertAt(list, index, e)
	if p != nil {
		p.children = list
	} else {
		t.roots = list
	}
	t.dirty = true
	var out []Transition
	out = append(out, refreshAll(e, CauseEdit)...)
	if p != nil {
		out = append(out, refreshUp(p, CauseEdit)...)
	}
	return out, nil
}

// Append attaches e as the last child of parent.
func (t *Tree) Append(parent NodeID, e *Element) ([]Transition, error) {
	return t.Insert(parent, -1, e)
}

// Remove detaches the node and its subtree. Every requirement in the
// subtree is unsubscribed before the node leaves the tree.
func (t *Tree) Remove(id NodeID) ([]Transition, error) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	p := e.parent
	t.unlink(e)
	t.detach(e)
	e.parent = nil
	t.dirty = true
	if p == nil {
		return nil, nil
	}
	return refreshUp(p, CauseEdit), nil
}

// Replace swaps the node for a detached subtree at the same position.
func (t *Tree) Replace(id NodeID, e *Element) ([]Transition, error) {
	if err := checkDetached(e); err != nil {
		return nil, err
	}
	old, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	p := old.parent
	if err := t.attach(e, p); err != nil {
		return nil, err
	}
	list := t.siblings(old)
	list[indexOf(list, old)] = e
	t.detach(old)
	old.parent = nil
	t.dirty = true
	out := refreshAll(e, CauseEdit)
	if p != nil {
		out = append(out, refreshUp(p, CauseEdit)...)
	}
	return out, nil
}

// Move reorders a node among its siblings.
func (t *Tree) Move(id NodeID, index int) error {
	e, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	list := t.siblings(e)
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidPath, index, len(list))
	}
	from := indexOf(list, e)
	if from == index {
		return nil
	}
	copy(list[from:], list[from+1:])
	list = list[:len(list)-1]
	list = insertAt(list, index, e)
	if e.parent != nil {
		e.parent.children = list
	} else {
		t.roots = list
	}
	t.dirty = true
	return nil
}

// Click toggles force completion of the node.
func (t *Tree) Click(id NodeID) ([]Transition, error) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	e.forceComplete = !e.forceComplete
	t.dirty = true
	return refreshUp(e, CauseClick), nil
}

// Reset clears progress and force completion of the node only, then
// revalidates it and its ancestors.
func (t *Tree) Reset(id NodeID) ([]Transition, error) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	e.reset()
	t.dirty = true
	return refreshUp(e, CauseReset), nil
}

// SetExpanded records the UI expansion flag of a node.
func (t *Tree) SetExpanded(id NodeID, expanded bool) error {
	e, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if e.UIExpanded != expanded {
		e.UIExpanded = expanded
		t.dirty = true
	}
	return nil
}

// Refresh revalidates every node bottom-up. Refreshing a settled tree
// yields no transitions.
func (t *Tree) Refresh() []Transition {
	var out []Transition
	for _, r := range t.roots {
		out = append(out, refreshAll(r, CauseRefresh)...)
	}
	if len(out) > 0 {
		t.dirty = true
	}
	return out
}

// ForceUpdate re-reads every requirement from the client and revalidates
// the tree.
func (t *Tree) ForceUpdate(c telemetry.Client) []Transition {
	t.Walk(func(e *Element) bool {
		if e.Requirement != nil && e.Requirement.forceUpdate(c) {
			t.dirty = true
		}
		return true
	})
	return t.Refresh()
}

// ReplaceAll swaps the whole forest for detached roots. Cached states are
// revalidated.
func (t *Tree) ReplaceAll(roots []*Element) ([]Transition, error) {
	for _, r := range roots {
		if err := checkDetached(r); err != nil {
			return nil, err
		}
	}
	t.Clear()
	for _, r := range roots {
		if err := t.attach(r, nil); err != nil {
			return nil, err
		}
		t.roots = append(t.roots, r)
	}
	return t.Refresh(), nil
}

// Clear detaches every node.
func (t *Tree) Clear() {
	for _, r := range t.roots {
		t.detach(r)
	}
	t.roots = nil
	t.dirty = true
}

// Drain returns and clears the transitions produced by event delivery.
func (t *Tree) Drain() []Transition {
	out := t.outbox
	t.outbox = nil
	return out
}

// TakeDirty reports whether the tree changed since the last call.
func (t *Tree) TakeDirty() bool {
	d := t.dirty
	t.dirty = false
	return d
}

// deliver routes a domain event to the requirement attached under id. The
// node is resolved at delivery time so removed nodes never observe events.
func (t *Tree) deliver(id NodeID, ev event.Event) {
	e, ok := t.nodes[id]
	if !ok || e.Requirement == nil {
		return
	}
	if !e.Requirement.apply(ev) {
		return
	}
	t.dirty = true
	t.outbox = append(t.outbox, refreshUp(e, CauseEvent)...)
}

func (t *Tree) attach(e *Element, parent *Element) error {
	e.parent = parent
	var err error
	e.Walk(func(n *Element) bool {
		if err != nil {
			return false
		}
		t.nextID++
		n.id = t.nextID
		t.nodes[n.id] = n
		for _, c := range n.children {
			c.parent = n
		}
		if n.Requirement != nil && t.reg != nil {
			id := n.id
			if serr := t.reg.Subscribe(event.SubscriberID(id), func(ev event.Event) { t.deliver(id, ev) }); serr != nil {
				err = fmt.Errorf("subscribe node %d: %w", id, serr)
			}
		}
		return true
	})
	if err != nil {
		t.detach(e)
		e.parent = nil
	}
	return err
}

// detach unsubscribes and forgets the subtree, children first.
func (t *Tree) detach(e *Element) {
	for _, c := range e.children {
		t.detach(c)
	}
	if e.id == Root {
		return
	}
	if e.Requirement != nil && t.reg != nil {
		t.reg.Unsubscribe(event.SubscriberID(e.id))
	}
	delete(t.nodes, e.id)
	e.id = Root
}

func (t *Tree) unlink(e *Element) {
	list := t.siblings(e)
	i := indexOf(list, e)
	if i < 0 {
		return
	}
	list = append(list[:i:i], list[i+1:]...)
	if e.parent != nil {
		e.parent.children = list
	} else {
		t.roots = list
	}
}

func (t *Tree) siblings(e *Element) []*Element {
	if e.parent != nil {
		return e.parent.children
	}
	return t.roots
}

func checkDetached(e *Element) error {
	if e == nil {
		return fmt.Errorf("%w: nil element", ErrInvalidPath)
	}
	var err error
	e.Walk(func(n *Element) bool {
		if n.Attached() {
			err = ErrAttached
			return false
		}
		return err == nil
	})
	return err
}

// refreshAll revalidates a subtree in post-order.
func refreshAll(e *Element, cause Cause) []Transition {
	var out []Transition
	for _, c := range e.children {
		out = append(out, refreshAll(c, cause)...)
	}
	if tr, ok := e.refresh(cause); ok {
		out = append(out, tr)
	}
	return out
}

// refreshUp revalidates e and every ancestor.
func refreshUp(e *Element, cause Cause) []Transition {
	var out []Transition
	for n := e; n != nil; n = n.parent {
		if tr, ok := n.refresh(cause); ok {
			out = append(out, tr)
		}
	}
	return out
}

func indexOf(list []*Element, e *Element) int {
	for i, v := range list {
		if v == e {
			return i
		}
	}
	return -1
}

func insertAt(list []*Element, i int, e *Element) []*Element {
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}
