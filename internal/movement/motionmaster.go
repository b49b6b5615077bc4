package movement

import "log/slog"

// MotionMaster is the per-unit generator stack. The bottom slot always holds
// an idle generator; the top generator is the active one.
//
// Не потокобезопасен: вызывается только из тика карты владельца.
type MotionMaster[H any] struct {
	owner    H
	stack    []Generator[H]
	observer func(kind Kind, active bool)
}

// NewMotionMaster creates a stack with an idle generator for owner.
func NewMotionMaster[H any](owner H) *MotionMaster[H] {
	return &MotionMaster[H]{
		owner: owner,
		stack: []Generator[H]{IdleGenerator[H]{}},
	}
}

// SetObserver registers a callback invoked when a generator becomes active
// (active=true) or is removed (active=false).
func (m *MotionMaster[H]) SetObserver(fn func(kind Kind, active bool)) {
	m.observer = fn
}

// Top returns the active generator.
func (m *MotionMaster[H]) Top() Generator[H] {
	return m.stack[len(m.stack)-1]
}

// Kind returns the kind of the active generator.
func (m *MotionMaster[H]) Kind() Kind {
	return m.Top().Kind()
}

// Len returns the number of generators including the idle one.
func (m *MotionMaster[H]) Len() int {
	return len(m.stack)
}

// Push initializes g and makes it active. The previous top stays on the stack
// and is Reset when g is removed.
func (m *MotionMaster[H]) Push(g Generator[H]) {
	m.stack = append(m.stack, g)
	g.Initialize(m.owner)
	m.notify(g.Kind(), true)
}

// Replace removes every generator of g's kind and pushes g.
func (m *MotionMaster[H]) Replace(g Generator[H]) {
	for m.removeKind(g.Kind(), false) {
	}
	m.Push(g)
}

// Update ticks the active generator and pops it when it reports completion.
func (m *MotionMaster[H]) Update(diff uint32) {
	top := m.Top()
	if top.Update(m.owner, diff) {
		return
	}
	m.remove(top, true)
}

// Remove finalizes and removes the topmost generator of kind.
func (m *MotionMaster[H]) Remove(kind Kind) bool {
	return m.removeKind(kind, true)
}

// Clear finalizes every generator except idle.
func (m *MotionMaster[H]) Clear() {
	for len(m.stack) > 1 {
		m.remove(m.Top(), false)
	}
	m.Top().Reset(m.owner)
}

// SplineArrived forwards the host's spline arrival to the active generator.
func (m *MotionMaster[H]) SplineArrived() {
	if l, ok := m.Top().(ArrivalListener[H]); ok {
		l.OnArrived(m.owner)
	}
}

// Teleported forwards an instant position change to the active generator.
func (m *MotionMaster[H]) Teleported() {
	if l, ok := m.Top().(TeleportListener[H]); ok {
		l.OnTeleported(m.owner)
	}
}

func (m *MotionMaster[H]) removeKind(kind Kind, resetTop bool) bool {
	if kind == KindIdle {
		return false
	}
	for i := len(m.stack) - 1; i > 0; i-- {
		if m.stack[i].Kind() == kind {
			m.remove(m.stack[i], resetTop)
			return true
		}
	}
	return false
}

// remove takes g off the stack before finalizing it, so callbacks fired from
// Finalize (teleports) reach the generator below.
func (m *MotionMaster[H]) remove(g Generator[H], resetTop bool) {
	idx := -1
	for i := len(m.stack) - 1; i > 0; i-- {
		if m.stack[i] == g {
			idx = i
			break
		}
	}
	if idx < 0 {
		slog.Warn("generator not on motion stack", "kind", g.Kind())
		return
	}

	wasTop := idx == len(m.stack)-1
	m.stack = append(m.stack[:idx], m.stack[idx+1:]...)
	g.Finalize(m.owner)
	m.notify(g.Kind(), false)

	if wasTop && resetTop {
		m.Top().Reset(m.owner)
	}
}

func (m *MotionMaster[H]) notify(kind Kind, active bool) {
	if m.observer != nil {
		m.observer(kind, active)
	}
}
