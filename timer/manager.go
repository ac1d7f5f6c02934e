package timer

import (
	"time"

	"github.com/anisan-cli/skipsync/log"
	"github.com/jonboulle/clockwork"
)

// Dispatcher runs work on the owner's single logical thread.
// *syncutil.Loop satisfies it.
type Dispatcher interface {
	Do(fn func())
}

// handle is the one live timer of a role.
type handle struct {
	role     Role
	timer    clockwork.Timer
	interval time.Duration
	callback func()
}

// Manager keeps at most one live timer per role.
//
// Every method must be called on the dispatcher's thread. Fires are delivered through
// the dispatcher as well, and a fire whose handle is no longer the live handle of its
// role is dropped before the callback runs: once Cancel returns, or a role is
// rescheduled, the superseded timer can never reach its callback.
type Manager struct {
	clock clockwork.Clock
	loop  Dispatcher
	slots [roleCount]*handle
}

// NewManager creates a manager arming timers on clock and delivering fires through loop.
// A nil clock means the real clock.
func NewManager(clock clockwork.Clock, loop Dispatcher) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Manager{
		clock: clock,
		loop:  loop,
	}
}

// Schedule arms role to fire callback after delay, cancelling whatever the role had
// armed before. Recurring roles keep firing every delay, like an interval.
func (m *Manager) Schedule(role Role, delay time.Duration, callback func()) {
	var interval time.Duration
	if role.Recurring() {
		interval = max(delay, time.Millisecond)
	}
	m.arm(role, delay, interval, callback)
}

// ScheduleEvery arms a recurring role whose first fire comes after first and the
// following ones every interval.
func (m *Manager) ScheduleEvery(role Role, first, interval time.Duration, callback func()) {
	m.arm(role, first, max(interval, time.Millisecond), callback)
}

func (m *Manager) arm(role Role, delay, interval time.Duration, callback func()) {
	m.Cancel(role)

	h := &handle{
		role:     role,
		interval: interval,
		callback: callback,
	}
	h.timer = m.clock.AfterFunc(max(delay, 0), func() { m.fire(h) })
	m.slots[role] = h

	log.Tracef("timer: %s armed in %s", role, delay)
}

func (m *Manager) fire(h *handle) {
	m.loop.Do(func() {
		if m.slots[h.role] != h {
			log.Tracef("timer: dropped superseded %s fire", h.role)
			return
		}

		if h.interval > 0 {
			h.timer = m.clock.AfterFunc(h.interval, func() { m.fire(h) })
		} else {
			m.slots[h.role] = nil
		}

		h.callback()
	})
}

// Cancel disarms role. It is a no-op when the role is idle.
func (m *Manager) Cancel(role Role) {
	h := m.slots[role]
	if h == nil {
		return
	}

	h.timer.Stop()
	m.slots[role] = nil
	log.Tracef("timer: %s cancelled", role)
}

// CancelAll disarms every role.
func (m *Manager) CancelAll() {
	for _, role := range Roles() {
		m.Cancel(role)
	}
}

// State returns whether role currently has a live timer.
func (m *Manager) State(role Role) State {
	if m.slots[role] != nil {
		return Scheduled
	}
	return Idle
}

// Live returns the number of roles with a live timer.
func (m *Manager) Live() int {
	var n int
	for _, h := range m.slots {
		if h != nil {
			n++
		}
	}
	return n
}
