// Package timer owns every scheduled callback of the coordinator, keyed by role.
package timer

import "fmt"

// Role is one of the independent purposes a timer is scheduled for.
type Role int

const (
	// SkipSchedule fires once when playback reaches the next segment.
	SkipSchedule Role = iota
	// SkipInterval periodically checks whether playback sits inside a segment.
	SkipInterval
	// VirtualTimeInterval periodically refreshes the virtual time estimate.
	VirtualTimeInterval
	// AdvanceSkipSchedule refreshes the notice shown ahead of an upcoming segment.
	AdvanceSkipSchedule

	roleCount
)

// Roles returns every role.
func Roles() []Role {
	return []Role{SkipSchedule, SkipInterval, VirtualTimeInterval, AdvanceSkipSchedule}
}

// Recurring reports whether timers of this role repeat until cancelled.
func (r Role) Recurring() bool {
	return r != SkipSchedule
}

func (r Role) String() string {
	switch r {
	case SkipSchedule:
		return "skip-schedule"
	case SkipInterval:
		return "skip-interval"
	case VirtualTimeInterval:
		return "virtual-time-interval"
	case AdvanceSkipSchedule:
		return "advance-skip-schedule"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// State is the lifecycle state of a role.
type State int

const (
	Idle State = iota
	Scheduled
)

func (s State) String() string {
	if s == Scheduled {
		return "scheduled"
	}
	return "idle"
}
