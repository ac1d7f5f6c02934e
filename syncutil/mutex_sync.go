//go:build !deadlock

// Package syncutil provides the mutex primitives and the single logical thread used by the coordinator.
// Build with -tags=deadlock to enable deadlock detection during development.
package syncutil

import "sync"

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = false

// Mutex is a mutual exclusion lock.
type Mutex struct {
	sync.Mutex
}
