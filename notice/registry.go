// Package notice tracks the on-screen notices that are currently open.
package notice

import (
	"time"

	"github.com/samber/lo"
)

// Notice is an open on-screen notice that can be dismissed.
// Notices are compared by identity, so implementations must be comparable.
type Notice interface {
	Close()
}

// Expiring is a notice that disappears on its own once its lifetime has passed.
// A zero lifetime means it stays until closed.
type Expiring interface {
	Notice
	Lifetime() time.Duration
}

// Registry is an insertion-ordered set of open notices.
// It is not safe for concurrent use.
type Registry struct {
	open []Notice
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds n. Registering a notice twice keeps a single entry.
func (r *Registry) Register(n Notice) {
	if n == nil || lo.Contains(r.open, n) {
		return
	}
	r.open = append(r.open, n)
}

// Unregister removes n by identity without closing it. It is a no-op if n is absent.
func (r *Registry) Unregister(n Notice) {
	r.open = lo.Without(r.open, n)
}

// Contains reports whether n is registered.
func (r *Registry) Contains(n Notice) bool {
	return lo.Contains(r.open, n)
}

// Len returns the number of open notices.
func (r *Registry) Len() int {
	return len(r.open)
}

// CloseAll closes every notice in insertion order and empties the registry.
func (r *Registry) CloseAll() {
	open := r.open
	r.open = nil

	for _, n := range open {
		n.Close()
	}
}
