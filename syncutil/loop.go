package syncutil

// Loop serializes work onto one logical thread.
//
// Every coordinator operation and every timer fire runs inside Do, so state owned by
// the loop is never mutated in parallel. Do is not reentrant: work running inside the
// loop must call the unlocked variants directly instead of calling Do again.
type Loop struct {
	mu Mutex
}

// Do runs fn on the loop and returns once it has completed.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}
