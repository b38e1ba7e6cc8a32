package session

import "sync/atomic"

// KeyAutoSyncCompleted is the session-scoped flag name recording that the
// auto-sync runner already ran
const KeyAutoSyncCompleted = "autoSyncCompleted"

// State is the explicit session context owned by the application shell.
// One State lives for one session; a restart of the shell is a new session.
type State struct {
	autoSyncCompleted atomic.Bool
}

// New creates a fresh session with no flags set
func New() *State {
	return &State{}
}

// TryBeginAutoSync sets the flag and reports whether the caller won the right to run.
// The flag is set before any work starts, so a concurrent second caller gets false.
func (s *State) TryBeginAutoSync() bool {
	return s.autoSyncCompleted.CompareAndSwap(false, true)
}

// AutoSyncCompleted reports whether the runner already ran in this session
func (s *State) AutoSyncCompleted() bool {
	return s.autoSyncCompleted.Load()
}

// ClearAutoSync allows the runner to execute again (explicit re-trigger)
func (s *State) ClearAutoSync() {
	s.autoSyncCompleted.Store(false)
}

// Flags exposes the session flags by their storage key, for diagnostics
func (s *State) Flags() map[string]bool {
	return map[string]bool{
		KeyAutoSyncCompleted: s.AutoSyncCompleted(),
	}
}
