package service

import (
	"sync"

	"github.com/google/uuid"
)

// sessionLocks serializes phase transitions per session id so that two
// concurrent requests for the same session cannot interleave their
// read-modify-write of the document. The CAS version column still guards
// against writers on other processes.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Acquire locks the per-session mutex and returns its release func.
func (l *sessionLocks) Acquire(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
