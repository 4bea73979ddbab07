// Package keylock serializes mutations on a per-key basis. The scheduling
// store does read-then-write with no optimistic version check, so two
// concurrent requests for the same (user, date) could both pass the overlap
// check and commit conflicting rows. Every store-mutating path takes the
// key lock for its (user, date) before reading.
package keylock

import (
	"fmt"
	"sync"
	"time"
)

type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns the unlock function.
// Idle entries are removed once the last holder releases them.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// UserDateKey builds the canonical lock key for a (user, date) pair.
func UserDateKey(userID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", userID, date.Format("2006-01-02"))
}
