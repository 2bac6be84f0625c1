// Package locks provides in-process keyed mutual exclusion. Graph mutations
// for one user (add-node, cascade delete) must not interleave; the store
// enforces per-item atomicity only, not cross-operation isolation.
package locks

import "sync"

// KeyedMutex serializes work per string key. Entries are created on first
// use and kept for the process lifetime; the key space is bounded by the
// active user population.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, blocking until it is free, and returns
// the unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
