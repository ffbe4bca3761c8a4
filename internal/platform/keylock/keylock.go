// Package keylock provides per-key mutual exclusion. The fleet and patient
// services take an entity's lock around every read-modify-write so a manual
// edit racing a simulator tick cannot lose updates.
package keylock

import "sync"

// Keyed is a set of named mutexes. The zero value is not usable; call New.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns an empty lock set.
func New() *Keyed {
	return &Keyed{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use. Lock entries
// live for the process lifetime; the key population here is a fixed fleet
// plus active patients, so no eviction is needed.
func (k *Keyed) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key. Calling Unlock for a key that was never
// locked panics, same as an unpaired sync.Mutex unlock.
func (k *Keyed) Unlock(key string) {
	k.get(key).Unlock()
}

func (k *Keyed) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
