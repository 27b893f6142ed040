package lock

import (
	"sync"

	"github.com/google/uuid"
)

// Keyed provides one mutex per collector ID so that collection and
// settlement operations against the same collector are serialized while
// operations on different collectors proceed independently.
type Keyed struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewKeyed creates a new Keyed lock set
func NewKeyed() *Keyed {
	return &Keyed{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given key, creating it on first use
func (k *Keyed) Lock(key uuid.UUID) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
}

// Unlock releases the mutex for the given key
// Panics if Lock was never called for the key, matching sync.Mutex semantics
func (k *Keyed) Unlock(key uuid.UUID) {
	k.mu.Lock()
	l, ok := k.locks[key]
	k.mu.Unlock()

	if !ok {
		panic("lock: unlock of unknown key")
	}
	l.Unlock()
}
