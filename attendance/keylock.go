package attendance

import "sync"

// keyLock is one per-key mutex plus the number of goroutines currently
// holding or waiting on it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// KeyLocks is a lazily-populated registry of per-key mutexes. Events
// for different keys proceed fully in parallel; events for the same key
// serialize. Entries are reference counted and removed as soon as the
// last holder releases, so the registry does not grow with the number
// of keys ever seen.
type KeyLocks struct {
	mu    sync.Mutex
	locks map[Key]*keyLock
}

// NewKeyLocks creates an empty lock registry.
func NewKeyLocks() *KeyLocks {
	return &KeyLocks{locks: make(map[Key]*keyLock)}
}

// Lock acquires the mutex for key and returns the matching release
// function. Safe under concurrent first access of the same key.
func (kl *KeyLocks) Lock(key Key) (release func()) {
	kl.mu.Lock()
	l, ok := kl.locks[key]
	if !ok {
		l = &keyLock{}
		kl.locks[key] = l
	}
	l.refs++
	kl.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		kl.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(kl.locks, key)
		}
		kl.mu.Unlock()
	}
}

// Len reports how many keys currently have live locks.
func (kl *KeyLocks) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.locks)
}
