package trading

import "sync"

// userLocks serializes in-process read-modify-write cycles per user.
// Uses per-user locks instead of a global lock. This only covers calls
// within one process; cross-process writes remain last-write-wins.
type userLocks struct {
	mapMutex sync.RWMutex
	locks    map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock locks the record for a specific user.
func (l *userLocks) Lock(userID int64) {
	l.mapMutex.Lock()
	mu, ok := l.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[userID] = mu
	}
	l.mapMutex.Unlock()

	mu.Lock()
}

// Unlock unlocks the record for a specific user.
func (l *userLocks) Unlock(userID int64) {
	l.mapMutex.RLock()
	mu := l.locks[userID]
	l.mapMutex.RUnlock()

	if mu != nil {
		mu.Unlock()
	}
}
