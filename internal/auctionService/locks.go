package auction

import "sync"

// listingLocks hands out one mutex per listing id. Entries are dropped once no
// goroutine holds or waits for them, so the map only grows with contention.
type listingLocks struct {
	mu    sync.Mutex
	locks map[string]*listingLock
}

type listingLock struct {
	mu   sync.Mutex
	refs int
}

func newListingLocks() *listingLocks {
	return &listingLocks{locks: make(map[string]*listingLock)}
}

// lock blocks until the caller owns listingID and returns the matching unlock
func (l *listingLocks) lock(listingID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[listingID]
	if !ok {
		entry = &listingLock{}
		l.locks[listingID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, listingID)
		}
		l.mu.Unlock()
	}
}

// size is the number of live entries
func (l *listingLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
