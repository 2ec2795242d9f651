// Package service orchestrates the reading core, the stores and the catalog
// index for the HTTP layer.
package service

import "sync"

// ReaderLocks serializes operations on the same reader. Entries are
// reference counted and dropped once no caller holds or waits on them.
type ReaderLocks struct {
	mu    sync.Mutex
	locks map[string]*readerLock
}

type readerLock struct {
	mu   sync.Mutex
	refs int
}

// NewReaderLocks creates an empty lock table.
func NewReaderLocks() *ReaderLocks {
	return &ReaderLocks{locks: make(map[string]*readerLock)}
}

// Lock blocks until the caller holds readerID and returns the release func.
func (l *ReaderLocks) Lock(readerID string) func() {
	l.mu.Lock()
	lk, ok := l.locks[readerID]
	if !ok {
		lk = &readerLock{}
		l.locks[readerID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()

	return func() {
		lk.mu.Unlock()

		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, readerID)
		}
		l.mu.Unlock()
	}
}

// Len reports how many readers currently have a lock entry.
func (l *ReaderLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
