// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

import (
	"github.com/sasha-s/go-deadlock"
)

// ReaderWriterLatch is the latch the hash directory guards its shared,
// concurrently-accessed state with, rather than reaching for sync.RWMutex
// directly. The buffer pool and the replacer lock a deadlock.Mutex of
// their own instead.
type ReaderWriterLatch interface {
	WLock()
	WUnlock()
	RLock()
	RUnlock()
}

type readerWriterLatch struct {
	mutex deadlock.RWMutex
}

// NewRWLatch returns a ReaderWriterLatch backed by a deadlock-detecting
// RWMutex, so a lock-ordering bug between the pool, the replacer and the
// hash directory panics with a cycle report instead of hanging forever.
func NewRWLatch() ReaderWriterLatch {
	return &readerWriterLatch{}
}

func (l *readerWriterLatch) WLock() {
	l.mutex.Lock()
}

func (l *readerWriterLatch) WUnlock() {
	l.mutex.Unlock()
}

func (l *readerWriterLatch) RLock() {
	l.mutex.RLock()
}

func (l *readerWriterLatch) RUnlock() {
	l.mutex.RUnlock()
}
