package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReaderLocks_Serializes(t *testing.T) {
	locks := NewReaderLocks()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for range 50 {
		wg.Go(func() {
			unlock := locks.Lock("rdr-1")
			defer unlock()
			counter++
		})
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.Len())
}

func TestReaderLocks_IndependentReaders(t *testing.T) {
	locks := NewReaderLocks()

	unlockA := locks.Lock("rdr-a")
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("rdr-b")
		unlockB()
		close(done)
	}()
	<-done

	assert.Equal(t, 1, locks.Len())
	unlockA()
	assert.Zero(t, locks.Len())
}
