package service

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("trip:1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("lost increments: %d", counter)
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()

	unlockA := km.Lock("trip:a")
	// A different key must not block.
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("trip:b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestKeyedMutex_EntriesFreedAfterUnlock(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	for i := 0; i < 10; i++ {
		unlock := km.Lock("trip:x")
		unlock()
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Errorf("expected no retained entries, got %d", len(km.locks))
	}
}
