package keylock

import (
	"sync"
	"testing"
)

func TestKeyedSerializesSameKey(t *testing.T) {
	locks := New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("KBA 453D")
			counter++
			locks.Unlock("KBA 453D")
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("expected %d increments, got %d", workers, counter)
	}
}

func TestKeyedIndependentKeys(t *testing.T) {
	locks := New()

	locks.Lock("KBA 453D")
	done := make(chan struct{})
	go func() {
		// A different key must not block on the first key's holder.
		locks.Lock("KBC 217F")
		locks.Unlock("KBC 217F")
		close(done)
	}()

	<-done
	locks.Unlock("KBA 453D")
}

func TestKeyedReuse(t *testing.T) {
	locks := New()

	locks.Lock("PAT1A2B3C4D")
	locks.Unlock("PAT1A2B3C4D")
	locks.Lock("PAT1A2B3C4D")
	locks.Unlock("PAT1A2B3C4D")
}
