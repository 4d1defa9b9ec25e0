package attendance

import (
	"sync"
	"testing"
)

func TestKeyLocksSerializeSameKey(t *testing.T) {
	kl := NewKeyLocks()
	key := Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}

	const goroutines = 50
	counter := 0
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			release := kl.Lock(key)
			defer release()
			counter++
		}()
	}
	wg.Wait()

	if counter != goroutines {
		t.Errorf("expected %d increments under the key lock, got %d", goroutines, counter)
	}
	if kl.Len() != 0 {
		t.Errorf("expected all key locks released, %d still live", kl.Len())
	}
}

func TestKeyLocksIndependentKeys(t *testing.T) {
	kl := NewKeyLocks()
	a := Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}
	b := Key{TenantID: 1, RegID: "EMP002", Date: "2024-03-01"}

	releaseA := kl.Lock(a)
	// must not block: b is a different key
	releaseB := kl.Lock(b)

	if kl.Len() != 2 {
		t.Errorf("expected 2 live key locks, got %d", kl.Len())
	}

	releaseB()
	releaseA()

	if kl.Len() != 0 {
		t.Errorf("expected registry emptied after release, got %d", kl.Len())
	}
}

func TestKeyLocksReacquireAfterRelease(t *testing.T) {
	kl := NewKeyLocks()
	key := Key{TenantID: 1, RegID: "EMP001", Date: "2024-03-01"}

	release := kl.Lock(key)
	release()

	done := make(chan struct{})
	go func() {
		release := kl.Lock(key)
		release()
		close(done)
	}()
	<-done
}
