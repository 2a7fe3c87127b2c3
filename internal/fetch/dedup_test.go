package fetch

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDoRunsTask(t *testing.T) {
	g := NewGroup("test")

	ran := false
	started, err := g.Do("2026-08", func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !started || !ran {
		t.Error("task should have run")
	}
	if g.InFlight("2026-08") {
		t.Error("key should be removed after completion")
	}
}

func TestDoPropagatesErrorAndCleansUp(t *testing.T) {
	g := NewGroup("test")
	boom := errors.New("boom")

	started, err := g.Do("k", func() error { return boom })
	if !started {
		t.Fatal("task should have started")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected task error, got %v", err)
	}
	if g.InFlight("k") {
		t.Error("key should be removed after a failed task")
	}
}

func TestDoDeduplicatesConcurrentCalls(t *testing.T) {
	g := NewGroup("test")

	var calls int32
	gate := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = g.Do("2026-08", func() error {
			atomic.AddInt32(&calls, 1)
			close(gate)
			<-release
			return nil
		})
	}()

	// Wait until the first call holds the key, then issue a duplicate.
	<-gate
	started, err := g.Do("2026-08", func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if started || err != nil {
		t.Errorf("duplicate call should be a no-op, got started=%v err=%v", started, err)
	}

	// A different key is unaffected.
	started, _ = g.Do("2026-09", func() error { return nil })
	if !started {
		t.Error("different key should not be deduplicated")
	}

	close(release)
	wg.Wait()

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("task for the duplicated key ran %d times, expected 1", calls)
	}
	if g.InFlight("2026-08") {
		t.Error("key should be absent after all calls settle")
	}
}
