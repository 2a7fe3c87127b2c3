package netmon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestProberReportsEdgesOnly(t *testing.T) {
	surface := &fakeSurface{}
	m := newTestMonitor(surface, time.Minute, time.Millisecond)
	defer m.Stop()
	m.Start(true)

	var down atomic.Bool
	check := func(ctx context.Context) error {
		if down.Load() {
			return errors.New("unreachable")
		}
		return nil
	}
	p := NewProber(m, check, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	// Stays online: no transitions fire.
	time.Sleep(50 * time.Millisecond)
	if opens, _ := surface.counts(); opens != 0 {
		t.Fatalf("no transition expected while online, got %d opens", opens)
	}

	down.Store(true)
	deadline := time.After(time.Second)
	for m.Online() {
		select {
		case <-deadline:
			t.Fatal("monitor never saw the offline edge")
		case <-time.After(5 * time.Millisecond):
		}
	}

	down.Store(false)
	deadline = time.After(time.Second)
	for !m.Online() {
		select {
		case <-deadline:
			t.Fatal("monitor never saw the online edge")
		case <-time.After(5 * time.Millisecond):
		}
	}

	opens, closes := surface.counts()
	if opens == 0 || closes == 0 {
		t.Errorf("expected one offline episode, got opens=%d closes=%d", opens, closes)
	}
}

func TestDialCheckFailsFast(t *testing.T) {
	check := DialCheck("127.0.0.1:1", 100*time.Millisecond)
	if err := check(context.Background()); err == nil {
		t.Skip("port 1 unexpectedly reachable")
	}
}
