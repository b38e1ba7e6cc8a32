package session

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestState_TryBeginOnlyOnce(t *testing.T) {
	s := New()
	if s.AutoSyncCompleted() {
		t.Fatal("new session must start with the flag cleared")
	}
	if !s.TryBeginAutoSync() {
		t.Fatal("first TryBeginAutoSync should win")
	}
	if s.TryBeginAutoSync() {
		t.Error("second TryBeginAutoSync in the same session should lose")
	}
	if !s.Flags()[KeyAutoSyncCompleted] {
		t.Error("flag should be visible under autoSyncCompleted")
	}

	s.ClearAutoSync()
	if !s.TryBeginAutoSync() {
		t.Error("TryBeginAutoSync should win again after ClearAutoSync")
	}
}

func TestState_ConcurrentBeginHasOneWinner(t *testing.T) {
	s := New()
	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryBeginAutoSync() {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}
