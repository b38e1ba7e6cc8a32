package notify

import (
	"sync"
	"testing"
)

func TestNotifier_NoListenersIsNoop(t *testing.T) {
	n := New()
	n.Emit(EventDataSynced) // must not panic
}

func TestNotifier_SynchronousFanOut(t *testing.T) {
	n := New()
	var got []string
	n.Subscribe(EventDataSynced, func(e string) { got = append(got, "a:"+e) })
	n.Subscribe(EventDataSynced, func(e string) { got = append(got, "b:"+e) })
	n.Subscribe("other", func(e string) { got = append(got, "other") })

	n.Emit(EventDataSynced)

	// every listener ran before Emit returned
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", got)
	}
	seen := map[string]bool{}
	for _, g := range got {
		seen[g] = true
	}
	if !seen["a:"+EventDataSynced] || !seen["b:"+EventDataSynced] {
		t.Errorf("unexpected deliveries: %v", got)
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := New()
	calls := 0
	unsubscribe := n.Subscribe(EventDataSynced, func(string) { calls++ })
	other := 0
	n.Subscribe(EventDataSynced, func(string) { other++ })

	n.Emit(EventDataSynced)
	unsubscribe()
	unsubscribe() // idempotent
	n.Emit(EventDataSynced)

	if calls != 1 {
		t.Errorf("unsubscribed listener called %d times, want 1", calls)
	}
	if other != 2 {
		t.Errorf("remaining listener called %d times, want 2", other)
	}
	if n.Listeners(EventDataSynced) != 1 {
		t.Errorf("Listeners() = %d, want 1", n.Listeners(EventDataSynced))
	}
}

func TestNotifier_ListenerMayUnsubscribeItself(t *testing.T) {
	n := New()
	var unsubscribe func()
	calls := 0
	unsubscribe = n.Subscribe(EventDataSynced, func(string) {
		calls++
		unsubscribe()
	})

	n.Emit(EventDataSynced)
	n.Emit(EventDataSynced)

	if calls != 1 {
		t.Errorf("self-removing listener called %d times, want 1", calls)
	}
}

func TestNotifier_ConcurrentEmit(t *testing.T) {
	n := New()
	var mu sync.Mutex
	count := 0
	n.Subscribe(EventDataSynced, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Emit(EventDataSynced)
		}()
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}
