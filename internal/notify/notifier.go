package notify

import "sync"

// EventDataSynced tells listeners that at least one cached collection changed
// and must be re-read before rendering. It carries no payload.
const EventDataSynced = "dataSyncedFromServer"

// Listener receives an event name
type Listener func(event string)

type subscription struct {
	id uint64
	fn Listener
}

// Notifier is an in-process observer list with synchronous fan-out:
// Emit returns only after every listener registered at that moment has run.
type Notifier struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// New creates an empty notifier
func New() *Notifier {
	return &Notifier{subs: make(map[string][]subscription)}
}

// Subscribe registers fn for event and returns a function that removes it
func (n *Notifier) Subscribe(event string, fn Listener) (unsubscribe func()) {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[event] = append(n.subs[event], subscription{id: id, fn: fn})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			list := n.subs[event]
			for i, s := range list {
				if s.id == id {
					n.subs[event] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit calls every current listener of event. With no listeners it does nothing.
func (n *Notifier) Emit(event string) {
	n.mu.RLock()
	list := make([]subscription, len(n.subs[event]))
	copy(list, n.subs[event])
	n.mu.RUnlock()

	// listeners run outside the lock so they may subscribe or unsubscribe
	for _, s := range list {
		s.fn(event)
	}
}

// Listeners returns how many listeners are registered for event
func (n *Notifier) Listeners(event string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[event])
}
