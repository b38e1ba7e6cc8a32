package sync

import (
	"context"
	"sync"

	"github.com/xelth-com/ecktms/internal/cache"
	"github.com/xelth-com/ecktms/internal/logger"
	"github.com/xelth-com/ecktms/internal/models"
	"github.com/xelth-com/ecktms/internal/notify"
)

// fakeRemote records calls and fails on demand
type fakeRemote struct {
	mu sync.Mutex

	nextID int64
	data   []models.Entity

	listErr   error
	createErr func(models.Entity) error
	updateErr error
	deleteErr error

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{nextID: 100}
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls + f.createCalls + f.updateCalls + f.deleteCalls
}

func (f *fakeRemote) List(_ context.Context, _ string) ([]models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Entity, 0, len(f.data))
	for _, e := range f.data {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (f *fakeRemote) Create(_ context.Context, _ string, entity models.Entity) (models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		if err := f.createErr(entity); err != nil {
			return nil, err
		}
	}
	saved := entity.Payload()
	saved.SetID(f.nextID)
	f.nextID++
	f.data = append(f.data, saved.Clone())
	return saved, nil
}

func (f *fakeRemote) Update(_ context.Context, _ string, id int64, entity models.Entity) (models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	saved := entity.Payload()
	saved.SetID(id)
	return saved, nil
}

func (f *fakeRemote) DeleteByID(_ context.Context, _ string, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.deleteErr
}

// countingNotifier wraps the real notifier and counts emitted events
type countingNotifier struct {
	*notify.Notifier
	mu    sync.Mutex
	count int
}

func newCountingNotifier() *countingNotifier {
	n := &countingNotifier{Notifier: notify.New()}
	n.Subscribe(notify.EventDataSynced, func(string) {
		n.mu.Lock()
		n.count++
		n.mu.Unlock()
	})
	return n
}

func (n *countingNotifier) emitted() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

func newMemoryCache(maxBytes int64) *cache.LocalCache {
	return cache.New(cache.NewMemoryStore(maxBytes), logger.Nop())
}

func ids(t interface{ Helper() }, entities []models.Entity) []int64 {
	t.Helper()
	out := make([]int64, 0, len(entities))
	for _, e := range entities {
		id, _ := e.ID()
		out = append(out, id)
	}
	return out
}
