package history

import (
	"context"
	"sync"
)

// Repository stores operation history.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	// List returns the newest entries first.
	List(ctx context.Context, f Filter) ([]Entry, error)
}

// InMemoryRepository keeps at most capacity entries, dropping the oldest.
type InMemoryRepository struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

func NewInMemoryRepository(capacity int) *InMemoryRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &InMemoryRepository{entries: make([]Entry, 0, capacity), capacity: capacity}
}

func (r *InMemoryRepository) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == r.capacity {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:len(r.entries)-1]
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
		if f.matches(r.entries[i]) {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}
