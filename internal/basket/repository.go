package basket

import (
	"context"
	"sync"
)

// UpdateFunc derives the next slot contents from the current ones. It may run
// more than once when a backend retries on contention, so it must not have
// side effects.
type UpdateFunc func(current []LineItem) ([]LineItem, error)

// Repository is the durability boundary: a single slot holding the whole
// ordered list of line items for one basket.
//
// Update reads the slot, applies fn and writes the result as one step.
// Concurrent updates of the same slot never overwrite each other, even when
// they come through different Stores or processes.
type Repository interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
	Update(ctx context.Context, fn UpdateFunc) ([]LineItem, error)
}

// RepositoryFactory binds a repository to a session.
type RepositoryFactory func(sessionID string) Repository

// MemoryRepository keeps the slot in process memory. It stores the encoded
// payload so reads never alias the caller's slice.
type MemoryRepository struct {
	mu      sync.Mutex
	payload []byte
}

// NewMemoryRepository returns an empty slot.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) ([]LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return decodeItems(r.payload)
}

func (r *MemoryRepository) Save(_ context.Context, items []LineItem) error {
	payload, err := encodeItems(items)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.payload = payload
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, fn UpdateFunc) ([]LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := decodeItems(r.payload)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	payload, err := encodeItems(next)
	if err != nil {
		return nil, err
	}
	r.payload = payload
	return next, nil
}

// MemoryFactory hands out one MemoryRepository per session.
type MemoryFactory struct {
	mu    sync.Mutex
	slots map[string]*MemoryRepository
}

// NewMemoryFactory returns a factory with no sessions.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{slots: make(map[string]*MemoryRepository)}
}

// For returns the repository bound to sessionID, creating it on first use.
func (f *MemoryFactory) For(sessionID string) Repository {
	f.mu.Lock()
	defer f.mu.Unlock()
	repo, ok := f.slots[sessionID]
	if !ok {
		repo = NewMemoryRepository()
		f.slots[sessionID] = repo
	}
	return repo
}
