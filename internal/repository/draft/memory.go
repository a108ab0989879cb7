package draft

import (
	"context"
	"sync"

	"fluxo-storefront/internal/domain"
)

type memoryRepo struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

// NewMemory returns a process-local Repository.
func NewMemory() Repository {
	return &memoryRepo{drafts: make(map[string][]byte)}
}

func (r *memoryRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payload, ok := r.drafts[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), payload...), nil
}

func (r *memoryRepo) Put(_ context.Context, key string, payload []byte) error {
	r.mu.Lock()
	r.drafts[key] = append([]byte(nil), payload...)
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.drafts, key)
	r.mu.Unlock()
	return nil
}
