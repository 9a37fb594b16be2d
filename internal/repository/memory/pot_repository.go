package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/spot-reservation/internal/model"
	"github.com/iliyamo/spot-reservation/internal/repository"
)

// potRepositoryInMemory is a map-backed PotStore.
type potRepositoryInMemory struct {
	mu     sync.RWMutex
	items  map[uint64]model.Pot
	nextID uint64
}

// NewPotRepository returns an in-memory pot store.
func NewPotRepository() repository.PotStore {
	return &potRepositoryInMemory{items: make(map[uint64]model.Pot)}
}

func (r *potRepositoryInMemory) Create(_ context.Context, p *model.Pot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	r.items[p.ID] = *p
	return nil
}

func (r *potRepositoryInMemory) GetByID(_ context.Context, id uint64) (model.Pot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return model.Pot{}, repository.ErrNotFound
	}
	return p, nil
}

// ListByOwner returns the owner's pots, newest first.
func (r *potRepositoryInMemory) ListByOwner(_ context.Context, ownerID uint64) ([]model.Pot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Pot, 0)
	for _, p := range r.items {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Update replaces the stored pot; the owner and creation time are kept.
func (r *potRepositoryInMemory) Update(_ context.Context, p *model.Pot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.OwnerID = current.OwnerID
	p.CreatedAt = current.CreatedAt
	r.items[p.ID] = *p
	return nil
}

var _ repository.PotStore = (*potRepositoryInMemory)(nil)
