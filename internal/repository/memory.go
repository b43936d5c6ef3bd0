package repository

import (
	"context"
	"sort"
	"sync"

	"cardwise/internal/models"
)

// MemoryOfferRepository keeps the offer universe in process memory. It backs
// database-less CLI runs and tests, with the same upsert semantics as the
// SQL implementation.
type MemoryOfferRepository struct {
	mu     sync.RWMutex
	offers map[string]models.Offer
}

func NewMemoryOfferRepository() *MemoryOfferRepository {
	return &MemoryOfferRepository{offers: make(map[string]models.Offer)}
}

func (r *MemoryOfferRepository) Init(ctx context.Context) error { return nil }

func (r *MemoryOfferRepository) SaveAll(ctx context.Context, offers []models.Offer) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := 0
	for _, o := range offers {
		id := o.ID()
		if _, exists := r.offers[id]; exists {
			continue
		}
		r.offers[id] = o
		inserted++
	}
	return inserted, nil
}

// GetAll returns offers ordered by id so repeated reads are deterministic.
func (r *MemoryOfferRepository) GetAll(ctx context.Context) ([]models.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.offers))
	for id := range r.offers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	offers := make([]models.Offer, 0, len(ids))
	for _, id := range ids {
		offers = append(offers, r.offers[id])
	}
	return offers, nil
}

func (r *MemoryOfferRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.offers), nil
}

func (r *MemoryOfferRepository) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers = make(map[string]models.Offer)
	return nil
}
