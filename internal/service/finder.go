package service

import (
	"context"
	"sync"

	"cardwise/internal/matcher"
	"cardwise/internal/models"
	"cardwise/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Finder owns the offer universe cache and answers fuzzy shop searches over
// it. The cache loads once on first access and is guarded by a mutex so
// concurrent HTTP requests can read while a refresh swaps it out.
type Finder struct {
	repo     repository.OfferRepository
	ingestor *Ingestor // nil disables the ingest fallback
	matcher  *matcher.Matcher
	logger   *zap.Logger
	dedupe   bool

	mu     sync.Mutex
	cached []models.Offer // nil means not loaded
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithDedupeAcrossQueries collapses duplicate offers in batched FindOffers
// results. The default preserves duplicates: each query contributes its full
// match list in query order.
func WithDedupeAcrossQueries() FinderOption {
	return func(f *Finder) { f.dedupe = true }
}

func NewFinder(repo repository.OfferRepository, ingestor *Ingestor, m *matcher.Matcher, logger *zap.Logger, opts ...FinderOption) *Finder {
	f := &Finder{repo: repo, ingestor: ingestor, matcher: m, logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// loadAll returns the cached offer universe, populating it on first use.
// An empty repository falls back to a fresh ingest whose results are
// persisted before being served.
func (f *Finder) loadAll(ctx context.Context) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached != nil {
		return f.cached, nil
	}

	offers, err := f.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 && f.ingestor != nil {
		f.logger.Info("repository empty, ingesting offers from sources")
		offers, err = f.ingestor.IngestAll(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := f.repo.SaveAll(ctx, offers); err != nil {
			return nil, err
		}
	}
	f.cached = offers
	f.logger.Debug("offer universe loaded", zap.Int("count", len(offers)))
	return f.cached, nil
}

// PrecomputeOffers populates the cache ahead of the first query.
func (f *Finder) PrecomputeOffers(ctx context.Context) error {
	_, err := f.loadAll(ctx)
	return err
}

// ClearOffersCache forces a reload on the next access.
func (f *Finder) ClearOffersCache() {
	f.mu.Lock()
	f.cached = nil
	f.mu.Unlock()
}

// uniqueShops reduces the offer universe to one Shop per identity so the
// matcher scores each name once instead of once per offer.
func uniqueShops(offers []models.Offer) []models.Shop {
	seen := make(map[string]struct{}, len(offers))
	shops := make([]models.Shop, 0, len(offers))
	for _, o := range offers {
		id := o.Shop.ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		shops = append(shops, o.Shop)
	}
	return shops
}

// matchOffers returns the offers whose shop fuzzy-matches a single query.
func (f *Finder) matchOffers(offers []models.Offer, query string) []models.Offer {
	matched := f.matcher.Match(query, uniqueShops(offers))
	if len(matched) == 0 {
		return nil
	}
	names := make(map[string]struct{}, len(matched))
	for _, s := range matched {
		names[s.Name] = struct{}{}
	}
	var out []models.Offer
	for _, o := range offers {
		if _, ok := names[o.Shop.Name]; ok {
			out = append(out, o)
		}
	}
	return out
}

// FindOffers answers a batch of shop-name queries. Results are concatenated
// in query order; an offer matched by two queries appears twice unless the
// finder was built WithDedupeAcrossQueries. No matches is an empty result.
func (f *Finder) FindOffers(ctx context.Context, queries []string) ([]models.Offer, error) {
	offers, err := f.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Offer
	for _, q := range queries {
		out = append(out, f.matchOffers(offers, q)...)
	}
	if f.dedupe {
		out = models.DedupeOffers(out)
	}
	return out, nil
}

// FuzzySearch answers a batch of queries with union semantics: matched shop
// names are collected across all queries, then the universe is filtered in a
// single pass. No duplicates, repository order preserved.
func (f *Finder) FuzzySearch(ctx context.Context, queries []string) ([]models.Offer, error) {
	if len(queries) == 0 {
		f.logger.Warn("fuzzy search received no queries")
		return nil, nil
	}
	offers, err := f.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	shops := uniqueShops(offers)
	names := make(map[string]struct{})
	for _, q := range queries {
		for _, s := range f.matcher.Match(q, shops) {
			names[s.Name] = struct{}{}
		}
	}

	var out []models.Offer
	for _, o := range offers {
		if _, ok := names[o.Shop.Name]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

// ListOffers returns the full offer universe.
func (f *Finder) ListOffers(ctx context.Context) ([]models.Offer, error) {
	return f.loadAll(ctx)
}

// ListOffersPaginated returns a window of the universe. The limit is clamped
// to [1, MaxPageLimit], defaulting to DefaultPageLimit when non-positive.
func (f *Finder) ListOffersPaginated(ctx context.Context, limit, offset int) ([]models.Offer, error) {
	offers, err := f.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(offers) {
		return nil, nil
	}
	end := offset + limit
	if end > len(offers) {
		end = len(offers)
	}
	return offers[offset:end], nil
}
