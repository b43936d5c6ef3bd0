package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cardwise/internal/models"
	"cardwise/internal/parser"
	"cardwise/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ingestor runs every registered parser against its document source and
// collects the resulting offers. Per-bank policy: a missing source is
// survivable (warn and skip), a parsing failure aborts the whole run so
// scraper drift is never silently swallowed.
type Ingestor struct {
	parsers []parser.OfferParser
	source  repository.DocumentSource
	logger  *zap.Logger
}

func NewIngestor(parsers []parser.OfferParser, source repository.DocumentSource, logger *zap.Logger) *Ingestor {
	return &Ingestor{parsers: parsers, source: source, logger: logger}
}

// IngestAll extracts offers from every bank in parallel and dedupes the
// union by offer id.
func (in *Ingestor) IngestAll(ctx context.Context) ([]models.Offer, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var all []models.Offer
	for _, p := range in.parsers {
		g.Go(func() error {
			bank := p.Bank()
			offers, err := in.ingestBank(gctx, p)
			if errors.Is(err, models.ErrSourceNotFound) {
				in.logger.Warn("offer source missing, skipping bank",
					zap.String("bank", bank.Name), zap.Error(err))
				return nil
			}
			if err != nil {
				return err
			}
			in.logger.Info("ingested offers", zap.String("bank", bank.Name), zap.Int("count", len(offers)))

			mu.Lock()
			all = append(all, offers...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models.DedupeOffers(all), nil
}

func (in *Ingestor) ingestBank(ctx context.Context, p parser.OfferParser) ([]models.Offer, error) {
	rc, err := in.source.Fetch(ctx, p.Bank())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := parser.ParseDocument(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", p.Bank().Name, err)
	}
	return p.Extract(doc)
}
