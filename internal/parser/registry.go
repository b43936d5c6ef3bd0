package parser

import (
	"cardwise/internal/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Discover returns one parser instance per supported bank. The set is a
// static compile-time list: adding a bank means adding its parser here.
func Discover(logger *zap.Logger) []OfferParser {
	return []OfferParser{
		NewBankOfAmericaParser(logger),
		NewCapitalOneParser(logger),
		NewChaseParser(logger),
	}
}

// Registry routes documents to the parser registered for a bank id.
type Registry struct {
	parsers []OfferParser
	byID    map[string]OfferParser
	logger  *zap.Logger
}

// NewRegistry builds a registry from the given parsers, or from Discover
// when none are given.
func NewRegistry(logger *zap.Logger, parsers ...OfferParser) *Registry {
	if len(parsers) == 0 {
		parsers = Discover(logger)
	}
	byID := make(map[string]OfferParser, len(parsers))
	for _, p := range parsers {
		byID[p.Bank().ID()] = p
	}
	return &Registry{parsers: parsers, byID: byID, logger: logger}
}

// Parsers returns all registered parsers in registration order.
func (r *Registry) Parsers() []OfferParser { return r.parsers }

// Lookup returns the parser for a normalized bank id.
func (r *Registry) Lookup(bankID string) (OfferParser, bool) {
	p, ok := r.byID[models.Normalize(bankID)]
	return p, ok
}

// Dispatch routes a document to the parser for bankID. An unknown bank id is
// not an error: there is simply no scraper for it, so the document is skipped
// with a warning and ok is false. Extraction failures propagate unchanged.
func (r *Registry) Dispatch(bankID string, doc *goquery.Document) (offers []models.Offer, ok bool, err error) {
	p, found := r.Lookup(bankID)
	if !found {
		r.logger.Warn("no parser registered for bank, skipping document", zap.String("bank_id", bankID))
		return nil, false, nil
	}
	offers, err = p.Extract(doc)
	return offers, true, err
}
