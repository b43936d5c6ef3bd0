package parser

import (
	"fmt"
	"strings"

	"cardwise/internal/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	chaseBankName     = "Chase"
	chaseCardSelector = "div.r9jbije.r9jbijl"
)

// ChaseParser extracts cashback offers from Chase offer cards. Each card
// carries two spans: the shop name at index 0 and the description at index 1.
type ChaseParser struct {
	bank   models.Bank
	logger *zap.Logger
}

func NewChaseParser(logger *zap.Logger) *ChaseParser {
	return &ChaseParser{bank: models.Bank{Name: chaseBankName}, logger: logger}
}

func (p *ChaseParser) Bank() models.Bank { return p.bank }

func (p *ChaseParser) OfferType() models.OfferType { return models.OfferTypeCashback }

func (p *ChaseParser) Extract(doc *goquery.Document) ([]models.Offer, error) {
	cards := doc.Find(chaseCardSelector)
	if cards.Length() == 0 {
		return nil, fmt.Errorf("[%s] %w: no offer cards matched %q", p.bank.Name, models.ErrParsing, chaseCardSelector)
	}
	p.logger.Debug("found offer cards", zap.String("bank", p.bank.Name), zap.Int("count", cards.Length()))

	offers := make([]models.Offer, 0, cards.Length())
	var extractErr error
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		spans := card.Find("span")
		if spans.Length() < 2 {
			// Incomplete card: need shop name (span 0) and description (span 1).
			extractErr = fmt.Errorf("[%s] %w: card %d has %d spans, need at least 2 for shop name and description",
				p.bank.Name, models.ErrParsing, i, spans.Length())
			return false
		}

		shopName := strings.TrimSpace(spans.Eq(0).Text())
		if shopName == "" {
			extractErr = fmt.Errorf("[%s] %w: card %d has no text in its shop name span",
				p.bank.Name, models.ErrShopName, i)
			return false
		}
		description := strings.TrimSpace(spans.Eq(1).Text())
		if description == "" {
			extractErr = fmt.Errorf("[%s] %w: card %d (%s) has no text in its description span",
				p.bank.Name, models.ErrDescription, i, shopName)
			return false
		}

		offers = append(offers, models.Offer{
			Shop:        models.Shop{Name: shopName},
			Bank:        p.bank,
			OfferType:   p.OfferType(),
			Description: description,
		})
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}
	return models.DedupeOffers(offers), nil
}
