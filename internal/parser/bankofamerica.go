package parser

import (
	"fmt"
	"strings"

	"cardwise/internal/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	bofaBankName     = "Bank of America"
	bofaCardSelector = "div.deal-logo-wrapper.top"
	bofaSpanSelector = "span.deal-offer-percent"
)

// BankOfAmericaParser extracts cashback offers from Bank of America deal
// pages. The shop name comes from the logo img alt attribute (trailing
// " Logo" label stripped), the description from the deal percent span.
type BankOfAmericaParser struct {
	bank   models.Bank
	logger *zap.Logger
}

func NewBankOfAmericaParser(logger *zap.Logger) *BankOfAmericaParser {
	return &BankOfAmericaParser{bank: models.Bank{Name: bofaBankName}, logger: logger}
}

func (p *BankOfAmericaParser) Bank() models.Bank { return p.bank }

func (p *BankOfAmericaParser) OfferType() models.OfferType { return models.OfferTypeCashback }

func (p *BankOfAmericaParser) Extract(doc *goquery.Document) ([]models.Offer, error) {
	cards := doc.Find(bofaCardSelector)
	if cards.Length() == 0 {
		return nil, fmt.Errorf("[%s] %w: no deal wrappers matched %q", p.bank.Name, models.ErrParsing, bofaCardSelector)
	}
	p.logger.Debug("found deal wrappers", zap.String("bank", p.bank.Name), zap.Int("count", cards.Length()))

	offers := make([]models.Offer, 0, cards.Length())
	var extractErr error
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		alt, ok := card.Find("img").Attr("alt")
		shopName := strings.TrimSpace(strings.ReplaceAll(alt, " Logo", ""))
		if !ok || shopName == "" {
			extractErr = fmt.Errorf("[%s] %w: deal wrapper %d has no usable alt attribute on its logo img",
				p.bank.Name, models.ErrShopName, i)
			return false
		}

		description := strings.TrimSpace(card.Find(bofaSpanSelector).Text())
		if description == "" {
			extractErr = fmt.Errorf("[%s] %w: deal wrapper %d (%s) has no text in %q",
				p.bank.Name, models.ErrDescription, i, shopName, bofaSpanSelector)
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
