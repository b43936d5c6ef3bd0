package parser

import (
	"fmt"
	"regexp"
	"strings"

	"cardwise/internal/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	capOneBankName = "Capital One"
	// Live tiles carry a long utility-class list ("standard-tile relative
	// flex flex-col justify-between w-full h-full mt-0"); matching the one
	// stable class is enough and survives layout tweaks.
	capOneTileSelector = "div.standard-tile"
)

// capOneDomainRegex pulls the shop token out of the logo URL, e.g.
// "...?domain=starbucks.com" yields "starbucks".
var capOneDomainRegex = regexp.MustCompile(`domain=([^.]+)\.`)

// CapitalOneParser extracts points offers from Capital One offer tiles. The
// shop name is embedded in the tile's img src URL as a domain query
// parameter; the description is the second div inside the tile.
type CapitalOneParser struct {
	bank   models.Bank
	logger *zap.Logger
}

func NewCapitalOneParser(logger *zap.Logger) *CapitalOneParser {
	return &CapitalOneParser{bank: models.Bank{Name: capOneBankName}, logger: logger}
}

func (p *CapitalOneParser) Bank() models.Bank { return p.bank }

func (p *CapitalOneParser) OfferType() models.OfferType { return models.OfferTypePoints }

func (p *CapitalOneParser) Extract(doc *goquery.Document) ([]models.Offer, error) {
	tiles := doc.Find(capOneTileSelector)
	if tiles.Length() == 0 {
		return nil, fmt.Errorf("[%s] %w: no tiles matched %q", p.bank.Name, models.ErrParsing, capOneTileSelector)
	}
	p.logger.Debug("found offer tiles", zap.String("bank", p.bank.Name), zap.Int("count", tiles.Length()))

	offers := make([]models.Offer, 0, tiles.Length())
	var extractErr error
	tiles.EachWithBreak(func(i int, tile *goquery.Selection) bool {
		src, ok := tile.Find("img").Attr("src")
		if !ok {
			extractErr = fmt.Errorf("[%s] %w: tile %d has no src attribute on its img, no URL to derive a shop name from",
				p.bank.Name, models.ErrShopName, i)
			return false
		}
		match := capOneDomainRegex.FindStringSubmatch(src)
		if match == nil {
			extractErr = fmt.Errorf("[%s] %w: shop domain not at expected position in URL %q",
				p.bank.Name, models.ErrShopName, src)
			return false
		}
		shopName := strings.TrimSpace(match[1])

		divs := tile.Find("div")
		if divs.Length() < 2 {
			extractErr = fmt.Errorf("[%s] %w: tile %d has %d inner divs, expected the description at index 1",
				p.bank.Name, models.ErrDescription, i, divs.Length())
			return false
		}
		description := strings.TrimSpace(divs.Eq(1).Text())
		if description == "" {
			extractErr = fmt.Errorf("[%s] %w: tile %d (%s) has no text in its description div",
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
