package parser

import (
	"fmt"
	"io"

	"cardwise/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// OfferParser is the contract for bank-specific offer extraction. Each
// implementation is configured with a fixed bank and offer type and turns a
// parsed HTML document into offer candidates. Extraction is pure: no I/O and
// no mutation of the document.
//
// A document whose repeating container is entirely absent yields ErrParsing.
// A container missing its shop name or description yields ErrShopName or
// ErrDescription and aborts the whole document.
type OfferParser interface {
	Bank() models.Bank
	OfferType() models.OfferType
	Extract(doc *goquery.Document) ([]models.Offer, error)
}

// ParseDocument parses raw HTML into a goquery document.
func ParseDocument(r io.Reader) (*goquery.Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(node), nil
}
