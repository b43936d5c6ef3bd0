package parser

import (
	"testing"

	"cardwise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapitalOneExtract(t *testing.T) {
	p := NewCapitalOneParser(testLogger())
	doc := loadDocument(t, "testdata/capital_one_offers.html")

	offers, err := p.Extract(doc)
	require.NoError(t, err)
	require.Len(t, offers, 2)

	assert.ElementsMatch(t,
		[]string{"starbucks|3X Points at Starbucks", "adidas|5X Points on shoes"},
		offerSummaries(offers))
	for _, o := range offers {
		assert.Equal(t, "Capital One", o.Bank.Name)
		assert.Equal(t, models.OfferTypePoints, o.OfferType)
	}
}

func TestCapitalOneExtractNoTiles(t *testing.T) {
	p := NewCapitalOneParser(testLogger())
	doc := parseDocumentString(t, `<html><body><p>no tiles</p></body></html>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrParsing)
}

func TestCapitalOneExtractMissingSrc(t *testing.T) {
	p := NewCapitalOneParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="standard-tile relative flex flex-col justify-between w-full h-full mt-0">
			<div><img alt="no src"/></div>
			<div>3X Points</div>
		</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrShopName)
}

func TestCapitalOneExtractDomainNotInURL(t *testing.T) {
	p := NewCapitalOneParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="standard-tile relative flex flex-col justify-between w-full h-full mt-0">
			<div><img src="https://cdn.example.com/logo.png"/></div>
			<div>3X Points</div>
		</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrShopName)
	assert.Contains(t, err.Error(), "cdn.example.com/logo.png")
}

func TestCapitalOneExtractMissingDescriptionDiv(t *testing.T) {
	p := NewCapitalOneParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="standard-tile relative flex flex-col justify-between w-full h-full mt-0">
			<img src="https://logo.clearbit.com/api?domain=starbucks.com"/>
		</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrDescription)
}
