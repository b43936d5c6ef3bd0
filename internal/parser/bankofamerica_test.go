package parser

import (
	"testing"

	"cardwise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankOfAmericaExtract(t *testing.T) {
	p := NewBankOfAmericaParser(testLogger())
	doc := loadDocument(t, "testdata/bank_of_america_offers.html")

	offers, err := p.Extract(doc)
	require.NoError(t, err)
	require.Len(t, offers, 2)

	assert.ElementsMatch(t,
		[]string{"Starbucks|10% Cash Back", "McDonald's|5% Cash Back"},
		offerSummaries(offers))
	for _, o := range offers {
		assert.Equal(t, "Bank of America", o.Bank.Name)
		assert.Equal(t, models.OfferTypeCashback, o.OfferType)
		assert.Nil(t, o.ExpiryDate)
	}
}

func TestBankOfAmericaExtractNoWrappers(t *testing.T) {
	p := NewBankOfAmericaParser(testLogger())
	doc := parseDocumentString(t, `<html><body><div class="unrelated">nothing here</div></body></html>`)

	offers, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrParsing)
	require.ErrorIs(t, err, models.ErrOfferProcessing)
	assert.Nil(t, offers)
}

func TestBankOfAmericaExtractMissingAlt(t *testing.T) {
	p := NewBankOfAmericaParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="deal-logo-wrapper top">
			<img src="/logos/mystery.png"/>
			<span class="deal-offer-percent">10% Cash Back</span>
		</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrShopName)
	assert.Contains(t, err.Error(), "Bank of America")
}

func TestBankOfAmericaExtractMissingDescription(t *testing.T) {
	p := NewBankOfAmericaParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="deal-logo-wrapper top">
			<img src="/logos/starbucks.png" alt="Starbucks Logo"/>
			<span class="deal-offer-percent">   </span>
		</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrDescription)
	assert.NotErrorIs(t, err, models.ErrShopName)
}

func TestBankOfAmericaExtractFirstBadCardAborts(t *testing.T) {
	// One valid card followed by a broken one: the whole document fails.
	p := NewBankOfAmericaParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="deal-logo-wrapper top">
			<img alt="Starbucks Logo"/>
			<span class="deal-offer-percent">10% Cash Back</span>
		</div>
		<div class="deal-logo-wrapper top">
			<img/>
			<span class="deal-offer-percent">5% Cash Back</span>
		</div>`)

	offers, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrShopName)
	assert.Nil(t, offers)
}

func TestBankOfAmericaExtractDedupesRepeatedCards(t *testing.T) {
	p := NewBankOfAmericaParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="deal-logo-wrapper top">
			<img alt="Starbucks Logo"/>
			<span class="deal-offer-percent">10% Cash Back</span>
		</div>
		<div class="deal-logo-wrapper top">
			<img alt="Starbucks Logo"/>
			<span class="deal-offer-percent">10% Cash Back</span>
		</div>`)

	offers, err := p.Extract(doc)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "Starbucks", offers[0].Shop.Name)
}
