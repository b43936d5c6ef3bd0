package parser

import (
	"testing"

	"cardwise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChaseExtract(t *testing.T) {
	p := NewChaseParser(testLogger())
	doc := loadDocument(t, "testdata/chase_offers.html")

	offers, err := p.Extract(doc)
	require.NoError(t, err)
	require.Len(t, offers, 2)

	assert.ElementsMatch(t,
		[]string{"Starbucks|10% cash back on any purchase", "Adidas|15% cash back online"},
		offerSummaries(offers))
	for _, o := range offers {
		assert.Equal(t, "Chase", o.Bank.Name)
		assert.Equal(t, models.OfferTypeCashback, o.OfferType)
	}
}

func TestChaseExtractNoCards(t *testing.T) {
	p := NewChaseParser(testLogger())
	doc := parseDocumentString(t, `<div class="r9jbije">half a class is not a card</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrParsing)
}

func TestChaseExtractTooFewSpans(t *testing.T) {
	// A card with a single span is a structural failure, not a field failure.
	p := NewChaseParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="r9jbije r9jbijl">
			<span>Starbucks</span>
		</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrParsing)
	assert.NotErrorIs(t, err, models.ErrShopName)
	assert.NotErrorIs(t, err, models.ErrDescription)
}

func TestChaseExtractEmptyShopName(t *testing.T) {
	p := NewChaseParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="r9jbije r9jbijl">
			<span>  </span>
			<span>10% cash back</span>
		</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrShopName)
}

func TestChaseExtractEmptyDescription(t *testing.T) {
	p := NewChaseParser(testLogger())
	doc := parseDocumentString(t, `
		<div class="r9jbije r9jbijl">
			<span>Starbucks</span>
			<span></span>
		</div>`)

	_, err := p.Extract(doc)
	require.ErrorIs(t, err, models.ErrDescription)
}
