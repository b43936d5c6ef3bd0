package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"cardwise/internal/matcher"
	"cardwise/internal/models"
	"cardwise/internal/parser"
	"cardwise/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSource serves canned HTML per bank id; absent banks report
// ErrSourceNotFound like a missing file would.
type stubSource struct {
	docs map[string]string
}

func (s *stubSource) Fetch(ctx context.Context, bank models.Bank) (io.ReadCloser, error) {
	doc, ok := s.docs[bank.ID()]
	if !ok {
		return nil, fmt.Errorf("[%s] %w: no stub document", bank.Name, models.ErrSourceNotFound)
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

const bofaDoc = `
	<div class="deal-logo-wrapper top">
		<img alt="Starbucks Logo"/>
		<span class="deal-offer-percent">10% Cash Back</span>
	</div>`

const chaseDoc = `
	<div class="r9jbije r9jbijl">
		<span>Adidas</span>
		<span>15% cash back online</span>
	</div>`

const chaseBrokenDoc = `<div class="r9jbije r9jbijl"><span>only one span</span></div>`

func TestIngestAllSkipsMissingSources(t *testing.T) {
	// only two of the three banks have documents; Capital One is skipped
	src := &stubSource{docs: map[string]string{
		"bank_of_america": bofaDoc,
		"chase":           chaseDoc,
	}}
	in := NewIngestor(parser.Discover(zap.NewNop()), src, zap.NewNop())

	offers, err := in.IngestAll(context.Background())
	require.NoError(t, err)
	require.Len(t, offers, 2)

	banks := make(map[string]struct{})
	for _, o := range offers {
		banks[o.Bank.Name] = struct{}{}
	}
	assert.Contains(t, banks, "Bank of America")
	assert.Contains(t, banks, "Chase")
}

func TestIngestAllParseFailureAbortsRun(t *testing.T) {
	src := &stubSource{docs: map[string]string{
		"bank_of_america": bofaDoc,
		"chase":           chaseBrokenDoc,
	}}
	in := NewIngestor(parser.Discover(zap.NewNop()), src, zap.NewNop())

	_, err := in.IngestAll(context.Background())
	require.ErrorIs(t, err, models.ErrParsing)
}

func TestIngestAllDedupesAcrossBanks(t *testing.T) {
	// the same card twice in one document still collapses after the union
	doubled := bofaDoc + bofaDoc
	src := &stubSource{docs: map[string]string{"bank_of_america": doubled}}
	in := NewIngestor(parser.Discover(zap.NewNop()), src, zap.NewNop())

	offers, err := in.IngestAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestFinderIngestFallback(t *testing.T) {
	// empty repository: the finder ingests, persists, then serves
	src := &stubSource{docs: map[string]string{"chase": chaseDoc}}
	in := NewIngestor(parser.Discover(zap.NewNop()), src, zap.NewNop())
	repo := repository.NewMemoryOfferRepository()
	f := NewFinder(repo, in, matcher.New(75), zap.NewNop())

	got, err := f.FindOffers(context.Background(), []string{"adidas"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Adidas", got[0].Shop.Name)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
