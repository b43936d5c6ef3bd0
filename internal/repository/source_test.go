package repository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"cardwise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDirSourceFetch(t *testing.T) {
	dir := t.TempDir()
	bank := models.Bank{Name: "Bank of America"}
	path := filepath.Join(dir, "bank_of_america_offers.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))

	src := NewDirSource(dir)
	assert.Equal(t, path, src.Path(bank))

	rc, err := src.Fetch(context.Background(), bank)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestDirSourceFetchMissing(t *testing.T) {
	src := NewDirSource(t.TempDir())

	_, err := src.Fetch(context.Background(), models.Bank{Name: "Chase"})
	require.ErrorIs(t, err, models.ErrSourceNotFound)
	require.ErrorIs(t, err, models.ErrOfferProcessing)
	assert.Contains(t, err.Error(), "chase_offers.html")
}

func TestHTTPSourceUnconfiguredBank(t *testing.T) {
	src := NewHTTPSource(map[string]string{"chase": "https://example.com/offers"})

	_, err := src.Fetch(context.Background(), models.Bank{Name: "Capital One"})
	require.ErrorIs(t, err, models.ErrSourceNotFound)
}

func TestHeadlessSourceResolve(t *testing.T) {
	src := NewHeadlessSource(
		map[string]string{"chase": "https://example.com/offers"},
		map[string]string{"chase": "div.offer-list"},
		zap.NewNop(),
	)

	url, selector, err := src.resolve(models.Bank{Name: "Chase"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/offers", url)
	assert.Equal(t, "div.offer-list", selector)

	_, _, err = src.resolve(models.Bank{Name: "Capital One"})
	require.ErrorIs(t, err, models.ErrSourceNotFound)
}

func TestHeadlessSourceResolveDefaultSelector(t *testing.T) {
	src := NewHeadlessSource(map[string]string{"chase": "https://example.com/offers"}, nil, zap.NewNop())

	_, selector, err := src.resolve(models.Bank{Name: "Chase"})
	require.NoError(t, err)
	assert.Equal(t, "body", selector)
}
