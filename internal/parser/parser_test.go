package parser

import (
	"os"
	"strings"
	"testing"

	"cardwise/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// loadDocument parses a golden HTML file from testdata.
func loadDocument(t *testing.T, filename string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile(filename)
	require.NoError(t, err, "failed to read golden file %s", filename)
	return parseDocumentString(t, string(data))
}

func parseDocumentString(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

// offerSummaries reduces offers to comparable (shop, description) pairs so
// tests assert set membership, never extraction order.
func offerSummaries(offers []models.Offer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.Shop.Name+"|"+o.Description)
	}
	return out
}

func testLogger() *zap.Logger { return zap.NewNop() }
