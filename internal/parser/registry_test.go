package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	parsers := Discover(testLogger())
	require.Len(t, parsers, 3)

	ids := make(map[string]struct{}, len(parsers))
	for _, p := range parsers {
		ids[p.Bank().ID()] = struct{}{}
	}
	assert.Contains(t, ids, "bank_of_america")
	assert.Contains(t, ids, "capital_one")
	assert.Contains(t, ids, "chase")
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(testLogger())

	p, ok := reg.Lookup("chase")
	require.True(t, ok)
	assert.Equal(t, "Chase", p.Bank().Name)

	// Lookup normalizes, display names resolve too.
	p, ok = reg.Lookup("Bank of America")
	require.True(t, ok)
	assert.Equal(t, "Bank of America", p.Bank().Name)

	_, ok = reg.Lookup("monzo")
	assert.False(t, ok)
}

func TestRegistryDispatchUnknownBankIsNotFatal(t *testing.T) {
	reg := NewRegistry(testLogger())
	doc := parseDocumentString(t, `<html><body></body></html>`)

	offers, ok, err := reg.Dispatch("monzo", doc)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, offers)
}

func TestRegistryDispatchRoutesToBankParser(t *testing.T) {
	reg := NewRegistry(testLogger())
	doc := loadDocument(t, "testdata/chase_offers.html")

	offers, ok, err := reg.Dispatch("chase", doc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, offers, 2)

	// The same document through the wrong bank's parser is a hard failure.
	_, ok, err = reg.Dispatch("capital_one", doc)
	require.True(t, ok)
	require.Error(t, err)
}
