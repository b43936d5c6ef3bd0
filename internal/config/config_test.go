package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceURLsAndSelectors(t *testing.T) {
	conf := &Config{Banks: []BankSource{
		{ID: "chase", URL: "https://example.com/chase", Selector: "div.offer-list"},
		{ID: "capital_one", URL: "https://example.com/capone"},
	}}

	assert.Equal(t, map[string]string{
		"chase":       "https://example.com/chase",
		"capital_one": "https://example.com/capone",
	}, conf.SourceURLs())

	// banks without a selector are left to the source default
	assert.Equal(t, map[string]string{"chase": "div.offer-list"}, conf.SourceSelectors())
}

func TestSourceURLsEmpty(t *testing.T) {
	conf := &Config{}
	assert.Nil(t, conf.SourceURLs())
	assert.Nil(t, conf.SourceSelectors())
}
