// Package matcher matches free-text shop queries against the known shop
// universe using a normalized edit-distance similarity.
package matcher

import (
	"strings"

	"cardwise/internal/models"

	"github.com/antzucaro/matchr"
)

// DefaultThreshold is the minimum similarity score for a match.
const DefaultThreshold = 80.0

// Ratio scores the similarity of two strings in [0, 100]. The formula is
//
//	100 * (1 - levenshtein(a, b) / (len(a) + len(b)))
//
// over runes. 100 means the strings are identical; unrelated names of
// comparable length land around 50-60, so thresholds live in the 75-100
// band. Comparison is case-sensitive, callers fold case first.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	dist := matchr.Levenshtein(a, b)
	return 100 * (1 - float64(dist)/float64(total))
}

// Matcher is a threshold-based fuzzy shop matcher. It is stateless apart
// from its configured threshold and safe for concurrent use.
type Matcher struct {
	threshold float64
}

// New returns a matcher with the given minimum score.
func New(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// Default returns a matcher at DefaultThreshold.
func Default() *Matcher { return New(DefaultThreshold) }

// Threshold returns the configured minimum score.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Match returns the shops whose case-folded name scores at or above the
// threshold against the case-folded query. An empty query matches nothing:
// short names would otherwise score nonzero against it. No matches is an
// empty result, not an error. Result order is unspecified.
func (m *Matcher) Match(query string, knownShops []models.Shop) []models.Shop {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matched []models.Shop
	seen := make(map[string]struct{}, len(knownShops))
	for _, shop := range knownShops {
		name := strings.ToLower(shop.Name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if Ratio(query, name) >= m.threshold {
			matched = append(matched, shop)
		}
	}
	return matched
}
