package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// OfferType classifies the reward attached to an offer.
type OfferType string

const (
	OfferTypeCashback OfferType = "cashback"
	OfferTypePoints   OfferType = "points"
	OfferTypeMisc     OfferType = "misc"
)

// Normalize canonicalizes a display name into a stable identifier: lowercase,
// alphanumerics only, spaces joined with underscores. Underscores are kept so
// that Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

// Shop is a retailer an offer applies to. Identity is derived from the
// normalized name, so differently cased or punctuated spellings unify.
type Shop struct {
	Name string
}

// ID returns the deterministic identifier for the shop.
func (s Shop) ID() string { return Normalize(s.Name) }

// Equal reports whether two shops share the same identity.
func (s Shop) Equal(other Shop) bool { return s.ID() == other.ID() }

// Bank is the card issuer advertising an offer.
type Bank struct {
	Name string
}

// ID returns the deterministic identifier for the bank.
func (b Bank) ID() string { return Normalize(b.Name) }

// Equal reports whether two banks share the same identity.
func (b Bank) Equal(other Bank) bool { return b.ID() == other.ID() }

// Offer is a single advertised reward tied to one shop and one bank.
// Offers are value objects: construct fresh, never mutate in place.
type Offer struct {
	Shop        Shop
	Bank        Bank
	OfferType   OfferType
	Description string
	ExpiryDate  *time.Time
}

// ID is the deduplication key: identical shop, bank, type and description
// collapse to one offer. It is recomputed from the fields on every call, and
// the wording of the description is part of the identity.
func (o Offer) ID() string {
	return fmt.Sprintf("%s|%s|%s|%s", o.Shop.ID(), o.Bank.ID(), o.OfferType, o.Description)
}

// ExpiredAt reports whether the offer has expired relative to ref.
// Offers without an expiry date never expire.
func (o Offer) ExpiredAt(ref time.Time) bool {
	if o.ExpiryDate == nil {
		return false
	}
	return ref.After(*o.ExpiryDate)
}

// Expired reports whether the offer has expired as of now.
func (o Offer) Expired() bool { return o.ExpiredAt(time.Now()) }

// DedupeOffers collapses offers that share an ID, keeping the first
// occurrence. Input order is otherwise preserved.
func DedupeOffers(offers []Offer) []Offer {
	seen := make(map[string]struct{}, len(offers))
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		id := o.ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, o)
	}
	return out
}
