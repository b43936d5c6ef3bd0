// Package format renders offers for humans (colorized terminal lines) and
// machines (round-trippable JSON).
package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cardwise/internal/models"

	"github.com/jedib0t/go-pretty/v6/text"
)

// OfferFormatter renders a list of offers to a string.
type OfferFormatter interface {
	Format(offers []models.Offer) (string, error)
}

var offerTypeColors = map[models.OfferType]text.Color{
	models.OfferTypeCashback: text.FgGreen,
	models.OfferTypePoints:   text.FgBlue,
	models.OfferTypeMisc:     text.FgMagenta,
}

// TextFormatter renders one colorized line per offer:
//
//	[Bank] Shop: TYPE - description (expiry info)
type TextFormatter struct{}

func NewTextFormatter() *TextFormatter { return &TextFormatter{} }

func (f *TextFormatter) Format(offers []models.Offer) (string, error) {
	if len(offers) == 0 {
		return text.Faint.Sprint("No offers found."), nil
	}

	lines := make([]string, 0, len(offers))
	for _, o := range offers {
		expiry := "(no expiry date found)"
		if o.ExpiryDate != nil {
			expiry = fmt.Sprintf("(expires: %s)", o.ExpiryDate.Format("2006-01-02"))
		}

		color, ok := offerTypeColors[o.OfferType]
		if !ok {
			color = text.FgMagenta
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s - %s %s",
			text.FgCyan.Sprintf("[%s]", o.Bank.Name),
			text.Colors{text.Bold, text.FgWhite}.Sprint(o.Shop.Name),
			color.Sprint(strings.ToUpper(string(o.OfferType))),
			o.Description,
			text.Faint.Sprint(expiry),
		))
	}
	return strings.Join(lines, "\n"), nil
}

// entityJSON is the wire shape for shops and banks: display name plus the
// derived id.
type entityJSON struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type offerJSON struct {
	ID          string           `json:"id"`
	Shop        entityJSON       `json:"shop"`
	Bank        entityJSON       `json:"bank"`
	OfferType   models.OfferType `json:"offer_type"`
	Description string           `json:"description"`
	ExpiryDate  *time.Time       `json:"expiry_date"`
}

// MarshalOffers encodes offers as indented JSON. Timestamps are RFC 3339.
func MarshalOffers(offers []models.Offer) ([]byte, error) {
	out := make([]offerJSON, 0, len(offers))
	for _, o := range offers {
		out = append(out, offerJSON{
			ID:          o.ID(),
			Shop:        entityJSON{Name: o.Shop.Name, ID: o.Shop.ID()},
			Bank:        entityJSON{Name: o.Bank.Name, ID: o.Bank.ID()},
			OfferType:   o.OfferType,
			Description: o.Description,
			ExpiryDate:  o.ExpiryDate,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// DecodeOffers is the inverse of MarshalOffers.
func DecodeOffers(data []byte) ([]models.Offer, error) {
	var wire []offerJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode offers: %w", err)
	}
	offers := make([]models.Offer, 0, len(wire))
	for _, w := range wire {
		offers = append(offers, models.Offer{
			Shop:        models.Shop{Name: w.Shop.Name},
			Bank:        models.Bank{Name: w.Bank.Name},
			OfferType:   w.OfferType,
			Description: w.Description,
			ExpiryDate:  w.ExpiryDate,
		})
	}
	return offers, nil
}

// JSONFormatter renders offers as indented JSON.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

func (f *JSONFormatter) Format(offers []models.Offer) (string, error) {
	data, err := MarshalOffers(offers)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
