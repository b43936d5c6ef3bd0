package models

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Every error raised by the offer pipeline wraps
// ErrOfferProcessing so callers can separate domain failures from programming
// errors with a single errors.Is check. The CLI maps the former to exit code
// 1 and everything else to 2.
var (
	// ErrOfferProcessing is the root of all offer pipeline errors.
	ErrOfferProcessing = errors.New("offer processing failed")

	// ErrSourceNotFound signals that a bank's HTML document does not exist
	// at the expected location. Survivable: skip the bank and continue.
	ErrSourceNotFound = fmt.Errorf("%w: offer source not found", ErrOfferProcessing)

	// ErrParsing signals that the expected repeating container is absent
	// from a document, or a container is structurally broken. Fatal for
	// that document: an empty page is indistinguishable from scraper drift.
	ErrParsing = fmt.Errorf("%w: offer parsing failed", ErrOfferProcessing)

	// ErrShopName signals that a container yielded no usable shop name.
	ErrShopName = fmt.Errorf("%w: shop name not found", ErrParsing)

	// ErrDescription signals that a container yielded no offer description.
	ErrDescription = fmt.Errorf("%w: description not found", ErrParsing)
)
