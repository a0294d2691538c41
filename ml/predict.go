package ml

import (
	"fmt"
	"math"
)

// PredictPrice validates record against the bundle and returns the estimated nightly price.
func PredictPrice(b *Bundle, record Record) (float64, error) {
	_, price, err := PredictListing(b, record)
	return price, err
}

// PredictListing is PredictPrice that also returns the validated listing.
func PredictListing(b *Bundle, record Record) (Listing, float64, error) {
	if b == nil || b.model == nil {
		return Listing{}, 0, ErrModelNotLoaded
	}
	listing, err := ValidateRecord(b, record)
	if err != nil {
		return Listing{}, 0, err
	}
	vector, err := b.align(listing)
	if err != nil {
		return Listing{}, 0, err
	}
	price, err := b.model.Predict(vector)
	if err != nil {
		return Listing{}, 0, fmt.Errorf("predict: %w", err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Listing{}, 0, fmt.Errorf("predict: non-finite result %v", price)
	}
	return listing, price, nil
}
