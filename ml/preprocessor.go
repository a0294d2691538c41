package ml

import (
	"fmt"

	"airbnbprice/validation"
)

// ValidateRecord checks the field set, converts the values and applies range rules.
func ValidateRecord(b *Bundle, record Record) (Listing, error) {
	if record == nil {
		return Listing{}, fmt.Errorf("%w: listing is empty", ErrMissingField)
	}
	if err := checkFieldSet(record, b.Features); err != nil {
		return Listing{}, err
	}
	listing, err := toListing(record)
	if err != nil {
		return Listing{}, err
	}
	if err := validation.Struct(listing); err != nil {
		return Listing{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return listing, nil
}

// Preprocess turns a record into the feature vector the bundle's estimator expects,
// encoded and ordered as at training time.
func Preprocess(b *Bundle, record Record) ([]float64, error) {
	listing, err := ValidateRecord(b, record)
	if err != nil {
		return nil, err
	}
	return b.align(listing)
}

func (b *Bundle) align(listing Listing) ([]float64, error) {
	values := map[string]float64{
		FieldLatitude:        listing.Latitude,
		FieldLongitude:       listing.Longitude,
		FieldMinimumNights:   float64(listing.MinimumNights),
		FieldNumberOfReviews: float64(listing.NumberOfReviews),
		FieldAvailability365: float64(listing.Availability365),
	}
	categories := map[string]string{
		FieldNeighbourhoodGroup: listing.NeighbourhoodGroup,
		FieldRoomType:           listing.RoomType,
	}

	vector := make([]float64, len(b.Features))
	for i, name := range b.Features {
		if encoder, ok := b.Encoders[name]; ok {
			code, err := encoder.Transform(categories[name])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			vector[i] = code
			continue
		}
		value, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("%w: no value for feature %s", ErrInvalidBundle, name)
		}
		vector[i] = value
	}
	return vector, nil
}
