package ml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

const (
	FieldNeighbourhoodGroup = "neighbourhood_group"
	FieldRoomType           = "room_type"
	FieldLatitude           = "latitude"
	FieldLongitude          = "longitude"
	FieldMinimumNights      = "minimum_nights"
	FieldNumberOfReviews    = "number_of_reviews"
	FieldAvailability365    = "availability_365"
)

// Record is a listing exactly as submitted: a flat field -> value mapping.
type Record map[string]any

// Listing is the typed form of a Record after conversion and validation.
type Listing struct {
	NeighbourhoodGroup string  `json:"neighbourhood_group" validate:"required"`
	RoomType           string  `json:"room_type" validate:"required"`
	Latitude           float64 `json:"latitude" validate:"latitude"`
	Longitude          float64 `json:"longitude" validate:"longitude"`
	MinimumNights      int     `json:"minimum_nights" validate:"min=1"`
	NumberOfReviews    int     `json:"number_of_reviews" validate:"min=0"`
	Availability365    int     `json:"availability_365" validate:"min=0,max=365"`
}

// ListingFields returns the listing field names in canonical order.
func ListingFields() []string {
	return []string{
		FieldNeighbourhoodGroup,
		FieldRoomType,
		FieldLatitude,
		FieldLongitude,
		FieldMinimumNights,
		FieldNumberOfReviews,
		FieldAvailability365,
	}
}

// ExampleListing is a Midtown Manhattan apartment, used to prefill forms and the CLI.
func ExampleListing() Listing {
	return Listing{
		NeighbourhoodGroup: "Manhattan",
		RoomType:           "Entire home/apt",
		Latitude:           40.7589,
		Longitude:          -73.9851,
		MinimumNights:      2,
		NumberOfReviews:    10,
		Availability365:    365,
	}
}

func isCategorical(field string) bool {
	return field == FieldNeighbourhoodGroup || field == FieldRoomType
}

// ParseRecord decodes a JSON object into a Record. Numbers stay json.Number so that
// integer fields can be checked for fractional parts later.
func ParseRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var record Record
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("%w: listing must be a JSON object: %v", ErrInvalidValue, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: listing must be a JSON object", ErrInvalidValue)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after listing object", ErrInvalidValue)
	}
	return record, nil
}

// Record converts a typed listing back into its flat form.
func (l Listing) Record() Record {
	return Record{
		FieldNeighbourhoodGroup: l.NeighbourhoodGroup,
		FieldRoomType:           l.RoomType,
		FieldLatitude:           l.Latitude,
		FieldLongitude:          l.Longitude,
		FieldMinimumNights:      l.MinimumNights,
		FieldNumberOfReviews:    l.NumberOfReviews,
		FieldAvailability365:    l.Availability365,
	}
}

// checkFieldSet enforces equality between the record keys and the expected features.
func checkFieldSet(record Record, features []string) error {
	expected := make(map[string]struct{}, len(features))
	var missing []string
	for _, name := range features {
		expected[name] = struct{}{}
		if _, ok := record[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	var extra []string
	for name := range record {
		if _, ok := expected[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("%w: %s", ErrUnexpectedField, strings.Join(extra, ", "))
	}
	return nil
}

// toListing converts record values into a Listing without range checks.
func toListing(record Record) (Listing, error) {
	var (
		l   Listing
		err error
	)
	if l.NeighbourhoodGroup, err = stringField(record, FieldNeighbourhoodGroup); err != nil {
		return l, err
	}
	if l.RoomType, err = stringField(record, FieldRoomType); err != nil {
		return l, err
	}
	if l.Latitude, err = floatField(record, FieldLatitude); err != nil {
		return l, err
	}
	if l.Longitude, err = floatField(record, FieldLongitude); err != nil {
		return l, err
	}
	if l.MinimumNights, err = intField(record, FieldMinimumNights); err != nil {
		return l, err
	}
	if l.NumberOfReviews, err = intField(record, FieldNumberOfReviews); err != nil {
		return l, err
	}
	if l.Availability365, err = intField(record, FieldAvailability365); err != nil {
		return l, err
	}
	return l, nil
}

func stringField(record Record, name string) (string, error) {
	value, ok := record[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidValue, name, record[name])
	}
	if value == "" {
		return "", fmt.Errorf("%w: %s must not be empty", ErrInvalidValue, name)
	}
	return value, nil
}

func floatField(record Record, name string) (float64, error) {
	var (
		value float64
		err   error
	)
	switch v := record[name].(type) {
	case json.Number:
		value, err = v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
		}
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidValue, name, record[name])
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrInvalidValue, name)
	}
	return value, nil
}

func intField(record Record, name string) (int, error) {
	switch v := record[name].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	}
	value, err := floatField(record, name)
	if err != nil {
		return 0, err
	}
	if value != math.Trunc(value) || math.Abs(value) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %v", ErrInvalidValue, name, value)
	}
	return int(value), nil
}
