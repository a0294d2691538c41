package ml

import (
	"errors"
	"strings"
	"testing"
)

func loadTestBundle(t *testing.T) *Bundle {
	t.Helper()
	bundle, err := LoadBundleFile("testdata/airbnb_nyc_tree.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return bundle
}

func brooklynRecord() Record {
	return Record{
		"neighbourhood_group": "Brooklyn",
		"room_type":           "Private room",
		"latitude":            40.6782,
		"longitude":           -73.9442,
		"minimum_nights":      1,
		"number_of_reviews":   5,
		"availability_365":    200,
	}
}

func TestPreprocessAlignsAndEncodes(t *testing.T) {
	bundle := loadTestBundle(t)
	vector, err := Preprocess(bundle, brooklynRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []float64{1, 1, 40.6782, -73.9442, 1, 5, 200}
	if len(vector) != len(expected) {
		t.Fatalf("unexpected vector length: %d", len(vector))
	}
	for i := range expected {
		if vector[i] != expected[i] {
			t.Fatalf("feature %s: expected %v, got %v", bundle.Features[i], expected[i], vector[i])
		}
	}
}

func TestPreprocessFollowsBundleOrder(t *testing.T) {
	bundle := loadTestBundle(t)
	bundle.Features = []string{
		"availability_365", "room_type", "number_of_reviews", "minimum_nights",
		"longitude", "latitude", "neighbourhood_group",
	}
	vector, err := Preprocess(bundle, brooklynRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vector[0] != 200 || vector[1] != 1 || vector[6] != 1 || vector[5] != 40.6782 {
		t.Fatalf("vector not aligned to bundle features: %v", vector)
	}
}

func TestPreprocessRejectsBadRecords(t *testing.T) {
	bundle := loadTestBundle(t)

	tests := []struct {
		name    string
		mutate  func(Record)
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing latitude",
			mutate:  func(r Record) { delete(r, "latitude") },
			wantErr: ErrMissingField,
			wantMsg: "latitude",
		},
		{
			name: "missing categoricals",
			mutate: func(r Record) {
				delete(r, "neighbourhood_group")
				delete(r, "room_type")
			},
			wantErr: ErrMissingField,
			wantMsg: "neighbourhood_group, room_type",
		},
		{
			name:    "extra field",
			mutate:  func(r Record) { r["extra_field"] = "should be ignored" },
			wantErr: ErrUnexpectedField,
			wantMsg: "extra_field",
		},
		{
			name:    "latitude above 90",
			mutate:  func(r Record) { r["latitude"] = 90.5 },
			wantErr: ErrInvalidValue,
			wantMsg: "latitude",
		},
		{
			name:    "longitude below -180",
			mutate:  func(r Record) { r["longitude"] = -180.01 },
			wantErr: ErrInvalidValue,
			wantMsg: "longitude",
		},
		{
			name:    "zero nights",
			mutate:  func(r Record) { r["minimum_nights"] = 0 },
			wantErr: ErrInvalidValue,
			wantMsg: "minimum_nights must be at least 1",
		},
		{
			name:    "negative reviews",
			mutate:  func(r Record) { r["number_of_reviews"] = -1 },
			wantErr: ErrInvalidValue,
			wantMsg: "number_of_reviews",
		},
		{
			name:    "availability above 365",
			mutate:  func(r Record) { r["availability_365"] = 366 },
			wantErr: ErrInvalidValue,
			wantMsg: "availability_365 must be at most 365",
		},
		{
			name:    "negative availability",
			mutate:  func(r Record) { r["availability_365"] = -3 },
			wantErr: ErrInvalidValue,
			wantMsg: "availability_365",
		},
		{
			name:    "fractional nights",
			mutate:  func(r Record) { r["minimum_nights"] = 1.5 },
			wantErr: ErrInvalidValue,
			wantMsg: "whole number",
		},
		{
			name:    "numeric as string",
			mutate:  func(r Record) { r["latitude"] = "40.6782" },
			wantErr: ErrInvalidValue,
			wantMsg: "must be a number",
		},
		{
			name:    "categorical as number",
			mutate:  func(r Record) { r["room_type"] = 0 },
			wantErr: ErrInvalidValue,
			wantMsg: "must be a string",
		},
		{
			name:    "unknown neighbourhood",
			mutate:  func(r Record) { r["neighbourhood_group"] = "Hoboken" },
			wantErr: ErrUnknownCategory,
			wantMsg: "Hoboken",
		},
		{
			name:    "padded room type",
			mutate:  func(r Record) { r["room_type"] = "  Private room  " },
			wantErr: ErrUnknownCategory,
			wantMsg: "Private room",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := brooklynRecord()
			tt.mutate(record)
			_, err := Preprocess(bundle, record)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !IsInputError(err) {
				t.Fatalf("expected input error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("expected %q in %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestParseRecordKeepsNumbersExact(t *testing.T) {
	record, err := ParseRecord([]byte(`{"minimum_nights": 3, "latitude": 40.5}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nights, err := intField(record, "minimum_nights")
	if err != nil || nights != 3 {
		t.Fatalf("expected 3, got %d (%v)", nights, err)
	}
	lat, err := floatField(record, "latitude")
	if err != nil || lat != 40.5 {
		t.Fatalf("expected 40.5, got %v (%v)", lat, err)
	}
}

func TestParseRecordRejectsNonObjects(t *testing.T) {
	trailing := `{"neighbourhood_group": "Brooklyn", "room_type": "Private room", "latitude": 40.6782,
		"longitude": -73.9442, "minimum_nights": 1, "number_of_reviews": 5, "availability_365": 200} {"extra_field": 1}`
	for _, body := range []string{`[]`, `null`, `"x"`, `{`, trailing, `{"latitude": 1} 7`} {
		if _, err := ParseRecord([]byte(body)); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("%s: expected ErrInvalidValue, got %v", body, err)
		}
	}
}

func TestParseRecordAllowsTrailingWhitespace(t *testing.T) {
	record, err := ParseRecord([]byte("{\"latitude\": 1}\n  \n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record) != 1 {
		t.Fatalf("unexpected record: %v", record)
	}
}
