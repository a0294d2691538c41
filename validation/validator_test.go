package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name  string  `json:"name" validate:"required"`
	Lat   float64 `json:"lat" validate:"latitude"`
	Count int     `json:"count" validate:"min=1"`
	Days  int     `json:"days" validate:"min=0,max=365"`
}

func TestStructValid(t *testing.T) {
	if err := Struct(sample{Name: "x", Lat: 40.5, Count: 1, Days: 365}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructCollectsFieldErrors(t *testing.T) {
	err := Struct(sample{Lat: 91, Count: 0, Days: 400})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verrs Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected Errors, got %T", err)
	}
	got := strings.Join(verrs.Fields(), ",")
	if got != "name,lat,count,days" {
		t.Fatalf("unexpected fields: %s", got)
	}
	if !strings.Contains(err.Error(), "lat must be between -90 and 90") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !strings.Contains(err.Error(), "days must be at most 365") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
