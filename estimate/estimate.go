// Package estimate derives the figures shown next to a predicted nightly price.
package estimate

import "airbnbprice/ml"

const (
	DaysPerWeek  = 7
	DaysPerMonth = 30

	// Reference figures the weekly and monthly deltas are measured against.
	WeeklyBaseline  = 500.0
	MonthlyBaseline = 2000.0

	NeighbourhoodFactor = 0.85
	CityFactor          = 0.9
)

type TipCode string

const (
	TipIncreaseAvailability TipCode = "increase_availability"
	TipMoreReviews          TipCode = "more_reviews"
	TipFewerMinimumNights   TipCode = "fewer_minimum_nights"
)

// Metric is an extrapolated amount and its percentage difference from a baseline.
type Metric struct {
	Value        float64 `json:"value"`
	DeltaPercent float64 `json:"delta_percent"`
}

type Annual struct {
	Revenue float64 `json:"revenue"`
	Days    int     `json:"days"`
}

type ComparisonBar struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

type Estimate struct {
	Nightly    float64         `json:"nightly"`
	Weekly     Metric          `json:"weekly"`
	Monthly    Metric          `json:"monthly"`
	Annual     Annual          `json:"annual"`
	Comparison []ComparisonBar `json:"comparison"`
	Tips       []TipCode       `json:"tips"`
}

// Build computes the weekly, monthly and annual figures, the comparison bars and the
// optimisation tips for a listing priced at price per night.
func Build(price float64, listing ml.Listing) Estimate {
	weekly := price * DaysPerWeek
	monthly := price * DaysPerMonth
	return Estimate{
		Nightly: price,
		Weekly: Metric{
			Value:        weekly,
			DeltaPercent: (weekly/WeeklyBaseline - 1) * 100,
		},
		Monthly: Metric{
			Value:        monthly,
			DeltaPercent: (monthly/MonthlyBaseline - 1) * 100,
		},
		Annual: Annual{
			Revenue: price * float64(listing.Availability365),
			Days:    listing.Availability365,
		},
		Comparison: []ComparisonBar{
			{Label: "listing", Price: price},
			{Label: "neighbourhood_average", Price: price * NeighbourhoodFactor},
			{Label: "city_average", Price: price * CityFactor},
		},
		Tips: Tips(listing),
	}
}

// Tips returns the optimisation hints that apply to listing, in display order.
func Tips(listing ml.Listing) []TipCode {
	tips := make([]TipCode, 0, 3)
	if listing.Availability365 < 300 {
		tips = append(tips, TipIncreaseAvailability)
	}
	if listing.NumberOfReviews < 10 {
		tips = append(tips, TipMoreReviews)
	}
	if listing.MinimumNights > 5 {
		tips = append(tips, TipFewerMinimumNights)
	}
	return tips
}

// MaxComparison is the largest bar, used to scale bar widths.
func (e Estimate) MaxComparison() float64 {
	highest := 0.0
	for _, bar := range e.Comparison {
		if bar.Price > highest {
			highest = bar.Price
		}
	}
	return highest
}
