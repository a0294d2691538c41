package ml

import (
	"fmt"

	"github.com/goccy/go-json"
)

const TypeLinear = "linear"

// LinearRegression is intercept + sum(coefficient[i] * x[i]).
type LinearRegression struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (m *LinearRegression) Type() string {
	return TypeLinear
}

func (m *LinearRegression) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Coefficients), len(features))
	}
	y := m.Intercept
	for i, x := range features {
		y += m.Coefficients[i] * x
	}
	return y, nil
}

func decodeLinear(raw json.RawMessage, featureCount int) (Regressor, error) {
	var model LinearRegression
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("%w: linear model: %v", ErrInvalidBundle, err)
	}
	if len(model.Coefficients) != featureCount {
		return nil, fmt.Errorf("%w: linear model has %d coefficients for %d features",
			ErrInvalidBundle, len(model.Coefficients), featureCount)
	}
	return &model, nil
}
