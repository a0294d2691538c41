package ml

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// Regressor is a fitted estimator that maps an aligned feature vector to a price.
type Regressor interface {
	Predict(features []float64) (float64, error)
	Type() string
}

// regressorDecoder builds a Regressor from the raw "model" object of a bundle.
// featureCount is the length of the vectors the regressor will be given.
type regressorDecoder func(raw json.RawMessage, featureCount int) (Regressor, error)

const ComponentLabelEncoder = "label_encoder"

var regressors = map[string]regressorDecoder{
	TypeRegressionTree: decodeRegressionTree,
	TypeRandomForest:   decodeRandomForest,
	TypeLinear:         decodeLinear,
}

// Components lists every component name a bundle may require from this binary.
func Components() []string {
	names := []string{ComponentLabelEncoder}
	for name := range regressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func supportsComponent(name string) bool {
	if name == ComponentLabelEncoder {
		return true
	}
	_, ok := regressors[name]
	return ok
}

func decodeRegressor(raw json.RawMessage, featureCount int) (Regressor, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("%w: model: %v", ErrInvalidBundle, err)
	}
	decode, ok := regressors[header.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, header.Type)
	}
	return decode(raw, featureCount)
}
